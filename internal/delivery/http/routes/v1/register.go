package v1

import (
	"classifieds/internal/delivery/http/middleware"
	postinguc "classifieds/internal/usecase/posting"
	useruc "classifieds/internal/usecase/user"

	"github.com/gofiber/fiber/v3"
)

type Deps struct {
	Auth     *middleware.AuthMiddleware
	Postings *postinguc.Service
	Users    *useruc.Service
}

func Register(r fiber.Router, d Deps) {
	if r == nil {
		return
	}

	RegisterPostings(r, d.Postings, d.Auth)

	admin := r.Group("/admin", d.Auth.Middleware())
	RegisterAdmin(admin, d.Postings, d.Users)
}
