package v1

import (
	"classifieds/internal/delivery/http/handler"
	"classifieds/internal/domain/posting"
	postinguc "classifieds/internal/usecase/posting"
	useruc "classifieds/internal/usecase/user"

	"github.com/gofiber/fiber/v3"
)

// RegisterAdmin mounts the moderation routes per kind and account management. The
// admin capability itself is checked by the usecases.
func RegisterAdmin(r fiber.Router, postings *postinguc.Service, users *useruc.Service) {
	if r == nil {
		return
	}

	if users != nil {
		handler.NewUserHandler(users).RegisterRoutes(r.Group("/users"))
	}
	if postings == nil {
		return
	}
	for _, kind := range posting.Kinds {
		handler.NewAdminHandler(postings, kind).RegisterRoutes(r.Group("/" + kind.Plural()))
	}
}
