package v1

import (
	"classifieds/internal/delivery/http/handler"
	"classifieds/internal/delivery/http/middleware"
	"classifieds/internal/domain/posting"
	postinguc "classifieds/internal/usecase/posting"

	"github.com/gofiber/fiber/v3"
)

// RegisterPostings mounts /jobs, /listings and /dormitories. The job group carries the
// application routes in front of the generic posting routes.
func RegisterPostings(r fiber.Router, svc *postinguc.Service, auth *middleware.AuthMiddleware) {
	if r == nil || svc == nil {
		return
	}

	for _, kind := range posting.Kinds {
		grp := r.Group("/" + kind.Plural())
		if kind == posting.KindJob {
			handler.NewApplicationHandler(svc).RegisterRoutes(grp, auth)
		}
		handler.NewPostingHandler(svc, kind).RegisterRoutes(grp, auth)
	}
}
