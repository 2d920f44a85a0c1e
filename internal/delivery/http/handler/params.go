package handler

import (
	"classifieds/internal/delivery/http/middleware"
	"classifieds/internal/pkg/apperr"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

func pathID(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid id", map[string]string{name: "must be a valid id"})
	}
	return id, nil
}

func bindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "invalid request payload", nil, err)
	}
	return nil
}

// viewerKey identifies a viewer for view deduplication: the user id when signed in,
// the client address otherwise.
func viewerKey(c fiber.Ctx) string {
	if id, ok := middleware.UserIDFrom(c); ok {
		return "u:" + id.String()
	}
	return "ip:" + c.IP()
}
