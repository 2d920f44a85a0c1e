package handler

import (
	"classifieds/internal/delivery/http/middleware"
	"classifieds/internal/pkg/response"
	useruc "classifieds/internal/usecase/user"

	"github.com/gofiber/fiber/v3"
)

type UserHandler struct {
	uc *useruc.Service
}

func NewUserHandler(uc *useruc.Service) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Delete("/:id", h.Delete)
}

func (h *UserHandler) Delete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.DeleteUser(c.Context(), middleware.PrincipalFrom(c), id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "user deleted", nil)
}
