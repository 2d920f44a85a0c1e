package handler

import (
	"classifieds/internal/delivery/http/dto"
	"classifieds/internal/delivery/http/middleware"
	"classifieds/internal/pkg/response"
	postinguc "classifieds/internal/usecase/posting"

	"github.com/gofiber/fiber/v3"
)

type ApplicationHandler struct {
	svc *postinguc.Service
}

func NewApplicationHandler(svc *postinguc.Service) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

// RegisterRoutes mounts the application routes on the jobs group. It must run before
// the generic posting routes so /applications/mine is not taken for an id.
func (h *ApplicationHandler) RegisterRoutes(r fiber.Router, auth *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	r.Get("/applications/mine", auth.Middleware(), h.Mine)
	r.Post("/:id/apply", auth.Middleware(), h.Apply)
	r.Get("/:id/applications", auth.Middleware(), h.List)
	r.Patch("/:id/applications/:applicationId", auth.Middleware(), h.UpdateStatus)
}

func (h *ApplicationHandler) Apply(c fiber.Ctx) error {
	jobID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ApplyRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	app, err := h.svc.Apply(c.Context(), middleware.PrincipalFrom(c), jobID, postinguc.ApplyInput{
		CoverLetter: req.CoverLetter,
		Resume:      req.Resume,
	})
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, "application submitted", dto.NewApplicationResponse(app))
}

func (h *ApplicationHandler) List(c fiber.Ctx) error {
	jobID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	apps, err := h.svc.ListApplications(c.Context(), middleware.PrincipalFrom(c), jobID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationViews(apps))
}

func (h *ApplicationHandler) UpdateStatus(c fiber.Ctx) error {
	jobID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	appID, err := pathID(c, "applicationId")
	if err != nil {
		return err
	}
	var req dto.ApplicationStatusRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	app, err := h.svc.UpdateApplicationStatus(c.Context(), middleware.PrincipalFrom(c), jobID, appID, req.Status, req.Notes)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "application updated", dto.NewApplicationResponse(app))
}

func (h *ApplicationHandler) Mine(c fiber.Ctx) error {
	apps, err := h.svc.MyApplications(c.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicantApplications(apps))
}
