package handler

import (
	"time"

	"classifieds/internal/delivery/http/dto"
	"classifieds/internal/delivery/http/middleware"
	"classifieds/internal/domain/posting"
	"classifieds/internal/pkg/response"
	postinguc "classifieds/internal/usecase/posting"
	"classifieds/internal/validation"

	"github.com/gofiber/fiber/v3"
)

// PostingHandler serves the owner and public routes of one posting kind.
type PostingHandler struct {
	svc  *postinguc.Service
	kind posting.Kind
	now  func() time.Time
}

func NewPostingHandler(svc *postinguc.Service, kind posting.Kind) *PostingHandler {
	return &PostingHandler{svc: svc, kind: kind, now: time.Now}
}

// RegisterRoutes mounts the kind's routes on r. Fixed segments are registered before
// the :id routes.
func (h *PostingHandler) RegisterRoutes(r fiber.Router, auth *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	r.Get("/mine", auth.Middleware(), h.ListMine)
	r.Get("/", auth.Optional(), h.List)
	r.Post("/", auth.Middleware(), h.Create)
	r.Get("/:id", auth.Optional(), h.Get)
	r.Put("/:id", auth.Middleware(), h.Update)
	r.Delete("/:id", auth.Middleware(), h.Delete)
	r.Patch("/:id/status", auth.Middleware(), h.UpdateStatus)
	r.Post("/:id/report", auth.Middleware(), h.Report)
}

func (h *PostingHandler) List(c fiber.Ctx) error {
	res, err := h.svc.List(c.Context(), h.kind, c.Queries())
	if err != nil {
		return err
	}
	return response.Paginated(c, response.MessageOK, dto.NewPostingList(res.Items, h.now(), false), res.Pagination)
}

func (h *PostingHandler) ListMine(c fiber.Ctx) error {
	res, err := h.svc.ListMine(c.Context(), middleware.PrincipalFrom(c), h.kind, c.Queries())
	if err != nil {
		return err
	}
	return response.Paginated(c, response.MessageOK, dto.NewPostingList(res.Items, h.now(), false), res.Pagination)
}

func (h *PostingHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.svc.Get(c.Context(), middleware.PrincipalFrom(c), h.kind, id, viewerKey(c))
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPostingResponse(item, h.now(), false))
}

func (h *PostingHandler) Create(c fiber.Ctx) error {
	var in validation.Input
	if err := bindBody(c, &in); err != nil {
		return err
	}
	item, err := h.svc.Create(c.Context(), middleware.PrincipalFrom(c), h.kind, in)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, "posting created", dto.NewPostingResponse(item, h.now(), false))
}

func (h *PostingHandler) Update(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in validation.Input
	if err := bindBody(c, &in); err != nil {
		return err
	}
	item, err := h.svc.Update(c.Context(), middleware.PrincipalFrom(c), h.kind, id, in)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "posting updated", dto.NewPostingResponse(item, h.now(), false))
}

func (h *PostingHandler) Delete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Context(), middleware.PrincipalFrom(c), h.kind, id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "posting deleted", nil)
}

func (h *PostingHandler) UpdateStatus(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.StatusRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	item, err := h.svc.UpdateStatus(c.Context(), middleware.PrincipalFrom(c), h.kind, id, req.Status)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "status updated", dto.NewPostingResponse(item, h.now(), false))
}

func (h *PostingHandler) Report(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReportRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	r, err := h.svc.Report(c.Context(), middleware.PrincipalFrom(c), h.kind, id, req.Reason, req.Description)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, "posting reported", dto.NewReportResponse(r))
}
