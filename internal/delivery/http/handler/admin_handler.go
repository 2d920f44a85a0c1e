package handler

import (
	"time"

	"classifieds/internal/delivery/http/dto"
	"classifieds/internal/delivery/http/middleware"
	"classifieds/internal/domain/posting"
	"classifieds/internal/pkg/apperr"
	"classifieds/internal/pkg/response"
	postinguc "classifieds/internal/usecase/posting"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// AdminHandler serves the moderation routes of one posting kind.
type AdminHandler struct {
	svc  *postinguc.Service
	kind posting.Kind
	now  func() time.Time
}

func NewAdminHandler(svc *postinguc.Service, kind posting.Kind) *AdminHandler {
	return &AdminHandler{svc: svc, kind: kind, now: time.Now}
}

func (h *AdminHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Get("/stats", h.Stats)
	r.Patch("/bulk/moderate", h.BulkModerate)
	r.Patch("/:id/moderate", h.Moderate)
}

func (h *AdminHandler) List(c fiber.Ctx) error {
	res, err := h.svc.ListAdmin(c.Context(), middleware.PrincipalFrom(c), h.kind, c.Queries())
	if err != nil {
		return err
	}
	return response.Paginated(c, response.MessageOK, dto.NewPostingList(res.Items, h.now(), true), res.Pagination)
}

func (h *AdminHandler) Stats(c fiber.Ctx) error {
	stats, err := h.svc.Stats(c.Context(), middleware.PrincipalFrom(c), h.kind)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, stats)
}

func (h *AdminHandler) Moderate(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ModerateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	item, err := h.svc.Moderate(c.Context(), middleware.PrincipalFrom(c), h.kind, id, req.ModerationStatus, req.Notes)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "posting moderated", dto.NewPostingResponse(item, h.now(), true))
}

func (h *AdminHandler) BulkModerate(c fiber.Ctx) error {
	var req dto.BulkModerateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperr.Validation("invalid bulk moderation", map[string]string{"ids": "must contain valid ids"})
		}
		ids = append(ids, id)
	}
	n, err := h.svc.BulkModerate(c.Context(), middleware.PrincipalFrom(c), h.kind, ids, req.ModerationStatus, req.Notes)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "postings moderated", dto.BulkModerateResponse{Modified: n})
}
