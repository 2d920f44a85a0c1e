package dto

import (
	"classifieds/internal/domain/user"

	"github.com/google/uuid"
)

type UserSummaryResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email,omitempty"`
	FullName string    `json:"full_name,omitempty"`
}

func NewUserSummary(s user.Summary) UserSummaryResponse {
	return UserSummaryResponse{ID: s.ID, Email: s.Email, FullName: s.FullName}
}
