package dto

type ModerateRequest struct {
	ModerationStatus string  `json:"moderation_status"`
	Notes            *string `json:"notes"`
}

type BulkModerateRequest struct {
	IDs              []string `json:"ids"`
	ModerationStatus string   `json:"moderation_status"`
	Notes            *string  `json:"notes"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type ReportRequest struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

type ApplyRequest struct {
	CoverLetter string `json:"cover_letter"`
	Resume      string `json:"resume"`
}

type ApplicationStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

type BulkModerateResponse struct {
	Modified int64 `json:"modified"`
}
