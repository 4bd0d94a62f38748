package dispute

import "carrental/internal/domain"

// Dispute payloads are checked by pkg/validator so clients get per-field errors.
type FileDisputeRequest struct {
	RentalID    int64  `json:"rental_id" validate:"required,gt=0"`
	Description string `json:"description" validate:"required,max=2000"`
}

type UpdateStatusRequest struct {
	Status     domain.DisputeStatus `json:"status" validate:"required,oneof=under_review resolved rejected"`
	Resolution string               `json:"resolution" validate:"max=2000"`
}

type ListResponse struct {
	Disputes []domain.Dispute `json:"disputes"`
	Total    int64            `json:"total"`
}
