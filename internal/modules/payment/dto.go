package payment

import "carrental/internal/domain"

type RecordPaymentRequest struct {
	RentalID int64                `json:"rental_id" binding:"required,gt=0"`
	Amount   float64              `json:"amount" binding:"required,gt=0"`
	Method   domain.PaymentMethod `json:"payment_method" binding:"required,oneof=card cash bank_transfer wallet"`
}

type UpdateStatusRequest struct {
	Status domain.PaymentStatus `json:"status" binding:"required,oneof=pending paid failed refunded"`
}
