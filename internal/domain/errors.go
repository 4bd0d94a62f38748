package domain

import "errors"

// Business rule violations shared by the rental, payment and feedback modules.
// None of them is fatal; handlers map each to a user-facing error code.
var (
	ErrNotFound                 = errors.New("not found")
	ErrValidation               = errors.New("validation error")
	ErrConflict                 = errors.New("conflict")
	ErrUnauthorized             = errors.New("actor is not allowed to perform this action")
	ErrCarUnavailable           = errors.New("car is not available for the requested dates")
	ErrCarUnlisted              = errors.New("car is not listed")
	ErrInvalidTransition        = errors.New("invalid rental status transition")
	ErrInvalidPaymentTransition = errors.New("invalid payment status transition")
	ErrDuplicatePayment         = errors.New("payment already exists for rental")
	ErrAmountMismatch           = errors.New("payment amount does not match rental total")
	ErrRentalNotEligible        = errors.New("rental is not eligible for this action")
	ErrInvalidReviewerPair      = errors.New("reviewer and reviewee must be the rental's renter and owner")
)
