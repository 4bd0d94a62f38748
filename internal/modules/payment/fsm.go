package payment

import "carrental/internal/domain"

var transitions = map[domain.PaymentStatus]map[domain.PaymentStatus]struct{}{
	domain.PaymentPending: {
		domain.PaymentPaid:   {},
		domain.PaymentFailed: {},
	},
	domain.PaymentFailed: {
		domain.PaymentPending: {},
		domain.PaymentPaid:    {},
	},
	domain.PaymentPaid: {
		domain.PaymentRefunded: {},
	},
}

// CanTransition reports whether a payment may move from -> to. refunded is terminal.
func CanTransition(from, to domain.PaymentStatus) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

func ValidStatus(s domain.PaymentStatus) bool {
	switch s {
	case domain.PaymentPending, domain.PaymentPaid, domain.PaymentFailed, domain.PaymentRefunded:
		return true
	}
	return false
}
