package rental

import (
	"time"

	"carrental/internal/domain"
)

var transitions = map[domain.RentalStatus]map[domain.RentalStatus]struct{}{
	domain.RentalPending: {
		domain.RentalConfirmed: {},
		domain.RentalCancelled: {},
	},
	domain.RentalConfirmed: {
		domain.RentalActive:    {},
		domain.RentalCancelled: {},
	},
	domain.RentalActive: {
		domain.RentalCompleted: {},
	},
}

// CanTransition reports whether the rental state machine has an edge from -> to.
// completed and cancelled are terminal.
func CanTransition(from, to domain.RentalStatus) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// dueStatus is the status the calendar alone moves a rental to on day today,
// or "" when nothing is due. A pending rental whose start went by unpaid expires.
func dueStatus(r *domain.Rental, today time.Time) domain.RentalStatus {
	today = domain.Day(today)
	switch r.Status {
	case domain.RentalPending:
		// В день начала ещё можно оплатить
		if today.After(domain.Day(r.StartDate)) {
			return domain.RentalCancelled
		}
	case domain.RentalConfirmed:
		if !today.Before(domain.Day(r.StartDate)) {
			return domain.RentalActive
		}
	case domain.RentalActive:
		if today.After(domain.Day(r.EndDate)) {
			return domain.RentalCompleted
		}
	}
	return ""
}
