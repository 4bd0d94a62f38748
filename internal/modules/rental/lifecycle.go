package rental

import (
	"fmt"
	"time"

	"carrental/internal/domain"
)

// advance applies the calendar-driven transitions due on day today, one edge
// at a time, so a confirmed rental whose window already ended goes through
// active before completed. System transitions carry no actor.
func (s *Service) advance(sc *txScope, r *domain.Rental, ownerID int64, today time.Time) error {
	for {
		switch dueStatus(r, today) {
		case domain.RentalCancelled:
			if err := s.transition(sc, r, domain.RentalCancelled, nil, "not paid before start date"); err != nil {
				return err
			}
			if err := s.emit(sc, r.RenterID, domain.NotifRentalCancelled, "Rental request expired",
				"The rental was not paid before its start date.", r); err != nil {
				return err
			}
		case domain.RentalActive:
			if err := s.transition(sc, r, domain.RentalActive, nil, "start date reached"); err != nil {
				return err
			}
			if err := s.notifyParties(sc, r, ownerID, domain.NotifRentalStarted, "Rental started",
				"The rental period has started."); err != nil {
				return err
			}
		case domain.RentalCompleted:
			if err := s.complete(sc, r, ownerID, nil, "end date passed"); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (s *Service) advanceCar(sc *txScope, carID, ownerID int64, today time.Time) error {
	rows, err := sc.rentals.ListDue(sc.ctx, carID, today, 0)
	if err != nil {
		return fmt.Errorf("list due rentals: %w", err)
	}
	for i := range rows {
		if err := s.advance(sc, &rows[i], ownerID, today); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) complete(sc *txScope, r *domain.Rental, ownerID int64, actorID *int64, reason string) error {
	if err := s.transition(sc, r, domain.RentalCompleted, actorID, reason); err != nil {
		return err
	}
	return s.notifyParties(sc, r, ownerID, domain.NotifRentalCompleted, "Rental completed",
		"The rental is complete. You can now leave a review.")
}

func (s *Service) transition(sc *txScope, r *domain.Rental, to domain.RentalStatus, actorID *int64, reason string) error {
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, r.Status, to)
	}

	from := r.Status
	r.Status = to
	if to == domain.RentalCancelled {
		at := s.now().UTC()
		r.CancelledAt = &at
		r.CancellationReason = reason
	}
	if err := sc.rentals.UpdateStatus(sc.ctx, r, from); err != nil {
		r.Status = from
		return err
	}
	return s.record(sc, r, from, actorID, reason)
}

func (s *Service) record(sc *txScope, r *domain.Rental, from domain.RentalStatus, actorID *int64, reason string) error {
	h := &domain.RentalStatusHistory{
		RentalID:   r.ID,
		FromStatus: from,
		ToStatus:   r.Status,
		ActorID:    actorID,
		Reason:     reason,
	}
	if err := sc.rentals.AppendHistory(sc.ctx, h); err != nil {
		return fmt.Errorf("append rental history: %w", err)
	}
	return nil
}

func (s *Service) notifyParties(sc *txScope, r *domain.Rental, ownerID int64, typ domain.NotificationType, title, msg string) error {
	if err := s.emit(sc, r.RenterID, typ, title, msg, r); err != nil {
		return err
	}
	return s.emit(sc, ownerID, typ, title, msg, r)
}

func (s *Service) emit(sc *txScope, userID int64, typ domain.NotificationType, title, msg string, r *domain.Rental) error {
	if s.notifier == nil {
		return nil
	}
	n := &domain.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: msg,
		Data: map[string]any{
			"rental_id": r.ID,
			"car_id":    r.CarID,
			"status":    string(r.Status),
		},
	}
	if err := s.notifier.Save(sc.ctx, sc.tx, n); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	sc.outbox = append(sc.outbox, n)
	return nil
}
