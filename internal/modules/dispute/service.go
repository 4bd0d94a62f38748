package dispute

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrental/internal/domain"
	"carrental/internal/pkg/logger"
)

var transitions = map[domain.DisputeStatus]map[domain.DisputeStatus]struct{}{
	domain.DisputeOpen: {
		domain.DisputeUnderReview: {},
		domain.DisputeResolved:    {},
		domain.DisputeRejected:    {},
	},
	domain.DisputeUnderReview: {
		domain.DisputeResolved: {},
		domain.DisputeRejected: {},
	},
}

func CanTransition(from, to domain.DisputeStatus) bool {
	_, ok := transitions[from][to]
	return ok
}

type Service struct {
	disputes DisputeStore
	rentals  RentalReader
	cars     CarOwners
	notifier Notifier
	log      logger.Logger
	now      func() time.Time
}

func NewService(disputes DisputeStore, rentals RentalReader, cars CarOwners, notifier Notifier, log logger.Logger) *Service {
	return &Service{
		disputes: disputes,
		rentals:  rentals,
		cars:     cars,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// FileDispute opens a dispute on a rental in any status. Only the renter or
// the car owner may report.
func (s *Service) FileDispute(ctx context.Context, rentalID, reporterID int64, description string) (*domain.Dispute, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}

	r, err := s.rentals.Get(ctx, rentalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: rental %d does not exist", domain.ErrRentalNotEligible, rentalID)
		}
		return nil, err
	}
	ownerID, err := s.cars.OwnerID(ctx, r.CarID)
	if err != nil {
		return nil, err
	}
	if !r.IsParty(reporterID, ownerID) {
		return nil, domain.ErrUnauthorized
	}

	d := &domain.Dispute{
		RentalID:    r.ID,
		ReporterID:  reporterID,
		Description: description,
		Status:      domain.DisputeOpen,
	}
	if err := s.disputes.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create dispute: %w", err)
	}

	other := ownerID
	if reporterID == ownerID {
		other = r.RenterID
	}
	s.notify(ctx, other, domain.NotifDisputeFiled, "Dispute filed",
		fmt.Sprintf("A dispute was filed on rental #%d.", r.ID), d)

	s.log.Info("dispute filed", map[string]interface{}{
		"dispute_id":  d.ID,
		"rental_id":   r.ID,
		"reporter_id": reporterID,
	})
	return d, nil
}

// Get returns a dispute visible to its reporter or an admin.
func (s *Service) Get(ctx context.Context, id, userID int64, isAdmin bool) (*domain.Dispute, error) {
	d, err := s.disputes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && d.ReporterID != userID {
		return nil, domain.ErrUnauthorized
	}
	return d, nil
}

func (s *Service) ListMine(ctx context.Context, reporterID int64, limit, offset int) (*ListResponse, error) {
	return s.list(ctx, reporterID, "", limit, offset)
}

func (s *Service) ListAll(ctx context.Context, status domain.DisputeStatus, limit, offset int) (*ListResponse, error) {
	return s.list(ctx, 0, status, limit, offset)
}

func (s *Service) list(ctx context.Context, reporterID int64, status domain.DisputeStatus, limit, offset int) (*ListResponse, error) {
	items, total, err := s.disputes.List(ctx, reporterID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Dispute{}
	}
	return &ListResponse{Disputes: items, Total: total}, nil
}

// UpdateStatus moves a dispute along open -> under_review -> resolved|rejected.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.DisputeStatus, resolution string) (*domain.Dispute, error) {
	d, err := s.disputes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(d.Status, status) {
		return nil, fmt.Errorf("%w: dispute %s -> %s", domain.ErrInvalidTransition, d.Status, status)
	}

	d.Status = status
	if r := strings.TrimSpace(resolution); r != "" {
		d.Resolution = r
	}
	if status == domain.DisputeResolved || status == domain.DisputeRejected {
		at := s.now().UTC()
		d.ResolvedAt = &at
	}
	if err := s.disputes.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("update dispute: %w", err)
	}

	s.notify(ctx, d.ReporterID, domain.NotifDisputeUpdated, "Dispute updated",
		fmt.Sprintf("Your dispute is now %s.", status), d)
	return d, nil
}

func (s *Service) notify(ctx context.Context, userID int64, typ domain.NotificationType, title, msg string, d *domain.Dispute) {
	if s.notifier == nil {
		return
	}
	n := &domain.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: msg,
		Data:    map[string]any{"dispute_id": d.ID, "rental_id": d.RentalID, "status": string(d.Status)},
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("dispute notification failed", map[string]interface{}{"dispute_id": d.ID, "error": err.Error()})
	}
}
