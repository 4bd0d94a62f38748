package review

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"carrental/internal/domain"
	"carrental/internal/pkg/logger"
)

type Service struct {
	reviews  ReviewStore
	rentals  RentalReader
	cars     CarOwners
	notifier Notifier
	log      logger.Logger
}

func NewService(reviews ReviewStore, rentals RentalReader, cars CarOwners, notifier Notifier, log logger.Logger) *Service {
	return &Service{reviews: reviews, rentals: rentals, cars: cars, notifier: notifier, log: log}
}

// SubmitReview records one side's rating of the other once the rental is completed.
func (s *Service) SubmitReview(ctx context.Context, rentalID, reviewerID, revieweeID int64, rating int, comment string) (*domain.Review, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", domain.ErrValidation, domain.MinRating, domain.MaxRating)
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > domain.MaxReviewComment {
		return nil, fmt.Errorf("%w: comment is longer than %d characters", domain.ErrValidation, domain.MaxReviewComment)
	}

	r, err := s.rentals.Get(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.RentalCompleted {
		return nil, fmt.Errorf("%w: rental is %s", domain.ErrRentalNotEligible, r.Status)
	}

	ownerID, err := s.cars.OwnerID(ctx, r.CarID)
	if err != nil {
		return nil, err
	}
	pairOK := (reviewerID == r.RenterID && revieweeID == ownerID) ||
		(reviewerID == ownerID && revieweeID == r.RenterID)
	if !pairOK {
		return nil, domain.ErrInvalidReviewerPair
	}

	rv := &domain.Review{
		RentalID:   r.ID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     rating,
		Comment:    comment,
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		n := &domain.Notification{
			UserID:  revieweeID,
			Type:    domain.NotifNewReview,
			Title:   "New review",
			Message: fmt.Sprintf("You received a %d star review.", rating),
			Data:    map[string]any{"rental_id": r.ID, "review_id": rv.ID},
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.log.Warn("review notification failed", map[string]interface{}{"review_id": rv.ID, "error": err.Error()})
		}
	}
	return rv, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64, limit, offset int) (*UserReviewsResponse, error) {
	items, total, err := s.reviews.ListByReviewee(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	avg, err := s.reviews.AverageRating(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Review{}
	}
	return &UserReviewsResponse{Reviews: items, Total: total, AverageRating: avg}, nil
}
