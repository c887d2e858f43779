package ratings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
	pkgerrors "github.com/slabstak/slabstak-backend/pkg/errors"
	"github.com/slabstak/slabstak-backend/pkg/logger"
	"github.com/slabstak/slabstak-backend/pkg/pagination"
)

const ratingConstraint = "idx_user_ratings_order_rater"

// CreateInput carries the rater's submission.
type CreateInput struct {
	OrderID    uuid.UUID `json:"order_id" validate:"required"`
	Rating     int       `json:"rating" validate:"required,min=1,max=5"`
	ReviewText *string   `json:"review_text,omitempty" validate:"omitempty,max=2000"`
}

// Service exposes rating operations to the HTTP layer.
type Service interface {
	Create(ctx context.Context, raterID uuid.UUID, input CreateInput) (*models.Rating, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Rating, error)
}

type service struct {
	repo   Repository
	orders OrderFinder
	logg   *logger.Logger
}

// Params collects the dependencies required to build the ratings service.
type Params struct {
	Repo   Repository
	Orders OrderFinder
	Logger *logger.Logger
}

// NewService builds a ratings service with the required dependencies.
func NewService(p Params) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("ratings repository required")
	}
	if p.Orders == nil {
		return nil, fmt.Errorf("order finder required")
	}
	return &service{repo: p.Repo, orders: p.Orders, logg: p.Logger}, nil
}

func (s *service) Create(ctx context.Context, raterID uuid.UUID, input CreateInput) (*models.Rating, error) {
	if raterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5").
			WithDetails(map[string]any{"field": "rating"})
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}

	var ratedUserID uuid.UUID
	switch raterID {
	case order.BuyerID:
		ratedUserID = order.SellerID
	case order.SellerID:
		ratedUserID = order.BuyerID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a participant in this order")
	}

	exists, err := s.repo.ExistsForOrderAndRater(ctx, order.ID, raterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing rating")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order already rated by this user")
	}

	rating := &models.Rating{
		OrderID:     order.ID,
		RaterID:     raterID,
		RatedUserID: ratedUserID,
		Rating:      input.Rating,
		ReviewText:  input.ReviewText,
	}

	created, err := s.repo.Create(ctx, rating)
	if err != nil {
		// Concurrent submission can slip past the pre-check; the unique
		// index is the final arbiter.
		if pkgerrors.IsUniqueViolation(err, ratingConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already rated by this user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create rating")
	}

	if err := s.repo.RecomputeSellerAverage(ctx, ratedUserID); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to refresh seller average")
		}
	}

	return created, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Rating, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	out, err := s.repo.ListForUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list ratings")
	}
	return out, nil
}
