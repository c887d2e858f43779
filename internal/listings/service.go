package listings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/enums"
	pkgerrors "github.com/slabstak/slabstak-backend/pkg/errors"
	"github.com/slabstak/slabstak-backend/pkg/logger"
	"github.com/slabstak/slabstak-backend/pkg/pagination"
)

// Service exposes listing operations to the HTTP layer.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Listing, error)
	Create(ctx context.Context, sellerID uuid.UUID, input CreateInput) (*models.Listing, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	Update(ctx context.Context, actorID, id uuid.UUID, input UpdateInput) (*models.Listing, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// Params collects the dependencies required to build the listings service.
type Params struct {
	Repo   Repository
	Logger *logger.Logger
}

// NewService builds a listings service with the required dependencies.
func NewService(p Params) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	return &service{repo: p.Repo, logg: p.Logger}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Listing, error) {
	if filters.Status == nil {
		active := enums.ListingStatusActive
		filters.Status = &active
	}
	out, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list listings")
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, sellerID uuid.UUID, input CreateInput) (*models.Listing, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero").
			WithDetails(map[string]any{"field": "price"})
	}

	shippingCost := decimal.Zero
	if input.ShippingCost != nil {
		if input.ShippingCost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping cost cannot be negative").
				WithDetails(map[string]any{"field": "shipping_cost"})
		}
		shippingCost = *input.ShippingCost
	}

	shippingMethod := "standard"
	if input.ShippingMethod != nil && *input.ShippingMethod != "" {
		shippingMethod = *input.ShippingMethod
	}

	listing := &models.Listing{
		SellerID:       sellerID,
		PlayerName:     input.PlayerName,
		SetName:        input.SetName,
		CardNumber:     input.CardNumber,
		Year:           input.Year,
		Sport:          input.Sport,
		Condition:      input.Condition,
		Grade:          input.Grade,
		Price:          input.Price,
		ShippingMethod: shippingMethod,
		ShippingCost:   shippingCost,
		Description:    input.Description,
		ImageURL:       input.ImageURL,
		Status:         enums.ListingStatusActive,
	}

	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create listing")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.findListing(ctx, id)
	if err != nil {
		return nil, err
	}

	// view bump is best effort, a miss never fails the read
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to bump listing views")
		}
	} else {
		listing.ViewsCount++
	}

	return listing, nil
}

func (s *service) Update(ctx context.Context, actorID, id uuid.UUID, input UpdateInput) (*models.Listing, error) {
	listing, err := s.findListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the seller can edit a listing")
	}
	if listing.Status == enums.ListingStatusRemoved {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "removed listings cannot be edited")
	}

	updates := map[string]any{}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero").
				WithDetails(map[string]any{"field": "price"})
		}
		updates["price"] = *input.Price
	}
	if input.Condition != nil {
		updates["condition"] = *input.Condition
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.ShippingCost != nil {
		if input.ShippingCost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping cost cannot be negative").
				WithDetails(map[string]any{"field": "shipping_cost"})
		}
		updates["shipping_cost"] = *input.ShippingCost
	}
	if input.Status != nil {
		status, err := enums.ParseListingStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid listing status").
				WithDetails(map[string]any{"field": "status"})
		}
		updates["status"] = status
	}

	if len(updates) == 0 {
		return listing, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update listing")
	}
	return s.findListing(ctx, id)
}

func (s *service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	listing, err := s.findListing(ctx, id)
	if err != nil {
		return err
	}
	if listing.SellerID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the seller can remove a listing")
	}
	if listing.Status == enums.ListingStatusRemoved {
		return nil
	}

	if err := s.repo.Update(ctx, id, map[string]any{"status": enums.ListingStatusRemoved}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove listing")
	}
	return nil
}

func (s *service) findListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find listing")
	}
	return listing, nil
}
