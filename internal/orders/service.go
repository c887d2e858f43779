package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/enums"
	pkgerrors "github.com/slabstak/slabstak-backend/pkg/errors"
	"github.com/slabstak/slabstak-backend/pkg/logger"
	"github.com/slabstak/slabstak-backend/pkg/pagination"
)

// NextStepPayment tells the client to proceed to payment after checkout.
const NextStepPayment = "payment"

// Service exposes order lifecycle operations to the HTTP layer.
type Service interface {
	Create(ctx context.Context, buyerID uuid.UUID, input CreateInput) (*CreateResult, error)
	Get(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, actorID uuid.UUID, params pagination.Params, filters Filters) ([]models.Order, error)
	Update(ctx context.Context, actorID, orderID uuid.UUID, input UpdateInput) (*models.Order, error)
}

type service struct {
	repo       Repository
	listings   ListingFinder
	feePercent decimal.Decimal
	logg       *logger.Logger
}

// Params collects the dependencies required to build the orders service.
type Params struct {
	Repo           Repository
	Listings       ListingFinder
	PlatformFeePct int
	Logger         *logger.Logger
}

// NewService builds an orders service with the required dependencies.
func NewService(p Params) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.Listings == nil {
		return nil, fmt.Errorf("listing finder required")
	}
	if p.PlatformFeePct < 0 || p.PlatformFeePct > 100 {
		return nil, fmt.Errorf("platform fee percent out of range: %d", p.PlatformFeePct)
	}
	return &service{
		repo:       p.Repo,
		listings:   p.Listings,
		feePercent: decimal.NewFromInt(int64(p.PlatformFeePct)).Div(decimal.NewFromInt(100)),
		logg:       p.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, buyerID uuid.UUID, input CreateInput) (*CreateResult, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ListingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}

	listing, err := s.listings.FindByID(ctx, input.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find listing")
	}
	if listing.Status != enums.ListingStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeListingUnavailable, "listing is no longer available")
	}
	if listing.SellerID == buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot purchase your own listing")
	}

	// Money fields are snapshotted here and never recomputed.
	platformFee := listing.Price.Mul(s.feePercent).Round(2)
	total := listing.Price.Add(listing.ShippingCost).Add(platformFee)

	order := &models.Order{
		ListingID:     listing.ID,
		BuyerID:       buyerID,
		SellerID:      listing.SellerID,
		ItemPrice:     listing.Price,
		ShippingCost:  listing.ShippingCost,
		PlatformFee:   platformFee,
		TotalAmount:   total,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusUnpaid,
		EscrowStatus:  enums.EscrowStatusPending,
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	return &CreateResult{Order: created, NextStep: NextStepPayment}, nil
}

func (s *service) Get(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(order, actorID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a participant in this order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, actorID uuid.UUID, params pagination.Params, filters Filters) ([]models.Order, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	out, err := s.repo.ListForUser(ctx, actorID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actorID, orderID uuid.UUID, input UpdateInput) (*models.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(order, actorID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a participant in this order")
	}

	updates := map[string]any{}

	if input.TrackingNumber != nil {
		updates["tracking_number"] = *input.TrackingNumber
	}

	if input.PaymentStatus != nil {
		target, err := enums.ParsePaymentStatus(*input.PaymentStatus)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status").
				WithDetails(map[string]any{"field": "payment_status"})
		}
		updates["payment_status"] = target
	}

	if input.Status != nil {
		target, err := enums.ParseOrderStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
				WithDetails(map[string]any{"field": "status"})
		}
		if !order.Status.CanTransitionTo(target) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "status transition not allowed").
				WithDetails(map[string]any{
					"from": order.Status,
					"to":   target,
				})
		}

		updates["status"] = target
		switch target {
		case enums.OrderStatusShipped:
			updates["shipped_at"] = time.Now().UTC()
		case enums.OrderStatusCancelled:
			updates["canceled_at"] = time.Now().UTC()
		}
	}

	if len(updates) == 0 {
		return order, nil
	}

	if err := s.repo.Update(ctx, orderID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
	}
	return s.findOrder(ctx, orderID)
}

func (s *service) findOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return findOrderByID(ctx, s.repo, orderID)
}

func findOrderByID(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}
	return order, nil
}

func isParticipant(order *models.Order, actorID uuid.UUID) bool {
	return actorID != uuid.Nil && (order.BuyerID == actorID || order.SellerID == actorID)
}
