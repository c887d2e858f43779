package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/internal/listings"
	"github.com/slabstak/slabstak-backend/internal/orders"
	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/enums"
	pkgerrors "github.com/slabstak/slabstak-backend/pkg/errors"
	"github.com/slabstak/slabstak-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// IntentResult carries what the client needs to complete the payment.
// The client secret must never be logged.
type IntentResult struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
}

// Service exposes the payment flow to the HTTP layer.
type Service interface {
	CreateIntent(ctx context.Context, buyerID, orderID uuid.UUID) (*IntentResult, error)
	Confirm(ctx context.Context, buyerID, orderID uuid.UUID, intentID string) (*models.Order, error)
}

type service struct {
	orders       orders.Repository
	listings     listings.Repository
	transactions TransactionRepository
	tx           txRunner
	stripe       StripePaymentClient
	currency     string
	logg         *logger.Logger
}

// Params collects the dependencies required to build the payment service.
type Params struct {
	Orders       orders.Repository
	Listings     listings.Repository
	Transactions TransactionRepository
	Tx           txRunner
	Stripe       StripePaymentClient
	Currency     string
	Logger       *logger.Logger
}

// NewService builds a payment service with the required dependencies.
func NewService(p Params) (Service, error) {
	if p.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.Listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if p.Transactions == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Stripe == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	currency := p.Currency
	if currency == "" {
		currency = "usd"
	}
	return &service{
		orders:       p.Orders,
		listings:     p.Listings,
		transactions: p.Transactions,
		tx:           p.Tx,
		stripe:       p.Stripe,
		currency:     currency,
		logg:         p.Logger,
	}, nil
}

func (s *service) CreateIntent(ctx context.Context, buyerID, orderID uuid.UUID) (*IntentResult, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer can pay for an order")
	}
	if order.Status != enums.OrderStatusPending || order.PaymentStatus != enums.PaymentStatusUnpaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is not awaiting payment").
			WithDetails(map[string]any{"status": order.Status})
	}

	amountCents := order.TotalAmount.Mul(centsPerUnit).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(s.currency),
	}
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("buyer_id", order.BuyerID.String())
	params.AddMetadata("seller_id", order.SellerID.String())

	intent, err := s.stripe.CreateIntent(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}

	txn := &models.Transaction{
		OrderID:               order.ID,
		StripePaymentIntentID: intent.ID,
		Amount:                order.TotalAmount,
		Status:                enums.TransactionStatusPending,
	}
	if _, err := s.transactions.Create(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payment attempt")
	}

	return &IntentResult{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
	}, nil
}

func (s *service) Confirm(ctx context.Context, buyerID, orderID uuid.UUID, intentID string) (*models.Order, error) {
	if intentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id required")
	}

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer can confirm a payment")
	}

	// Re-confirming an already settled order with the same intent is a no-op.
	if order.PaymentStatus == enums.PaymentStatusPaid {
		txn, err := s.transactions.FindByIntentID(ctx, intentID)
		if err == nil && txn.OrderID == order.ID {
			return order, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already paid")
	}

	intent, err := s.stripe.GetIntent(ctx, intentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve payment intent")
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment has not succeeded").
			WithDetails(map[string]any{"intent_status": string(intent.Status)})
	}

	// Replay guard: the intent must have been minted for this exact order.
	if intent.Metadata["order_id"] != order.ID.String() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent does not belong to this order")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersTx := s.orders.WithTx(tx)
		listingsTx := s.listings.WithTx(tx)
		txnsTx := s.transactions.WithTx(tx)

		if err := ordersTx.Update(ctx, order.ID, map[string]any{
			"status":         enums.OrderStatusPaid,
			"payment_status": enums.PaymentStatusPaid,
			"escrow_status":  enums.EscrowStatusHeld,
		}); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}

		if err := txnsTx.UpdateByIntentID(ctx, intentID, map[string]any{
			"status": enums.TransactionStatusCompleted,
		}); err != nil {
			return fmt.Errorf("complete transaction: %w", err)
		}

		if err := listingsTx.Update(ctx, order.ListingID, map[string]any{
			"status": enums.ListingStatusSold,
		}); err != nil {
			return fmt.Errorf("mark listing sold: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settle payment")
	}

	return s.findOrder(ctx, orderID)
}

func (s *service) findOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}
	return order, nil
}
