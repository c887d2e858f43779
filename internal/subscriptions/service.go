package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/pkg/config"
	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/enums"
	pkgerrors "github.com/slabstak/slabstak-backend/pkg/errors"
	"github.com/slabstak/slabstak-backend/pkg/logger"
)

// Service defines the subscription lifecycle surface.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	CreateCheckout(ctx context.Context, userID uuid.UUID, email string) (string, error)
	Cancel(ctx context.Context, userID uuid.UUID) error
	Portal(ctx context.Context, userID uuid.UUID) (string, error)
}

type service struct {
	repo   Repository
	stripe StripeBillingClient
	cfg    config.StripeConfig
	logg   *logger.Logger
}

// Params groups dependencies for the subscription service.
type Params struct {
	Repo   Repository
	Stripe StripeBillingClient
	Config config.StripeConfig
	Logger *logger.Logger
}

// NewService builds a subscription service with the required dependencies.
func NewService(p Params) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("subscriptions repository required")
	}
	if p.Stripe == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if strings.TrimSpace(p.Config.SubscriptionPriceID) == "" {
		return nil, fmt.Errorf("subscription price id required")
	}
	return &service{repo: p.Repo, stripe: p.Stripe, cfg: p.Config, logg: p.Logger}, nil
}

// Get returns the stored subscription or a free-plan default when none exists.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	sub, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Subscription{
				UserID: userID,
				Plan:   enums.SubscriptionPlanFree,
				Status: enums.SubscriptionStatusActive,
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find subscription")
	}
	return sub, nil
}

func (s *service) CreateCheckout(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	if userID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.SubscriptionPriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.CheckoutSuccessURL),
		CancelURL:  stripe.String(s.cfg.CheckoutCancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": userID.String()},
		},
	}
	params.AddMetadata("user_id", userID.String())
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	return session.URL, nil
}

// Cancel flips cancel_at_period_end on the provider and mirrors the flag
// locally. Access continues until the period ends; the definitive state
// change arrives later via webhook.
func (s *service) Cancel(ctx context.Context, userID uuid.UUID) error {
	sub, err := s.findStored(ctx, userID)
	if err != nil {
		return err
	}
	if sub.StripeSubscriptionID == "" {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no active subscription to cancel")
	}

	updated, err := s.stripe.UpdateSubscription(ctx, sub.StripeSubscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "schedule cancellation")
	}

	updates := map[string]any{"cancel_at_period_end": true}
	if updated != nil {
		updates["status"] = mapStripeStatus(string(updated.Status))
	}
	if err := s.repo.UpdateByUserID(ctx, userID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mirror cancellation")
	}
	return nil
}

func (s *service) Portal(ctx context.Context, userID uuid.UUID) (string, error) {
	sub, err := s.findStored(ctx, userID)
	if err != nil {
		return "", err
	}
	if sub.StripeCustomerID == "" {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "no billing account on file")
	}

	session, err := s.stripe.CreatePortalSession(ctx, &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(sub.StripeCustomerID),
		ReturnURL: stripe.String(s.cfg.PortalReturnURL),
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create portal session")
	}
	return session.URL, nil
}

func (s *service) findStored(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	sub, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no subscription on file")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find subscription")
	}
	return sub, nil
}
