package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/internal/subscriptions"
	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/enums"
	pkgerrors "github.com/slabstak/slabstak-backend/pkg/errors"
	"github.com/slabstak/slabstak-backend/pkg/logger"
)

type ServiceParams struct {
	SubscriptionRepo subscriptions.Repository
	StripeClient     subscriptions.StripeBillingClient
	Logger           *logger.Logger
}

type Service struct {
	repo   subscriptions.Repository
	stripe subscriptions.StripeBillingClient
	logg   *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.SubscriptionRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscription repo required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	return &Service{
		repo:   params.SubscriptionRepo,
		stripe: params.StripeClient,
		logg:   params.Logger,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	eventAt := time.Unix(event.Created, 0).UTC()

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		return s.handleCheckoutCompleted(ctx, &session, eventAt)

	case stripe.EventTypeCustomerSubscriptionUpdated:
		var stripeSub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription event")
		}
		return s.syncSubscription(ctx, &stripeSub, eventAt, nil)

	case stripe.EventTypeCustomerSubscriptionDeleted:
		var stripeSub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription event")
		}
		canceled := enums.SubscriptionStatusCanceled
		return s.syncSubscription(ctx, &stripeSub, eventAt, &canceled)

	case stripe.EventTypeInvoicePaymentSucceeded:
		active := enums.SubscriptionStatusActive
		return s.syncFromInvoice(ctx, event, eventAt, &active)

	case stripe.EventTypeInvoicePaymentFailed:
		pastDue := enums.SubscriptionStatusPastDue
		return s.syncFromInvoice(ctx, event, eventAt, &pastDue)

	default:
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession, eventAt time.Time) error {
	if session == nil || session.Mode != stripe.CheckoutSessionModeSubscription {
		return nil
	}
	if session.Subscription == nil || session.Subscription.ID == "" {
		return nil
	}

	stripeSub, err := s.stripe.GetSubscription(ctx, session.Subscription.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch stripe subscription")
	}

	// The session metadata is the authoritative user link for a fresh checkout.
	if stripeSub.Metadata == nil {
		stripeSub.Metadata = map[string]string{}
	}
	if _, ok := stripeSub.Metadata["user_id"]; !ok {
		if v, ok := session.Metadata["user_id"]; ok {
			stripeSub.Metadata["user_id"] = v
		}
	}

	return s.syncSubscription(ctx, stripeSub, eventAt, nil)
}

func (s *Service) syncFromInvoice(ctx context.Context, event *stripe.Event, eventAt time.Time, status *enums.SubscriptionStatus) error {
	subscriptionID := event.GetObjectValue("subscription")
	if subscriptionID == "" {
		return nil
	}
	stripeSub, err := s.stripe.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch stripe subscription")
	}
	return s.syncSubscription(ctx, stripeSub, eventAt, status)
}

func (s *Service) syncSubscription(ctx context.Context, stripeSub *stripe.Subscription, eventAt time.Time, overrideStatus *enums.SubscriptionStatus) error {
	if stripeSub == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription is required")
	}

	stored, err := s.findStored(ctx, stripeSub)
	if err != nil {
		return err
	}

	userID, metadataErr := subscriptions.UserIDFromMetadata(stripeSub.Metadata)
	if metadataErr != nil && stored != nil {
		userID = stored.UserID
		metadataErr = nil
	}
	if metadataErr != nil {
		// Nothing to key the row on. Log and drop rather than fail the delivery.
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("stripe subscription %s has no user mapping, skipping", stripeSub.ID))
		}
		return nil
	}

	// Out-of-order redelivery: an older snapshot must not overwrite newer state.
	if stored != nil && stored.LastEventAt != nil && eventAt.Before(*stored.LastEventAt) {
		if s.logg != nil {
			s.logg.Info(ctx, fmt.Sprintf("stale stripe event for subscription %s, skipping", stripeSub.ID))
		}
		return nil
	}

	built, err := subscriptions.BuildSubscriptionFromStripe(stripeSub, userID, eventAt)
	if err != nil {
		return err
	}
	if overrideStatus != nil {
		built.Status = *overrideStatus
		if *overrideStatus == enums.SubscriptionStatusCanceled {
			built.Plan = enums.SubscriptionPlanFree
			built.CancelAtPeriodEnd = false
		}
	}

	if _, err := s.repo.Upsert(ctx, built); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist subscription")
	}
	return nil
}

func (s *Service) findStored(ctx context.Context, stripeSub *stripe.Subscription) (*models.Subscription, error) {
	stored, err := s.repo.FindByStripeSubscriptionID(ctx, stripeSub.ID)
	if err == nil {
		return stored, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if userID, metaErr := subscriptions.UserIDFromMetadata(stripeSub.Metadata); metaErr == nil && userID != uuid.Nil {
			if byUser, userErr := s.repo.FindByUserID(ctx, userID); userErr == nil {
				return byUser, nil
			} else if !errors.Is(userErr, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, userErr, "load subscription")
			}
		}
		return nil, nil
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
}
