package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/internal/subscriptions"
	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/enums"
)

type stubSubRepo struct {
	existing *models.Subscription
	upserted []*models.Subscription
}

func (s *stubSubRepo) WithTx(tx *gorm.DB) subscriptions.Repository { return s }

func (s *stubSubRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	if s.existing == nil || s.existing.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.existing
	return &copied, nil
}

func (s *stubSubRepo) FindByStripeSubscriptionID(ctx context.Context, stripeSubID string) (*models.Subscription, error) {
	if s.existing == nil || s.existing.StripeSubscriptionID != stripeSubID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.existing
	return &copied, nil
}

func (s *stubSubRepo) Upsert(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	s.upserted = append(s.upserted, sub)
	s.existing = sub
	return sub, nil
}

func (s *stubSubRepo) UpdateByUserID(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	return nil
}

type stubStripeClient struct {
	getResp  *stripe.Subscription
	getCalls int
}

func (s *stubStripeClient) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return nil, nil
}

func (s *stubStripeClient) UpdateSubscription(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	return nil, nil
}

func (s *stubStripeClient) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	s.getCalls++
	return s.getResp, nil
}

func (s *stubStripeClient) CreatePortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	return nil, nil
}

func newWebhookService(t *testing.T, repo *stubSubRepo, client *stubStripeClient) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{SubscriptionRepo: repo, StripeClient: client})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return svc
}

func subscriptionEvent(t *testing.T, eventType stripe.EventType, created int64, sub *stripe.Subscription) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("marshal subscription: %v", err)
	}
	return &stripe.Event{
		Type:    eventType,
		Created: created,
		Data:    &stripe.EventData{Raw: raw},
	}
}

func TestHandleSubscriptionUpdatedUpsertsRow(t *testing.T) {
	userID := uuid.New()
	repo := &stubSubRepo{}
	svc := newWebhookService(t, repo, &stubStripeClient{})

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionUpdated, 1700000100, &stripe.Subscription{
		ID:       "sub_test",
		Status:   stripe.SubscriptionStatusActive,
		Metadata: map[string]string{"user_id": userID.String()},
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{CurrentPeriodStart: 1, CurrentPeriodEnd: 2}},
		},
	})

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected one upsert got %d", len(repo.upserted))
	}
	got := repo.upserted[0]
	if got.UserID != userID || got.Status != enums.SubscriptionStatusActive {
		t.Fatalf("unexpected row %+v", got)
	}
	if got.Plan != enums.SubscriptionPlanPro {
		t.Fatalf("active subscription should map to pro plan")
	}
}

func TestHandleSubscriptionDeletedCancels(t *testing.T) {
	userID := uuid.New()
	repo := &stubSubRepo{existing: &models.Subscription{
		UserID:               userID,
		StripeSubscriptionID: "sub_del",
		Status:               enums.SubscriptionStatusActive,
		Plan:                 enums.SubscriptionPlanPro,
		CancelAtPeriodEnd:    true,
	}}
	svc := newWebhookService(t, repo, &stubStripeClient{})

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionDeleted, 1700000200, &stripe.Subscription{
		ID:     "sub_del",
		Status: stripe.SubscriptionStatusCanceled,
	})

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	got := repo.upserted[0]
	if got.Status != enums.SubscriptionStatusCanceled {
		t.Fatalf("expected canceled got %s", got.Status)
	}
	if got.CancelAtPeriodEnd {
		t.Fatal("cancel flag should clear once the deletion lands")
	}
	if got.Plan != enums.SubscriptionPlanFree {
		t.Fatal("canceled subscription drops to free plan")
	}
}

func TestHandleInvoicePaymentSucceededIsIdempotent(t *testing.T) {
	userID := uuid.New()
	repo := &stubSubRepo{existing: &models.Subscription{
		UserID:               userID,
		StripeSubscriptionID: "sub_inv",
		Status:               enums.SubscriptionStatusActive,
		Plan:                 enums.SubscriptionPlanPro,
	}}
	client := &stubStripeClient{getResp: &stripe.Subscription{
		ID:       "sub_inv",
		Status:   stripe.SubscriptionStatusActive,
		Metadata: map[string]string{"user_id": userID.String()},
	}}
	svc := newWebhookService(t, repo, client)

	event := &stripe.Event{
		Type:    stripe.EventTypeInvoicePaymentSucceeded,
		Created: 1700000300,
		Data: &stripe.EventData{
			Raw:    json.RawMessage(`{}`),
			Object: map[string]any{"subscription": "sub_inv"},
		},
	}

	for i := 0; i < 2; i++ {
		if err := svc.HandleEvent(context.Background(), event); err != nil {
			t.Fatalf("delivery %d: %v", i+1, err)
		}
	}
	if repo.existing.Status != enums.SubscriptionStatusActive {
		t.Fatalf("expected active got %s", repo.existing.Status)
	}
	if client.getCalls != 2 {
		t.Fatalf("expected stripe fetch per delivery got %d", client.getCalls)
	}
}

func TestHandleInvoicePaymentFailedMarksPastDue(t *testing.T) {
	userID := uuid.New()
	repo := &stubSubRepo{existing: &models.Subscription{
		UserID:               userID,
		StripeSubscriptionID: "sub_fail",
		Status:               enums.SubscriptionStatusActive,
	}}
	client := &stubStripeClient{getResp: &stripe.Subscription{
		ID:     "sub_fail",
		Status: stripe.SubscriptionStatusPastDue,
	}}
	svc := newWebhookService(t, repo, client)

	event := &stripe.Event{
		Type:    stripe.EventTypeInvoicePaymentFailed,
		Created: 1700000400,
		Data: &stripe.EventData{
			Raw:    json.RawMessage(`{}`),
			Object: map[string]any{"subscription": "sub_fail"},
		},
	}

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if repo.existing.Status != enums.SubscriptionStatusPastDue {
		t.Fatalf("expected past_due got %s", repo.existing.Status)
	}
}

func TestStaleEventDoesNotOverwrite(t *testing.T) {
	userID := uuid.New()
	newer := time.Unix(1700000500, 0).UTC()
	repo := &stubSubRepo{existing: &models.Subscription{
		UserID:               userID,
		StripeSubscriptionID: "sub_stale",
		Status:               enums.SubscriptionStatusCanceled,
		LastEventAt:          &newer,
	}}
	svc := newWebhookService(t, repo, &stubStripeClient{})

	// event older than the stored snapshot
	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionUpdated, 1700000100, &stripe.Subscription{
		ID:     "sub_stale",
		Status: stripe.SubscriptionStatusActive,
	})

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(repo.upserted) != 0 {
		t.Fatal("stale event must not overwrite newer state")
	}
	if repo.existing.Status != enums.SubscriptionStatusCanceled {
		t.Fatalf("status changed unexpectedly: %s", repo.existing.Status)
	}
}

func TestMissingUserMappingIsNoOp(t *testing.T) {
	repo := &stubSubRepo{}
	svc := newWebhookService(t, repo, &stubStripeClient{})

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionUpdated, 1700000600, &stripe.Subscription{
		ID:     "sub_orphan",
		Status: stripe.SubscriptionStatusActive,
	})

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(repo.upserted) != 0 {
		t.Fatal("orphan subscription must not be written")
	}
}

func TestUnknownEventTypeIsNoOp(t *testing.T) {
	repo := &stubSubRepo{}
	svc := newWebhookService(t, repo, &stubStripeClient{})

	event := &stripe.Event{
		Type:    "charge.refunded",
		Created: 1700000700,
		Data:    &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(repo.upserted) != 0 {
		t.Fatal("unknown events must be ignored")
	}
}
