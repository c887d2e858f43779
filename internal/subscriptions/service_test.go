package subscriptions

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/pkg/config"
	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/enums"
	pkgerrors "github.com/slabstak/slabstak-backend/pkg/errors"
)

type stubRepo struct {
	sub     *models.Subscription
	updates map[string]any
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	if s.sub == nil || s.sub.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.sub
	return &copied, nil
}

func (s *stubRepo) FindByStripeSubscriptionID(ctx context.Context, stripeSubID string) (*models.Subscription, error) {
	if s.sub == nil || s.sub.StripeSubscriptionID != stripeSubID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.sub
	return &copied, nil
}

func (s *stubRepo) Upsert(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	s.sub = sub
	return sub, nil
}

func (s *stubRepo) UpdateByUserID(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	if s.updates == nil {
		s.updates = map[string]any{}
	}
	for k, v := range updates {
		s.updates[k] = v
	}
	return nil
}

type stubBilling struct {
	checkout      *stripe.CheckoutSessionParams
	updatedID     string
	updatedParams *stripe.SubscriptionParams
	portalCalls   int
}

func (s *stubBilling) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.checkout = params
	return &stripe.CheckoutSession{URL: "https://checkout.stripe.test/session"}, nil
}

func (s *stubBilling) UpdateSubscription(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	s.updatedID = id
	s.updatedParams = params
	return &stripe.Subscription{ID: id, Status: stripe.SubscriptionStatusActive, CancelAtPeriodEnd: true}, nil
}

func (s *stubBilling) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	return &stripe.Subscription{ID: id, Status: stripe.SubscriptionStatusActive}, nil
}

func (s *stubBilling) CreatePortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	s.portalCalls++
	return &stripe.BillingPortalSession{URL: "https://billing.stripe.test/portal"}, nil
}

func testConfig() config.StripeConfig {
	return config.StripeConfig{
		SubscriptionPriceID: "price_pro_monthly",
		CheckoutSuccessURL:  "https://slabstak.test/billing/success",
		CheckoutCancelURL:   "https://slabstak.test/billing/cancel",
		PortalReturnURL:     "https://slabstak.test/settings",
	}
}

func newSubService(t *testing.T, repo *stubRepo, billing *stubBilling) Service {
	t.Helper()
	svc, err := NewService(Params{Repo: repo, Stripe: billing, Config: testConfig()})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestGetDefaultsToFreePlan(t *testing.T) {
	svc := newSubService(t, &stubRepo{}, &stubBilling{})

	sub, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sub.Plan != enums.SubscriptionPlanFree {
		t.Fatalf("expected free plan got %s", sub.Plan)
	}
}

func TestCreateCheckoutCarriesUserMetadata(t *testing.T) {
	billing := &stubBilling{}
	svc := newSubService(t, &stubRepo{}, billing)
	userID := uuid.New()

	url, err := svc.CreateCheckout(context.Background(), userID, "collector@example.com")
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if url == "" {
		t.Fatal("expected session url")
	}
	if billing.checkout.SubscriptionData.Metadata["user_id"] != userID.String() {
		t.Fatal("subscription metadata must carry the user id")
	}
	if *billing.checkout.LineItems[0].Price != "price_pro_monthly" {
		t.Fatal("checkout must use the configured price")
	}
}

func TestCancelWithoutStoredSubscriptionIs404(t *testing.T) {
	billing := &stubBilling{}
	svc := newSubService(t, &stubRepo{}, billing)

	err := svc.Cancel(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if billing.updatedID != "" {
		t.Fatal("provider must not be called")
	}
}

func TestCancelWithoutProviderIDIs404(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{sub: &models.Subscription{UserID: userID, Plan: enums.SubscriptionPlanFree}}
	billing := &stubBilling{}
	svc := newSubService(t, repo, billing)

	err := svc.Cancel(context.Background(), userID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if billing.updatedID != "" {
		t.Fatal("provider must not be called")
	}
}

func TestCancelSchedulesAtPeriodEnd(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{sub: &models.Subscription{
		UserID:               userID,
		StripeSubscriptionID: "sub_123",
		Plan:                 enums.SubscriptionPlanPro,
		Status:               enums.SubscriptionStatusActive,
	}}
	billing := &stubBilling{}
	svc := newSubService(t, repo, billing)

	if err := svc.Cancel(context.Background(), userID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if billing.updatedID != "sub_123" {
		t.Fatalf("expected provider call for sub_123, got %q", billing.updatedID)
	}
	if billing.updatedParams.CancelAtPeriodEnd == nil || !*billing.updatedParams.CancelAtPeriodEnd {
		t.Fatal("cancel_at_period_end must be requested")
	}
	if repo.updates["cancel_at_period_end"] != true {
		t.Fatal("local row must mirror the flag")
	}
	if repo.updates["status"] != enums.SubscriptionStatusActive {
		t.Fatal("status stays active until the period ends")
	}
}

func TestPortalRequiresCustomerID(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{sub: &models.Subscription{UserID: userID}}
	billing := &stubBilling{}
	svc := newSubService(t, repo, billing)

	_, err := svc.Portal(context.Background(), userID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if billing.portalCalls != 0 {
		t.Fatal("provider must not be called")
	}
}
