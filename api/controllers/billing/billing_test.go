package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/slabstak/slabstak-backend/api/middleware"
	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/enums"
	pkgerrors "github.com/slabstak/slabstak-backend/pkg/errors"
)

type stubSubscriptionsService struct {
	get      func(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	checkout func(ctx context.Context, userID uuid.UUID, email string) (string, error)
	cancel   func(ctx context.Context, userID uuid.UUID) error
	portal   func(ctx context.Context, userID uuid.UUID) (string, error)
}

func (s *stubSubscriptionsService) Get(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	return s.get(ctx, userID)
}

func (s *stubSubscriptionsService) CreateCheckout(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	return s.checkout(ctx, userID, email)
}

func (s *stubSubscriptionsService) Cancel(ctx context.Context, userID uuid.UUID) error {
	return s.cancel(ctx, userID)
}

func (s *stubSubscriptionsService) Portal(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.portal(ctx, userID)
}

func TestSubscriptionReturnsFreeDefault(t *testing.T) {
	userID := uuid.New()
	svc := &stubSubscriptionsService{
		get: func(ctx context.Context, gotUser uuid.UUID) (*models.Subscription, error) {
			return &models.Subscription{UserID: gotUser, Plan: enums.SubscriptionPlanFree, Status: enums.SubscriptionStatusActive}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/subscription", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	rec := httptest.NewRecorder()
	Subscription(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"free"`) {
		t.Fatalf("expected free plan in body: %s", rec.Body.String())
	}
}

func TestCheckoutReturnsSessionURL(t *testing.T) {
	userID := uuid.New()
	svc := &stubSubscriptionsService{
		checkout: func(ctx context.Context, gotUser uuid.UUID, email string) (string, error) {
			if gotUser != userID {
				t.Fatalf("unexpected user id %s", gotUser)
			}
			return "https://checkout.stripe.com/c/pay/cs_test", nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	rec := httptest.NewRecorder()
	Checkout(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "checkout.stripe.com") {
		t.Fatalf("expected session url in body: %s", rec.Body.String())
	}
}

func TestCancelWithoutSubscriptionPropagates404(t *testing.T) {
	userID := uuid.New()
	svc := &stubSubscriptionsService{
		cancel: func(ctx context.Context, gotUser uuid.UUID) error {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no active subscription")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/cancel", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	rec := httptest.NewRecorder()
	Cancel(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPortalWithoutAuthReturns401(t *testing.T) {
	svc := &stubSubscriptionsService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/portal", nil)
	rec := httptest.NewRecorder()
	Portal(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
