package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/enums"
	pkgerrors "github.com/slabstak/slabstak-backend/pkg/errors"
	"github.com/slabstak/slabstak-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	order   *models.Order
	created *models.Order
	updates map[string]any
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.created = order
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *stubOrdersRepo) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params, filters Filters) ([]models.Order, error) {
	if s.order == nil {
		return nil, nil
	}
	return []models.Order{*s.order}, nil
}

func (s *stubOrdersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.updates == nil {
		s.updates = map[string]any{}
	}
	for k, v := range updates {
		s.updates[k] = v
	}
	if status, ok := updates["status"].(enums.OrderStatus); ok && s.order != nil {
		s.order.Status = status
	}
	return nil
}

type stubListingFinder struct {
	listing *models.Listing
}

func (s *stubListingFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	if s.listing == nil || s.listing.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.listing
	return &copied, nil
}

func activeListing(price, shipping int64) *models.Listing {
	return &models.Listing{
		ID:           uuid.New(),
		SellerID:     uuid.New(),
		PlayerName:   "Derek Jeter",
		SetName:      "1993 SP Foil",
		Condition:    "graded",
		Price:        decimal.NewFromInt(price),
		ShippingCost: decimal.NewFromInt(shipping),
		Status:       enums.ListingStatusActive,
	}
}

func newOrderService(t *testing.T, repo Repository, finder ListingFinder) Service {
	t.Helper()
	svc, err := NewService(Params{Repo: repo, Listings: finder, PlatformFeePct: 10})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateSnapshotsMoneyFields(t *testing.T) {
	listing := activeListing(100, 5)
	repo := &stubOrdersRepo{}
	svc := newOrderService(t, repo, &stubListingFinder{listing: listing})

	result, err := svc.Create(context.Background(), uuid.New(), CreateInput{ListingID: listing.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	order := result.Order
	if !order.PlatformFee.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected fee 10.00 got %s", order.PlatformFee)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("115.00")) {
		t.Fatalf("expected total 115.00 got %s", order.TotalAmount)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending got %s", order.Status)
	}
	if order.PaymentStatus != enums.PaymentStatusUnpaid {
		t.Fatalf("expected unpaid got %s", order.PaymentStatus)
	}
	if order.EscrowStatus != enums.EscrowStatusPending {
		t.Fatalf("expected escrow pending got %s", order.EscrowStatus)
	}
	if result.NextStep != NextStepPayment {
		t.Fatalf("expected next_step payment got %s", result.NextStep)
	}
}

func TestCreateRejectsInactiveListing(t *testing.T) {
	listing := activeListing(100, 0)
	listing.Status = enums.ListingStatusSold
	repo := &stubOrdersRepo{}
	svc := newOrderService(t, repo, &stubListingFinder{listing: listing})

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{ListingID: listing.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeListingUnavailable {
		t.Fatalf("expected listing unavailable, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("no order row should be written")
	}
}

func TestCreateRejectsUnknownListing(t *testing.T) {
	repo := &stubOrdersRepo{}
	svc := newOrderService(t, repo, &stubListingFinder{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{ListingID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateRejectsBuyingOwnListing(t *testing.T) {
	listing := activeListing(100, 0)
	repo := &stubOrdersRepo{}
	svc := newOrderService(t, repo, &stubListingFinder{listing: listing})

	_, err := svc.Create(context.Background(), listing.SellerID, CreateInput{ListingID: listing.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func seedOrder(status enums.OrderStatus) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		ListingID:     uuid.New(),
		BuyerID:       uuid.New(),
		SellerID:      uuid.New(),
		ItemPrice:     decimal.NewFromInt(100),
		ShippingCost:  decimal.NewFromInt(5),
		PlatformFee:   decimal.NewFromInt(10),
		TotalAmount:   decimal.NewFromInt(115),
		Status:        status,
		PaymentStatus: enums.PaymentStatusUnpaid,
		EscrowStatus:  enums.EscrowStatusPending,
	}
}

func TestUpdateRejectsInvalidTransition(t *testing.T) {
	order := seedOrder(enums.OrderStatusDelivered)
	repo := &stubOrdersRepo{order: order}
	svc := newOrderService(t, repo, &stubListingFinder{})

	status := string(enums.OrderStatusPaid)
	_, err := svc.Update(context.Background(), order.BuyerID, order.ID, UpdateInput{Status: &status})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if len(repo.updates) != 0 {
		t.Fatal("status must be left unchanged")
	}
}

func TestUpdateWalksHappyPath(t *testing.T) {
	order := seedOrder(enums.OrderStatusPaid)
	repo := &stubOrdersRepo{order: order}
	svc := newOrderService(t, repo, &stubListingFinder{})

	for _, next := range []enums.OrderStatus{
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
		enums.OrderStatusCompleted,
	} {
		status := string(next)
		updated, err := svc.Update(context.Background(), order.SellerID, order.ID, UpdateInput{Status: &status})
		if err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("expected %s got %s", next, updated.Status)
		}
	}

	if _, ok := repo.updates["shipped_at"]; !ok {
		t.Fatal("shipped_at should be set on the shipped transition")
	}
}

func TestUpdateCancelSetsCanceledAt(t *testing.T) {
	order := seedOrder(enums.OrderStatusPending)
	repo := &stubOrdersRepo{order: order}
	svc := newOrderService(t, repo, &stubListingFinder{})

	status := string(enums.OrderStatusCancelled)
	_, err := svc.Update(context.Background(), order.BuyerID, order.ID, UpdateInput{Status: &status})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, ok := repo.updates["canceled_at"]; !ok {
		t.Fatal("canceled_at should be set")
	}
}

func TestUpdateAppliesPaymentStatus(t *testing.T) {
	order := seedOrder(enums.OrderStatusDelivered)
	repo := &stubOrdersRepo{order: order}
	svc := newOrderService(t, repo, &stubListingFinder{})

	paymentStatus := string(enums.PaymentStatusRefunded)
	_, err := svc.Update(context.Background(), order.SellerID, order.ID, UpdateInput{PaymentStatus: &paymentStatus})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := repo.updates["payment_status"]; got != enums.PaymentStatusRefunded {
		t.Fatalf("expected payment_status refunded, got %v", got)
	}
}

func TestUpdateRejectsUnknownPaymentStatus(t *testing.T) {
	order := seedOrder(enums.OrderStatusPaid)
	repo := &stubOrdersRepo{order: order}
	svc := newOrderService(t, repo, &stubListingFinder{})

	paymentStatus := "settled"
	_, err := svc.Update(context.Background(), order.BuyerID, order.ID, UpdateInput{PaymentStatus: &paymentStatus})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.updates) != 0 {
		t.Fatal("no column should be written")
	}
}

func TestGetRequiresParticipant(t *testing.T) {
	order := seedOrder(enums.OrderStatusPending)
	repo := &stubOrdersRepo{order: order}
	svc := newOrderService(t, repo, &stubListingFinder{})

	_, err := svc.Get(context.Background(), uuid.New(), order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, err := svc.Get(context.Background(), order.SellerID, order.ID); err != nil {
		t.Fatalf("seller should see the order: %v", err)
	}
}

func TestTransitionTableIsTotal(t *testing.T) {
	for _, status := range []enums.OrderStatus{
		enums.OrderStatusCompleted,
		enums.OrderStatusCancelled,
		enums.OrderStatusResolved,
	} {
		if !status.IsTerminal() {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
	if enums.OrderStatusDisputed.IsTerminal() {
		t.Fatal("disputed must allow resolution")
	}
	if !enums.OrderStatusDisputed.CanTransitionTo(enums.OrderStatusResolved) {
		t.Fatal("disputed should transition to resolved")
	}
}
