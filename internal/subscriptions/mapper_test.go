package subscriptions

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/slabstak/slabstak-backend/pkg/enums"
)

func TestBuildSubscriptionFromStripe(t *testing.T) {
	userID := uuid.New()
	eventAt := time.Unix(1700000500, 0)
	stripeSub := &stripe.Subscription{
		ID:                "sub_abc",
		Status:            stripe.SubscriptionStatusActive,
		CancelAtPeriodEnd: true,
		Customer:          &stripe.Customer{ID: "cus_abc"},
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{CurrentPeriodStart: 1700000000, CurrentPeriodEnd: 1702592000}},
		},
	}

	sub, err := BuildSubscriptionFromStripe(stripeSub, userID, eventAt)
	if err != nil {
		t.Fatalf("BuildSubscriptionFromStripe: %v", err)
	}
	if sub.StripeSubscriptionID != "sub_abc" || sub.StripeCustomerID != "cus_abc" {
		t.Fatalf("provider ids not mapped: %+v", sub)
	}
	if sub.Plan != enums.SubscriptionPlanPro {
		t.Fatalf("active status should map to pro plan, got %s", sub.Plan)
	}
	if !sub.CancelAtPeriodEnd {
		t.Fatal("cancel flag not mapped")
	}
	if sub.CurrentPeriodStart == nil || sub.CurrentPeriodStart.Unix() != 1700000000 {
		t.Fatalf("period start not mapped: %v", sub.CurrentPeriodStart)
	}
	if sub.LastEventAt == nil || !sub.LastEventAt.Equal(eventAt) {
		t.Fatalf("last_event_at not recorded: %v", sub.LastEventAt)
	}
}

func TestBuildSubscriptionUnknownStatusDoesNotEntitle(t *testing.T) {
	sub, err := BuildSubscriptionFromStripe(&stripe.Subscription{ID: "sub_x", Status: "something_new"}, uuid.New(), time.Time{})
	if err != nil {
		t.Fatalf("BuildSubscriptionFromStripe: %v", err)
	}
	if sub.Status != enums.SubscriptionStatusPastDue {
		t.Fatalf("unknown status should fall back to past_due, got %s", sub.Status)
	}
	if sub.Plan != enums.SubscriptionPlanFree {
		t.Fatalf("unknown status must not grant pro, got %s", sub.Plan)
	}
}

func TestUserIDFromMetadata(t *testing.T) {
	want := uuid.New()
	got, err := UserIDFromMetadata(map[string]string{"user_id": want.String()})
	if err != nil {
		t.Fatalf("UserIDFromMetadata: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s got %s", want, got)
	}

	if _, err := UserIDFromMetadata(map[string]string{}); err == nil {
		t.Fatal("missing user_id should error")
	}
	if _, err := UserIDFromMetadata(map[string]string{"user_id": "nope"}); err == nil {
		t.Fatal("malformed user_id should error")
	}
}
