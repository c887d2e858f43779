package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/slabstak/slabstak-backend/pkg/enums"
)

// Subscription persists Stripe subscription state per user. A user has at
// most one row; webhook handlers upsert on user_id. LastEventAt records the
// Stripe event timestamp that last touched the row so an out-of-order
// redelivery cannot overwrite newer state.
type Subscription struct {
	ID                   uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID               uuid.UUID                `gorm:"column:user_id;type:uuid;not null;unique" json:"user_id"`
	StripeCustomerID     string                   `gorm:"column:stripe_customer_id" json:"stripe_customer_id"`
	StripeSubscriptionID string                   `gorm:"column:stripe_subscription_id;index" json:"stripe_subscription_id"`
	Plan                 enums.SubscriptionPlan   `gorm:"column:plan;type:text;not null;default:'free'" json:"plan"`
	Status               enums.SubscriptionStatus `gorm:"column:status;type:text;not null;default:'active'" json:"status"`
	CurrentPeriodStart   *time.Time               `gorm:"column:current_period_start" json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time               `gorm:"column:current_period_end" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool                     `gorm:"column:cancel_at_period_end;not null;default:false" json:"cancel_at_period_end"`
	LastEventAt          *time.Time               `gorm:"column:last_event_at" json:"-"`
	CreatedAt            time.Time                `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time                `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
