package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/slabstak/slabstak-backend/pkg/enums"
)

// Transaction is the append-only audit trail for payment attempts. A retried
// payment inserts a new row per intent rather than updating in place.
type Transaction struct {
	ID                    uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID               uuid.UUID               `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	StripePaymentIntentID string                  `gorm:"column:stripe_payment_intent_id;not null;unique" json:"stripe_payment_intent_id"`
	Amount                decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Status                enums.TransactionStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	CreatedAt             time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
