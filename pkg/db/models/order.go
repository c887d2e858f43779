package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/slabstak/slabstak-backend/pkg/enums"
)

// Order snapshots the monetary terms of a purchase at creation time. The
// amounts are never recomputed afterward, so later listing edits cannot
// retroactively change an open order.
type Order struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ListingID      uuid.UUID           `gorm:"column:listing_id;type:uuid;not null;index" json:"listing_id"`
	BuyerID        uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index" json:"buyer_id"`
	SellerID       uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	ItemPrice      decimal.Decimal     `gorm:"column:item_price;type:numeric(12,2);not null" json:"item_price"`
	ShippingCost   decimal.Decimal     `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0" json:"shipping_cost"`
	PlatformFee    decimal.Decimal     `gorm:"column:platform_fee;type:numeric(12,2);not null" json:"platform_fee"`
	TotalAmount    decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
	Status         enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending';index" json:"status"`
	PaymentStatus  enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'" json:"payment_status"`
	EscrowStatus   enums.EscrowStatus  `gorm:"column:escrow_status;type:text;not null;default:'pending'" json:"escrow_status"`
	TrackingNumber *string             `gorm:"column:tracking_number" json:"tracking_number,omitempty"`
	ShippedAt      *time.Time          `gorm:"column:shipped_at" json:"shipped_at,omitempty"`
	CanceledAt     *time.Time          `gorm:"column:canceled_at" json:"canceled_at,omitempty"`
	Listing        *Listing            `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
