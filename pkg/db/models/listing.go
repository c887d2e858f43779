package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/slabstak/slabstak-backend/pkg/enums"
)

// Listing is a sellable card posted by a seller. Once removed it is immutable.
type Listing struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SellerID       uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	PlayerName     string              `gorm:"column:player_name;not null" json:"player_name"`
	SetName        string              `gorm:"column:set_name;not null" json:"set_name"`
	CardNumber     *string             `gorm:"column:card_number" json:"card_number,omitempty"`
	Year           *int                `gorm:"column:year" json:"year,omitempty"`
	Sport          *string             `gorm:"column:sport" json:"sport,omitempty"`
	Condition      string              `gorm:"column:condition;not null" json:"condition"`
	Grade          *string             `gorm:"column:grade" json:"grade,omitempty"`
	Price          decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	ShippingMethod string              `gorm:"column:shipping_method;not null;default:'standard'" json:"shipping_method"`
	ShippingCost   decimal.Decimal     `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0" json:"shipping_cost"`
	Description    *string             `gorm:"column:description" json:"description,omitempty"`
	ImageURL       *string             `gorm:"column:image_url" json:"image_url,omitempty"`
	Status         enums.ListingStatus `gorm:"column:status;type:text;not null;default:'active';index" json:"status"`
	ViewsCount     int                 `gorm:"column:views_count;not null;default:0" json:"views_count"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
