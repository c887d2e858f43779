package listings

import (
	"github.com/shopspring/decimal"

	"github.com/slabstak/slabstak-backend/pkg/enums"
)

// Filters describe the inputs supported by the public listings search.
type Filters struct {
	Status   *enums.ListingStatus
	Sport    *string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Query    string
}

// CreateInput carries the seller-supplied fields for a new listing.
type CreateInput struct {
	PlayerName     string           `json:"player_name" validate:"required,max=200"`
	SetName        string           `json:"set_name" validate:"required,max=200"`
	CardNumber     *string          `json:"card_number,omitempty"`
	Year           *int             `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
	Sport          *string          `json:"sport,omitempty"`
	Condition      string           `json:"condition" validate:"required,max=50"`
	Grade          *string          `json:"grade,omitempty"`
	Price          decimal.Decimal  `json:"price" validate:"required"`
	ShippingMethod *string          `json:"shipping_method,omitempty"`
	ShippingCost   *decimal.Decimal `json:"shipping_cost,omitempty"`
	Description    *string          `json:"description,omitempty"`
	ImageURL       *string          `json:"image_url,omitempty"`
}

// UpdateInput carries the owner-editable fields. Nil means unchanged.
type UpdateInput struct {
	Price        *decimal.Decimal `json:"price,omitempty"`
	Condition    *string          `json:"condition,omitempty" validate:"omitempty,max=50"`
	Description  *string          `json:"description,omitempty"`
	ShippingCost *decimal.Decimal `json:"shipping_cost,omitempty"`
	Status       *string          `json:"status,omitempty"`
}
