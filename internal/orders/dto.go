package orders

import (
	"github.com/google/uuid"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/enums"
)

// ListType selects which side of the marketplace the caller wants.
type ListType string

const (
	ListTypePurchased ListType = "purchased"
	ListTypeSelling   ListType = "selling"
)

// Filters describe the inputs supported by the order list.
type Filters struct {
	Type   ListType
	Status *enums.OrderStatus
}

// CreateInput carries the buyer request for a new order.
type CreateInput struct {
	ListingID uuid.UUID `json:"listing_id" validate:"required"`
}

// CreateResult pairs the persisted order with the client's next action.
type CreateResult struct {
	Order    *models.Order `json:"order"`
	NextStep string        `json:"next_step"`
}

// UpdateInput carries the PATCH fields. Nil means unchanged.
type UpdateInput struct {
	Status         *string `json:"status,omitempty"`
	PaymentStatus  *string `json:"payment_status,omitempty"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
}
