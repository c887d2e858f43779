package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/pagination"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params, filters Filters) ([]models.Order, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

// ListingFinder is the slice of the listings repository the order flow needs.
type ListingFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

// MessageRepository defines persistence operations for the order_messages table.
type MessageRepository interface {
	Create(ctx context.Context, message *models.OrderMessage) (*models.OrderMessage, error)
	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderMessage, error)
	MarkReadForReader(ctx context.Context, orderID, readerID uuid.UUID) error
}
