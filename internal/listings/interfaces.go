package listings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/pagination"
)

// Repository defines persistence operations for the listings table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Listing, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
}
