package ratings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/pagination"
)

// Repository defines persistence operations for the user_ratings table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rating *models.Rating) (*models.Rating, error)
	ExistsForOrderAndRater(ctx context.Context, orderID, raterID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Rating, error)
	RecomputeSellerAverage(ctx context.Context, ratedUserID uuid.UUID) error
}

// OrderFinder is the slice of the orders repository the rating flow needs.
type OrderFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}
