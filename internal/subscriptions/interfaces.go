package subscriptions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
)

// Repository defines persistence operations for the subscriptions table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	FindByStripeSubscriptionID(ctx context.Context, stripeSubID string) (*models.Subscription, error)
	Upsert(ctx context.Context, sub *models.Subscription) (*models.Subscription, error)
	UpdateByUserID(ctx context.Context, userID uuid.UUID, updates map[string]any) error
}
