package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
)

// TransactionRepository defines persistence operations for the transactions table.
type TransactionRepository interface {
	WithTx(tx *gorm.DB) TransactionRepository
	Create(ctx context.Context, txn *models.Transaction) (*models.Transaction, error)
	FindByIntentID(ctx context.Context, intentID string) (*models.Transaction, error)
	UpdateByIntentID(ctx context.Context, intentID string, updates map[string]any) error
}
