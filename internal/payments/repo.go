package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository builds a transactions repository bound to the provided DB.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) WithTx(tx *gorm.DB) TransactionRepository {
	if tx == nil {
		return r
	}
	return &transactionRepository{db: tx}
}

func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *transactionRepository) FindByIntentID(ctx context.Context, intentID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Where("stripe_payment_intent_id = ?", intentID).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) UpdateByIntentID(ctx context.Context, intentID string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("stripe_payment_intent_id = ?", intentID).
		Updates(updates).Error
}
