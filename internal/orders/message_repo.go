package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository builds an order messages repository bound to the provided DB.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.OrderMessage) (*models.OrderMessage, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (r *messageRepository) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderMessage, error) {
	var out []models.OrderMessage
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *messageRepository) MarkReadForReader(ctx context.Context, orderID, readerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderMessage{}).
		Where("order_id = ? AND sender_id <> ? AND is_read = ?", orderID, readerID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": time.Now().UTC(),
		}).Error
}
