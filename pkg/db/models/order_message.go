package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderMessage is a buyer/seller chat line attached to an order. Read state
// is tracked per message; a fetch by the counterparty marks it read.
type OrderMessage struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	SenderID    uuid.UUID  `gorm:"column:sender_id;type:uuid;not null" json:"sender_id"`
	Message     string     `gorm:"column:message;not null" json:"message"`
	MessageType string     `gorm:"column:message_type;not null;default:'text'" json:"message_type"`
	IsRead      bool       `gorm:"column:is_read;not null;default:false" json:"is_read"`
	ReadAt      *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
