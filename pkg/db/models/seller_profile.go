package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellerProfile aggregates marketplace reputation per seller. AverageRating
// is recomputed whenever a new rating lands.
type SellerProfile struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null;unique" json:"user_id"`
	DisplayName   *string         `gorm:"column:display_name" json:"display_name,omitempty"`
	AverageRating decimal.Decimal `gorm:"column:average_rating;type:numeric(3,2);not null;default:0" json:"average_rating"`
	TotalSales    int             `gorm:"column:total_sales;not null;default:0" json:"total_sales"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
