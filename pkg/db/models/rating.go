package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating is the post-order review a participant leaves for the counterparty.
// The (order_id, rater_id) pair is unique at the storage level.
type Rating struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_user_ratings_order_rater" json:"order_id"`
	RaterID     uuid.UUID `gorm:"column:rater_id;type:uuid;not null;uniqueIndex:idx_user_ratings_order_rater" json:"rater_id"`
	RatedUserID uuid.UUID `gorm:"column:rated_user_id;type:uuid;not null;index" json:"rated_user_id"`
	Rating      int       `gorm:"column:rating;not null" json:"rating"`
	ReviewText  *string   `gorm:"column:review_text" json:"review_text,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName keeps the legacy table name.
func (Rating) TableName() string {
	return "user_ratings"
}
