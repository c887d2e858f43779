package ratings

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/slabstak/slabstak-backend/pkg/db/models"
	"github.com/slabstak/slabstak-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a ratings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	if err := r.db.WithContext(ctx).Create(rating).Error; err != nil {
		return nil, err
	}
	return rating, nil
}

func (r *repository) ExistsForOrderAndRater(ctx context.Context, orderID, raterID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Where("order_id = ? AND rater_id = ?", orderID, raterID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Rating, error) {
	params = params.Normalize()

	var out []models.Rating
	err := r.db.WithContext(ctx).
		Where("rated_user_id = ?", userID).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecomputeSellerAverage refreshes the denormalized reputation row from the
// ratings actually on file.
func (r *repository) RecomputeSellerAverage(ctx context.Context, ratedUserID uuid.UUID) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("rated_user_id = ?", ratedUserID).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	profile := &models.SellerProfile{
		UserID:        ratedUserID,
		AverageRating: decimal.NewFromFloat(agg.Avg).Round(2),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"average_rating", "updated_at"}),
		}).
		Create(profile).Error
}
