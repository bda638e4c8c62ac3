package creation

import (
	"context"

	"gorm.io/gorm"
)

// Repo has no update or delete path: creations are immutable once inserted.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Insert(ctx context.Context, c *Creation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// ListByUser returns the user's creations newest first.
func (r *Repo) ListByUser(ctx context.Context, userID string, limit int) ([]Creation, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var out []Creation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListPublished returns published images newest first.
func (r *Repo) ListPublished(ctx context.Context, limit int) ([]Creation, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var out []Creation
	if err := r.db.WithContext(ctx).
		Where("publish = ? AND type = ?", true, KindImage).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
