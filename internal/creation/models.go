package creation

import "time"

type Kind string

const (
	KindArticle      Kind = "article"
	KindBlogTitle    Kind = "blog-title"
	KindImage        Kind = "image"
	KindResumeReview Kind = "resume-review"
)

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID string
	Plan   Plan
}

func (c Caller) Premium() bool { return c.Plan == PlanPremium }

// Creation is the immutable record written once per completed generation.
type Creation struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"` // ULID
	UserID    string    `gorm:"type:varchar(64);not null;index:idx_creations_user_created,priority:1" json:"user_id"`
	Prompt    string    `gorm:"type:text;not null" json:"prompt"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Type      Kind      `gorm:"type:varchar(16);not null" json:"type"`
	Publish   bool      `gorm:"not null;default:false;index:idx_creations_publish_created,priority:1" json:"publish"`
	CreatedAt time.Time `gorm:"index:idx_creations_user_created,priority:2;index:idx_creations_publish_created,priority:2" json:"created_at"`
}

func (Creation) TableName() string { return "creations" }
