package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reviewer is an operator allowed to decide withdrawal requests. ChatID is
// where reviewer notifications go; it is optional for console-only operators.
type Reviewer struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	ChatID   *string   `gorm:"size:64" json:"chat_id,omitempty"`
	IsActive bool      `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Reviewer) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
