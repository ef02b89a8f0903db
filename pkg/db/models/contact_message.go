package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactMessage stores a contact-form submission for the support queue.
type ContactMessage struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name    string    `gorm:"column:name;not null"`
	Email   string    `gorm:"column:email;not null"`
	Message string    `gorm:"column:message;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (c *ContactMessage) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
