package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/pkg/types"
)

// MenuItem is one dish on the storefront menu. Prices are whole rupees;
// DiscountedPrice, when set and lower than Price, wins at checkout.
type MenuItem struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name            string            `gorm:"column:name;not null"`
	Description     string            `gorm:"column:description"`
	Category        string            `gorm:"column:category;not null;index"`
	Price           int               `gorm:"column:price;not null"`
	DiscountedPrice *int              `gorm:"column:discounted_price"`
	ImageURL        *string           `gorm:"column:image_url"`
	Sizes           types.ItemOptions `gorm:"column:sizes;type:jsonb;serializer:json"`
	Extras          types.ItemOptions `gorm:"column:extras;type:jsonb;serializer:json"`
	Available       bool              `gorm:"column:available;not null;default:true"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *MenuItem) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
