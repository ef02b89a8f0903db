package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/pkg/enums"
)

// Coupon is a discount code managed by the back-office. UsageCount is only
// advanced by confirmed payments, never by validation alone.
type Coupon struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code         string             `gorm:"column:code;uniqueIndex;not null"`
	DiscountType enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	Value        int                `gorm:"column:value;not null"`
	MinOrder     *int               `gorm:"column:min_order"`
	MaxDiscount  *int               `gorm:"column:max_discount"`
	ExpiresAt    *time.Time         `gorm:"column:expires_at"`
	UsageLimit   *int               `gorm:"column:usage_limit"`
	UsageCount   int                `gorm:"column:usage_count;not null;default:0"`
	Active       bool               `gorm:"column:active;not null;default:true"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
