package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/pkg/types"
)

// OrderLineItem captures the snapshot of one item within an order. Quantity
// is represented by repeated entries grouped at display time, not a count.
type OrderLineItem struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	MenuItemID *uuid.UUID `gorm:"column:menu_item_id;type:uuid"`

	Name      string            `gorm:"column:name;not null"`
	UnitPrice int               `gorm:"column:unit_price;not null"`
	Size      *types.ItemOption `gorm:"column:size;type:jsonb;serializer:json"`
	Extras    types.ItemOptions `gorm:"column:extras;type:jsonb;serializer:json"`
	LineTotal int               `gorm:"column:line_total;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderLineItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
