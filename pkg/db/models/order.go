package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/pkg/enums"
)

// Order represents a single checkout attempt. GatewayOrderID is the sole
// correlation key between the client-callback and webhook confirmation paths.
type Order struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID           *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	GatewayOrderID   string     `gorm:"column:gateway_order_id;uniqueIndex;not null"`
	GatewayPaymentID *string    `gorm:"column:gateway_payment_id"`

	BuyerName       string `gorm:"column:buyer_name;not null"`
	BuyerEmail      string `gorm:"column:buyer_email;not null"`
	DeliveryAddress string `gorm:"column:delivery_address;not null"`

	// Pricing snapshot, computed server-side at creation. Whole rupees.
	Subtotal    int     `gorm:"column:subtotal;not null"`
	Tax         int     `gorm:"column:tax;not null"`
	DeliveryFee int     `gorm:"column:delivery_fee;not null"`
	CouponCode  *string `gorm:"column:coupon_code"`
	Discount    int     `gorm:"column:discount;not null;default:0"`
	Total       int     `gorm:"column:total;not null"`

	// IntegrityToken is a hash over line items and total, checked again at
	// confirmation time to detect tampering after creation.
	IntegrityToken string `gorm:"column:integrity_token;not null"`

	PaymentStatus     enums.PaymentStatus     `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	FulfillmentStatus enums.FulfillmentStatus `gorm:"column:fulfillment_status;type:text;not null;default:'placed'"`

	// CouponRedeemed is the at-most-once marker for usage accounting; it is
	// flipped with a conditional update, never a read-then-write.
	CouponRedeemed  bool `gorm:"column:coupon_redeemed;not null;default:false"`
	WebhookReceived bool `gorm:"column:webhook_received;not null;default:false"`

	VerifiedAt *time.Time `gorm:"column:verified_at"`
	CanceledAt *time.Time `gorm:"column:canceled_at"`

	Items []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
