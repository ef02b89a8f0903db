package checkout

import (
	"github.com/google/uuid"
)

// CartItem is one client-selected menu entry. Size and extras reference option
// names on the menu item; prices are always resolved server-side.
type CartItem struct {
	MenuItemID uuid.UUID `json:"menu_item_id" validate:"required"`
	Size       string    `json:"size"`
	Extras     []string  `json:"extras"`
	Quantity   int       `json:"quantity" validate:"required,min=1,max=50"`
}

// Request carries everything needed to place an order.
type Request struct {
	BuyerName       string     `json:"buyer_name" validate:"required,min=2,max=120"`
	BuyerEmail      string     `json:"buyer_email" validate:"required,email"`
	DeliveryAddress string     `json:"delivery_address" validate:"required,min=8,max=500"`
	Items           []CartItem `json:"items" validate:"required,min=1,dive"`
	CouponCode      string     `json:"coupon_code"`

	// UserID is attached from the session when the buyer is signed in.
	UserID *uuid.UUID `json:"-"`
}

// Response is handed back to the storefront so it can open the payment UI.
type Response struct {
	OrderID        uuid.UUID `json:"order_id"`
	GatewayOrderID string    `json:"gateway_order_id"`
	AmountPaise    int64     `json:"amount_paise"`
	Currency       string    `json:"currency"`
	KeyID          string    `json:"key_id"`
	IntegrityToken string    `json:"integrity_token"`
	Subtotal       int       `json:"subtotal"`
	Tax            int       `json:"tax"`
	DeliveryFee    int       `json:"delivery_fee"`
	Discount       int       `json:"discount"`
	Total          int       `json:"total"`
}
