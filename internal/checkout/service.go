package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/internal/coupons"
	"github.com/feastly/feastly-backend/internal/menu"
	"github.com/feastly/feastly-backend/internal/orders"
	"github.com/feastly/feastly-backend/internal/pricing"
	"github.com/feastly/feastly-backend/pkg/db/models"
	"github.com/feastly/feastly-backend/pkg/enums"
	pkgerrors "github.com/feastly/feastly-backend/pkg/errors"
	"github.com/feastly/feastly-backend/pkg/logger"
	"github.com/feastly/feastly-backend/pkg/razorpay"
	"github.com/feastly/feastly-backend/pkg/types"
)

// gateway is the slice of the payment adapter checkout needs.
type gateway interface {
	CreateOrder(ctx context.Context, amountRupees int, receipt string) (*razorpay.OrderSession, error)
	KeyID() string
}

// couponValidator re-validates a coupon against the recomputed subtotal.
type couponValidator interface {
	Validate(ctx context.Context, code string, subtotal int) (int, *models.Coupon, error)
}

// Service turns a validated cart into a pending order with a live payment
// session.
type Service struct {
	menuRepo   menu.Repository
	ordersRepo orders.Repository
	coupons    couponValidator
	gateway    gateway
	logg       *logger.Logger
}

// NewService wires the checkout flow.
func NewService(
	menuRepo menu.Repository,
	ordersRepo orders.Repository,
	couponSvc couponValidator,
	gw gateway,
	logg *logger.Logger,
) *Service {
	return &Service{
		menuRepo:   menuRepo,
		ordersRepo: ordersRepo,
		coupons:    couponSvc,
		gateway:    gw,
		logg:       logg,
	}
}

// PlaceOrder runs the full order-creation flow: resolve and price the cart
// server-side, re-validate the coupon, create the remote payment session, and
// persist the pending order with its integrity token. Nothing is persisted if
// the gateway call fails.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (*Response, error) {
	if err := validateBuyer(req); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lineItems, lines, err := s.resolveCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	subtotal := pricing.Subtotal(lines)

	discount := 0
	couponCode := coupons.NormalizeCode(req.CouponCode)
	if couponCode != "" {
		discount, _, err = s.coupons.Validate(ctx, couponCode, subtotal)
		if err != nil {
			return nil, err
		}
	}

	quote := pricing.Compute(lines, discount)

	session, err := s.gateway.CreateOrder(ctx, quote.Total, receiptFor())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment session")
	}

	token := orders.IntegrityToken(lineItems, quote.Total)

	order := &models.Order{
		UserID:            req.UserID,
		GatewayOrderID:    session.GatewayOrderID,
		BuyerName:         strings.TrimSpace(req.BuyerName),
		BuyerEmail:        strings.TrimSpace(req.BuyerEmail),
		DeliveryAddress:   strings.TrimSpace(req.DeliveryAddress),
		Subtotal:          quote.Subtotal,
		Tax:               quote.Tax,
		DeliveryFee:       quote.DeliveryFee,
		Discount:          quote.Discount,
		Total:             quote.Total,
		IntegrityToken:    token,
		PaymentStatus:     enums.PaymentStatusPending,
		FulfillmentStatus: enums.FulfillmentStatusPlaced,
		Items:             lineItems,
	}
	if couponCode != "" {
		order.CouponCode = &couponCode
	}

	created, err := s.ordersRepo.Create(ctx, order)
	if err != nil {
		// The gateway order now exists without a local record; flag it for
		// manual reconciliation.
		ctx = s.logg.WithFields(ctx, map[string]any{
			"gateway_order_id":        session.GatewayOrderID,
			"reconciliation_required": true,
		})
		s.logg.Error(ctx, "order persistence failed after gateway order creation", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting order")
	}

	ctx = s.logg.WithOrderID(ctx, created.ID.String())
	s.logg.Info(s.logg.WithField(ctx, "gateway_order_id", session.GatewayOrderID), "order placed")

	return &Response{
		OrderID:        created.ID,
		GatewayOrderID: session.GatewayOrderID,
		AmountPaise:    session.AmountPaise,
		Currency:       session.Currency,
		KeyID:          s.gateway.KeyID(),
		IntegrityToken: token,
		Subtotal:       quote.Subtotal,
		Tax:            quote.Tax,
		DeliveryFee:    quote.DeliveryFee,
		Discount:       quote.Discount,
		Total:          quote.Total,
	}, nil
}

// resolveCart maps client selections onto catalog entries, pricing every unit
// server-side. Quantity is expanded into repeated line items.
func (s *Service) resolveCart(ctx context.Context, items []CartItem) ([]models.OrderLineItem, []pricing.Line, error) {
	var lineItems []models.OrderLineItem
	var lines []pricing.Line

	for _, cartItem := range items {
		if cartItem.Quantity < 1 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}

		menuItem, err := s.menuRepo.FindByID(ctx, cartItem.MenuItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cart references an unknown menu item")
			}
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving menu item")
		}
		if !menuItem.Available {
			return nil, nil, pkgerrors.New(
				pkgerrors.CodeValidation,
				fmt.Sprintf("%s is currently unavailable", menuItem.Name),
			)
		}

		var size *types.ItemOption
		if cartItem.Size != "" {
			option, ok := menuItem.Sizes.Find(cartItem.Size)
			if !ok {
				return nil, nil, pkgerrors.New(
					pkgerrors.CodeValidation,
					fmt.Sprintf("unknown size %q for %s", cartItem.Size, menuItem.Name),
				)
			}
			size = &option
		}

		var extras types.ItemOptions
		for _, name := range cartItem.Extras {
			option, ok := menuItem.Extras.Find(name)
			if !ok {
				return nil, nil, pkgerrors.New(
					pkgerrors.CodeValidation,
					fmt.Sprintf("unknown extra %q for %s", name, menuItem.Name),
				)
			}
			extras = append(extras, option)
		}

		base := pricing.EffectiveBasePrice(menuItem.Price, menuItem.DiscountedPrice)
		unit := pricing.UnitPrice(base, size, extras)

		for i := 0; i < cartItem.Quantity; i++ {
			menuItemID := menuItem.ID
			lineItems = append(lineItems, models.OrderLineItem{
				MenuItemID: &menuItemID,
				Name:       menuItem.Name,
				UnitPrice:  unit,
				Size:       size,
				Extras:     extras,
				LineTotal:  unit,
			})
			lines = append(lines, pricing.Line{Name: menuItem.Name, UnitPrice: unit})
		}
	}

	return lineItems, lines, nil
}

func validateBuyer(req Request) error {
	if strings.TrimSpace(req.BuyerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer name is required")
	}
	email := strings.TrimSpace(req.BuyerEmail)
	if email == "" || !strings.Contains(email, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "a valid buyer email is required")
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required")
	}
	return nil
}

// receiptFor produces a short unique receipt reference; Razorpay caps
// receipts at 40 characters.
func receiptFor() string {
	return fmt.Sprintf("feastly-%s", uuid.NewString()[:18])
}
