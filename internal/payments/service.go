package payments

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feastly/feastly-backend/internal/orders"
	"github.com/feastly/feastly-backend/pkg/db/models"
	pkgerrors "github.com/feastly/feastly-backend/pkg/errors"
	"github.com/feastly/feastly-backend/pkg/logger"
	"github.com/feastly/feastly-backend/pkg/metrics"
)

// Gateway webhook event types we act on. Anything else is acknowledged and
// dropped.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// CallbackRequest is the browser-side confirmation posted after the payment
// UI closes. IntegrityToken echoes the token issued at checkout.
type CallbackRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
	IntegrityToken   string `json:"integrity_token" validate:"required"`
}

// webhookEnvelope mirrors the relevant slice of the gateway's webhook payload.
type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// signatureVerifier is the slice of the gateway adapter confirmation needs.
type signatureVerifier interface {
	VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	VerifyWebhookSignature(rawBody []byte, signature string) bool
}

// couponRedeemer counts a coupon use at most once per order.
type couponRedeemer interface {
	Redeem(ctx context.Context, orderID uuid.UUID, code string) error
}

// eventGuard deduplicates webhook deliveries by gateway event id.
type eventGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// Service implements both payment-confirmation paths. Neither path takes
// locks: every state change is a conditional single-row update, so duplicate
// deliveries and arbitrary interleavings of the two paths converge on the
// same final state.
type Service struct {
	orders  orders.Repository
	coupons couponRedeemer
	gateway signatureVerifier
	guard   eventGuard
	metrics *metrics.PaymentMetrics
	logg    *logger.Logger
}

// NewService wires the payment confirmation service.
func NewService(
	ordersRepo orders.Repository,
	coupons couponRedeemer,
	gateway signatureVerifier,
	guard eventGuard,
	paymentMetrics *metrics.PaymentMetrics,
	logg *logger.Logger,
) *Service {
	return &Service{
		orders:  ordersRepo,
		coupons: coupons,
		gateway: gateway,
		guard:   guard,
		metrics: paymentMetrics,
		logg:    logg,
	}
}

// ConfirmCallback handles the client-side confirmation. The signature proves
// the payment id belongs to the order; the integrity token proves the order
// contents were not altered between checkout and payment.
func (s *Service) ConfirmCallback(ctx context.Context, req CallbackRequest) (*models.Order, error) {
	if !s.gateway.VerifyPaymentSignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		s.metrics.ObserveVerification("callback", "bad_signature")
		s.logg.Warn(
			s.logg.WithField(ctx, "gateway_order_id", req.GatewayOrderID),
			"payment callback carried an invalid signature",
		)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "payment signature verification failed")
	}

	order, err := s.loadByGatewayOrderID(ctx, req.GatewayOrderID)
	if err != nil {
		s.metrics.ObserveVerification("callback", "order_missing")
		return nil, err
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	if err := s.checkIntegrity(ctx, order, req.IntegrityToken); err != nil {
		s.metrics.ObserveVerification("callback", "tampered")
		return nil, err
	}

	applied, err := s.orders.MarkVerified(ctx, order.ID, req.GatewayPaymentID, time.Now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking order verified")
	}
	if applied {
		s.metrics.ObserveVerification("callback", "confirmed")
		s.logg.Info(ctx, "payment verified via client callback")
	} else {
		// Already confirmed by an earlier callback or by the webhook;
		// the retry is acknowledged without a state change.
		s.metrics.ObserveVerification("callback", "duplicate")
	}

	if err := s.redeemCoupon(ctx, order); err != nil {
		return nil, err
	}

	return s.loadByGatewayOrderID(ctx, req.GatewayOrderID)
}

// ProcessWebhook handles an asynchronous gateway delivery. The signature is
// verified over the raw body exactly as received; the event-id guard drops
// redeliveries before any database work and is released again if processing
// fails so the gateway's retry can land.
func (s *Service) ProcessWebhook(ctx context.Context, rawBody []byte, signature, eventID string) error {
	if !s.gateway.VerifyWebhookSignature(rawBody, signature) {
		s.metrics.ObserveWebhookEvent("unknown", "bad_signature")
		s.logg.Warn(ctx, "webhook carried an invalid signature")
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature verification failed")
	}

	if eventID != "" {
		seen, err := s.guard.CheckAndMark(ctx, eventID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking event idempotency")
		}
		if seen {
			s.metrics.ObserveWebhookEvent("unknown", "duplicate")
			return nil
		}
	}

	if err := s.processEvent(ctx, rawBody); err != nil {
		if eventID != "" {
			if delErr := s.guard.Delete(ctx, eventID); delErr != nil {
				s.logg.Error(ctx, "releasing webhook idempotency mark failed", delErr)
			}
		}
		return err
	}
	return nil
}

func (s *Service) processEvent(ctx context.Context, rawBody []byte) error {
	var envelope webhookEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding webhook payload")
	}

	switch envelope.Event {
	case EventPaymentCaptured:
		return s.handleCaptured(ctx, envelope)
	case EventPaymentFailed:
		return s.handleFailed(ctx, envelope)
	default:
		s.metrics.ObserveWebhookEvent(envelope.Event, "ignored")
		return nil
	}
}

func (s *Service) handleCaptured(ctx context.Context, envelope webhookEnvelope) error {
	entity := envelope.Payload.Payment.Entity
	if entity.OrderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "captured event missing order id")
	}

	order, err := s.loadByGatewayOrderID(ctx, entity.OrderID)
	if err != nil {
		s.metrics.ObserveWebhookEvent(EventPaymentCaptured, "order_missing")
		return err
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	if err := s.checkIntegrity(ctx, order, order.IntegrityToken); err != nil {
		// Retrying cannot repair an altered order, so the event is
		// acknowledged; the log line and counter carry the signal.
		s.metrics.ObserveWebhookEvent(EventPaymentCaptured, "tampered")
		return nil
	}

	applied, err := s.orders.MarkCompleted(ctx, order.ID, entity.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking order completed")
	}
	if applied {
		s.metrics.ObserveWebhookEvent(EventPaymentCaptured, "processed")
		s.logg.Info(ctx, "payment completed via webhook")
	} else {
		s.metrics.ObserveWebhookEvent(EventPaymentCaptured, "duplicate")
	}

	return s.redeemCoupon(ctx, order)
}

func (s *Service) handleFailed(ctx context.Context, envelope webhookEnvelope) error {
	entity := envelope.Payload.Payment.Entity
	if entity.OrderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "failed event missing order id")
	}

	order, err := s.loadByGatewayOrderID(ctx, entity.OrderID)
	if err != nil {
		s.metrics.ObserveWebhookEvent(EventPaymentFailed, "order_missing")
		return err
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	applied, err := s.orders.MarkFailed(ctx, order.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking order failed")
	}
	if applied {
		s.metrics.ObserveWebhookEvent(EventPaymentFailed, "processed")
		s.logg.Info(ctx, "payment marked failed via webhook")
	} else {
		// The order was already confirmed or already failed; a late
		// failure event never demotes a paid order.
		s.metrics.ObserveWebhookEvent(EventPaymentFailed, "stale")
	}
	return nil
}

// checkIntegrity re-derives the token from the stored line items and total and
// compares both against the stored token and, for the callback path, the
// client echo.
func (s *Service) checkIntegrity(ctx context.Context, order *models.Order, presented string) error {
	recomputed := orders.IntegrityToken(order.Items, order.Total)
	storedOK := subtle.ConstantTimeCompare([]byte(recomputed), []byte(order.IntegrityToken)) == 1
	presentedOK := subtle.ConstantTimeCompare([]byte(recomputed), []byte(presented)) == 1
	if storedOK && presentedOK {
		return nil
	}

	s.metrics.IncTamperRejection()
	s.logg.Warn(
		s.logg.WithField(ctx, "potential_fraud", true),
		"order integrity check failed, contents were altered after checkout",
	)
	return pkgerrors.New(pkgerrors.CodeConflict, "order integrity check failed")
}

func (s *Service) redeemCoupon(ctx context.Context, order *models.Order) error {
	if order.CouponCode == nil || *order.CouponCode == "" {
		return nil
	}
	// Confirmation must only count a coupon use once the payment is in a
	// confirmed state; both paths reach here only after their conditional
	// update, and the per-order marker makes the increment single-shot.
	if err := s.coupons.Redeem(ctx, order.ID, *order.CouponCode); err != nil {
		return err
	}
	return nil
}

func (s *Service) loadByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	order, err := s.orders.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(
				pkgerrors.CodeNotFound,
				fmt.Sprintf("no order for gateway order %s", gatewayOrderID),
			)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}
