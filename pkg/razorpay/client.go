package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	razorpaygo "github.com/razorpay/razorpay-go"

	"github.com/feastly/feastly-backend/pkg/config"
)

// orderAPI is the slice of the Razorpay SDK the adapter needs; tests swap in
// a stub.
type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client wraps the Razorpay SDK: remote order creation plus the two signature
// schemes (client callback and webhook). Amounts cross this boundary in whole
// rupees and leave it in paise.
type Client struct {
	orders        orderAPI
	keyID         string
	keySecret     string
	webhookSecret string
	currency      string
}

// OrderSession is the remote payment-session handle returned to the storefront.
type OrderSession struct {
	GatewayOrderID string
	AmountPaise    int64
	Currency       string
}

// New builds a gateway client from configuration.
func New(cfg config.RazorpayConfig) (*Client, error) {
	if strings.TrimSpace(cfg.KeyID) == "" || strings.TrimSpace(cfg.KeySecret) == "" {
		return nil, fmt.Errorf("razorpay key id and secret are required")
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("razorpay webhook secret is required")
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}
	sdk := razorpaygo.NewClient(cfg.KeyID, cfg.KeySecret)
	return &Client{
		orders:        sdk.Order,
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		currency:      currency,
	}, nil
}

// KeyID returns the public key the checkout UI needs.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder creates a remote payment session for the given amount.
func (c *Client) CreateOrder(ctx context.Context, amountRupees int, receipt string) (*OrderSession, error) {
	if amountRupees <= 0 {
		return nil, fmt.Errorf("order amount must be positive, got %d", amountRupees)
	}
	paise := int64(amountRupees) * 100
	data := map[string]interface{}{
		"amount":   paise,
		"currency": c.currency,
		"receipt":  receipt,
	}
	body, err := c.orders.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("gateway order response missing id")
	}
	return &OrderSession{
		GatewayOrderID: id,
		AmountPaise:    paise,
		Currency:       c.currency,
	}, nil
}

// VerifyPaymentSignature checks the client-callback signature:
// HMAC-SHA256(orderID + "|" + paymentID, key secret), hex encoded.
func (c *Client) VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	expected := hmacHex([]byte(gatewayOrderID+"|"+gatewayPaymentID), c.keySecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the webhook signature over the unparsed
// request body. Re-serializing the payload can change the byte sequence, so
// callers must pass the raw bytes as read from the wire.
func (c *Client) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	expected := hmacHex(rawBody, c.webhookSecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func hmacHex(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
