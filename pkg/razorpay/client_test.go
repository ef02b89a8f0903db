package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/feastly/feastly-backend/pkg/config"
)

type stubOrderAPI struct {
	created map[string]interface{}
	resp    map[string]interface{}
	err     error
}

func (s *stubOrderAPI) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	s.created = data
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func testClient(orders orderAPI) *Client {
	return &Client{
		orders:        orders,
		keyID:         "rzp_test_key",
		keySecret:     "key-secret",
		webhookSecret: "webhook-secret",
		currency:      "INR",
	}
}

func TestCreateOrderConvertsToPaise(t *testing.T) {
	stub := &stubOrderAPI{resp: map[string]interface{}{"id": "order_abc123"}}
	client := testClient(stub)

	session, err := client.CreateOrder(context.Background(), 525, "rcpt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.GatewayOrderID != "order_abc123" {
		t.Fatalf("unexpected gateway order id: %s", session.GatewayOrderID)
	}
	if session.AmountPaise != 52500 {
		t.Fatalf("expected 52500 paise, got %d", session.AmountPaise)
	}
	if stub.created["amount"] != int64(52500) {
		t.Fatalf("expected paise amount sent to gateway, got %v", stub.created["amount"])
	}
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	client := testClient(&stubOrderAPI{})
	if _, err := client.CreateOrder(context.Background(), 0, "rcpt"); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestCreateOrderGatewayFailure(t *testing.T) {
	stub := &stubOrderAPI{err: fmt.Errorf("upstream 502")}
	client := testClient(stub)
	if _, err := client.CreateOrder(context.Background(), 100, "rcpt"); err == nil {
		t.Fatal("expected error when gateway call fails")
	}
}

func TestVerifyPaymentSignature(t *testing.T) {
	client := testClient(&stubOrderAPI{})

	mac := hmac.New(sha256.New, []byte("key-secret"))
	mac.Write([]byte("order_abc|pay_xyz"))
	good := hex.EncodeToString(mac.Sum(nil))

	if !client.VerifyPaymentSignature("order_abc", "pay_xyz", good) {
		t.Fatal("expected valid signature to verify")
	}
	if client.VerifyPaymentSignature("order_abc", "pay_xyz", good[:len(good)-1]+"0") {
		t.Fatal("expected tampered signature to fail")
	}
	if client.VerifyPaymentSignature("order_other", "pay_xyz", good) {
		t.Fatal("expected signature over different order id to fail")
	}
}

func TestVerifyWebhookSignatureUsesRawBody(t *testing.T) {
	client := testClient(&stubOrderAPI{})
	body := []byte(`{"event":"payment.captured","payload":{}}`)

	mac := hmac.New(sha256.New, []byte("webhook-secret"))
	mac.Write(body)
	good := hex.EncodeToString(mac.Sum(nil))

	if !client.VerifyWebhookSignature(body, good) {
		t.Fatal("expected valid webhook signature to verify")
	}
	// A re-serialized copy with different whitespace must not verify.
	if client.VerifyWebhookSignature([]byte(`{"event": "payment.captured", "payload": {}}`), good) {
		t.Fatal("expected re-serialized body to fail verification")
	}
}

func TestNewRequiresSecrets(t *testing.T) {
	if _, err := New(config.RazorpayConfig{KeyID: "k", KeySecret: "s"}); err == nil {
		t.Fatal("expected error for missing webhook secret")
	}
	if _, err := New(config.RazorpayConfig{WebhookSecret: "w"}); err == nil {
		t.Fatal("expected error for missing key pair")
	}
}
