// Package payments defines the payment gateway boundary used by donations.
// The built-in backend is an offline gateway: checkout returns a session the
// frontend settles out of band, and completion arrives via a signed webhook.
package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// CheckoutSession is the handle returned to the client for settling a
// payment.
type CheckoutSession struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

// WebhookEvent is a verified payment notification.
type WebhookEvent struct {
	SessionID string `json:"session_id"`
	Succeeded bool   `json:"succeeded"`
}

// Gateway abstracts the payment provider.
type Gateway interface {
	CreateSession(ctx context.Context, amountCents int64, currency, description string) (*CheckoutSession, error)
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// OfflineGateway is a provider-less gateway: sessions are minted locally and
// webhooks are authenticated with an HMAC-SHA256 signature over the raw
// payload.
type OfflineGateway struct {
	secret      string
	redirectURL string
}

// NewOfflineGateway constructs the offline gateway.
func NewOfflineGateway(secret, redirectURL string) *OfflineGateway {
	return &OfflineGateway{secret: secret, redirectURL: redirectURL}
}

// CreateSession mints a new checkout session id.
func (g *OfflineGateway) CreateSession(_ context.Context, amountCents int64, currency, _ string) (*CheckoutSession, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if currency == "" {
		return nil, fmt.Errorf("currency required")
	}
	return &CheckoutSession{ID: uuid.NewString(), RedirectURL: g.redirectURL}, nil
}

type webhookPayload struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// Sign computes the webhook signature for a payload. The settlement page
// uses it to author callbacks.
func (g *OfflineGateway) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook checks the signature and decodes the event.
func (g *OfflineGateway) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	expected := g.Sign(payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, fmt.Errorf("invalid webhook signature")
	}

	var body webhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	if body.SessionID == "" {
		return nil, fmt.Errorf("webhook payload missing session id")
	}
	return &WebhookEvent{SessionID: body.SessionID, Succeeded: body.Status == "succeeded"}, nil
}
