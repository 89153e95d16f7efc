package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestOfflineGatewayCreateSession(t *testing.T) {
	g := NewOfflineGateway("secret", "https://app.example/thanks")

	session, err := g.CreateSession(context.Background(), 2500, "USD", "donation")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "https://app.example/thanks", session.RedirectURL)
}

func TestOfflineGatewayCreateSessionRejectsZeroAmount(t *testing.T) {
	g := NewOfflineGateway("secret", "")
	_, err := g.CreateSession(context.Background(), 0, "USD", "donation")
	assert.Error(t, err)
}

func TestOfflineGatewayVerifyWebhook(t *testing.T) {
	g := NewOfflineGateway("secret", "")
	payload := []byte(`{"session_id":"sess_1","status":"succeeded"}`)

	event, err := g.VerifyWebhook(payload, sign("secret", payload))
	require.NoError(t, err)
	assert.Equal(t, "sess_1", event.SessionID)
	assert.True(t, event.Succeeded)
}

func TestOfflineGatewayVerifyWebhookBadSignature(t *testing.T) {
	g := NewOfflineGateway("secret", "")
	payload := []byte(`{"session_id":"sess_1","status":"succeeded"}`)

	_, err := g.VerifyWebhook(payload, "deadbeef")
	assert.Error(t, err)
}

func TestOfflineGatewayVerifyWebhookFailedStatus(t *testing.T) {
	g := NewOfflineGateway("secret", "")
	payload := []byte(`{"session_id":"sess_1","status":"failed"}`)

	event, err := g.VerifyWebhook(payload, sign("secret", payload))
	require.NoError(t, err)
	assert.False(t, event.Succeeded)
}
