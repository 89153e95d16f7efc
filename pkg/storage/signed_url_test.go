package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("invoice-1", "invoices/INV-20250101-0001.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	resourceID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "invoice-1", resourceID)
	require.Equal(t, "invoices/INV-20250101-0001.pdf", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate("invoice-1", "invoices/INV-20250101-0001.pdf")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	resourceID, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "invoice-1", resourceID)
	require.Equal(t, "invoices/INV-20250101-0001.pdf", path)
}

func TestSignedURLSignerMissingSecret(t *testing.T) {
	signer := NewSignedURLSigner("", time.Hour)
	_, _, err := signer.Generate("invoice-1", "invoices/a.pdf")
	require.Error(t, err)
}
