package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.True(t, LooksLikeAPIKey(key))
	assert.Len(t, key, len("cck_")+64) // 32 octets en hex

	other, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestHashAPIKey(t *testing.T) {
	digest := HashAPIKey("cck_test")

	assert.Len(t, digest, 64)
	assert.Equal(t, digest, HashAPIKey("cck_test"))
	assert.NotEqual(t, digest, HashAPIKey("cck_other"))
	assert.False(t, LooksLikeAPIKey(digest))
}

func TestSecureToken(t *testing.T) {
	token, err := SecureToken(24)
	require.NoError(t, err)
	assert.Len(t, token, 48)
}

func TestSecureRandBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := SecureRandFloat64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)

		n := SecureRandIntn(4)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 4)
	}

	assert.Equal(t, 0, SecureRandIntn(0))
	assert.Equal(t, 0, SecureRandIntn(-3))
}

func TestValidateWebhookURL(t *testing.T) {
	// Vide = pas de webhook, toujours accepté
	assert.NoError(t, ValidateWebhookURL("", true))

	assert.NoError(t, ValidateWebhookURL("https://bots.example.com/hook", true))
	assert.NoError(t, ValidateWebhookURL("http://bots.example.com/hook", true))

	// Schéma invalide
	assert.Error(t, ValidateWebhookURL("ftp://example.com/hook", false))
	assert.Error(t, ValidateWebhookURL("file:///etc/passwd", false))

	// Hôtes privés refusés en production uniquement
	private := []string{
		"http://localhost:3000/hook",
		"http://app.localhost/hook",
		"http://127.0.0.1/hook",
		"http://10.0.0.5/hook",
		"http://192.168.1.10/hook",
		"http://169.254.169.254/latest/meta-data",
		"http://metadata.google.internal/hook",
		"http://0.0.0.0/hook",
	}
	for _, raw := range private {
		assert.Error(t, ValidateWebhookURL(raw, true), raw)
		assert.NoError(t, ValidateWebhookURL(raw, false), raw)
	}
}
