package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Préfixe des clés API émises, pour le repérage dans les logs des clients
const apiKeyPrefix = "cck_"

// GenerateAPIKey émet une nouvelle clé API en clair. La clé n'est jamais
// persistée: seul son digest l'est.
func GenerateAPIKey() (string, error) {
	token, err := SecureToken(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return apiKeyPrefix + token, nil
}

// HashAPIKey calcule le digest SHA-256 hex d'une clé API
func HashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

// LooksLikeAPIKey indique si une valeur a la forme d'une clé émise
func LooksLikeAPIKey(value string) bool {
	return strings.HasPrefix(value, apiKeyPrefix)
}
