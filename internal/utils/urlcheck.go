package utils

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidateWebhookURL rejette les URLs de webhook pointant vers des hôtes
// privés (protection SSRF). En dehors de production, les hôtes privés sont
// tolérés pour le développement local.
func ValidateWebhookURL(rawURL string, production bool) error {
	if rawURL == "" {
		return nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("webhook URL scheme must be http or https")
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("webhook URL must have a host")
	}

	if !production {
		return nil
	}

	if isPrivateHost(host) {
		return fmt.Errorf("webhook URL host is not allowed")
	}

	return nil
}

// isPrivateHost détecte loopback, RFC1918, link-local et localhost IPv6
func isPrivateHost(host string) bool {
	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") || lower == "metadata.google.internal" {
		return true
	}

	ip := net.ParseIP(host)
	if ip == nil {
		// Hôte nominal non résolu ici; seuls les noms évidents sont bloqués
		return false
	}

	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}
