// Package gravatar builds avatar image links for user email addresses.
package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"

	"github.com/jon4hz/recipebox/internal/config"
)

const baseURL = "https://www.gravatar.com/avatar/"

// URL returns the avatar link for email, or an empty string when avatars are
// disabled or the address is blank.
func URL(email string, cfg *config.GravatarConfig) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if cfg == nil || !cfg.Enabled || email == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(email))
	link := baseURL + hex.EncodeToString(sum[:])

	query := url.Values{}
	if cfg.DefaultImage != "" {
		query.Set("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		query.Set("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		query.Set("s", strconv.Itoa(cfg.Size))
	}
	if len(query) == 0 {
		return link
	}
	return link + "?" + query.Encode()
}
