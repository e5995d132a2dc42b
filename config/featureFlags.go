package config

import (
	"os"
	"strings"
)

// NotificationsEnabled gates the post-commit notification dispatch.
// Delivery failures never affect the underlying state change either way;
// this flag only silences the dispatch entirely (local dev, tests).
//
// Set via env:
// - NOTIFICATIONS_ENABLED=true
func NotificationsEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("NOTIFICATIONS_ENABLED")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
