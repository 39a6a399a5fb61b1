package instance

import (
	"os"
	"strings"
)

// GetID returns the process instance identifier used to tag lock owners.
// NGO_INSTANCE_ID wins, then the hostname, then a fixed default.
func GetID() string {
	if id := strings.TrimSpace(os.Getenv("NGO_INSTANCE_ID")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "ngo-0"
}
