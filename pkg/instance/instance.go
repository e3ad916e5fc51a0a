package instance

import (
	"os"
	"strings"
)

// GetID identifies the running process in logs: the platform dyno name when
// set, then the host name, then "local".
func GetID() string {
	for _, key := range []string{"DYNO", "INSTANCE_ID"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
