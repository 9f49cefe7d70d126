package instance

import "os"

const defaultID = "local"

// GetID returns the process instance identifier used in log fields.
// SMARTWEAR_INSTANCE_ID wins, then the platform's DYNO, then the hostname.
func GetID() string {
	for _, key := range []string{"SMARTWEAR_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return defaultID
}
