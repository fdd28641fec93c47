package config

const (
	DefaultTimeZone = "Asia/Kolkata"

	// Retention job defaults: purge failed uploads nightly once they are
	// older than the retention window.
	DefaultRetentionSchedule = "0 3 * * *"
	DefaultRetentionDays     = 30

	// Upload parsing cap, multipart form memory.
	MaxUploadBytes = 32 << 20
)
