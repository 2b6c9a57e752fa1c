package constants

// Storage keys. These match the keys written by the mobile app so exported
// data can be imported as-is.
const (
	KeyHistory      = "scan_history"
	KeySubscription = "detoxai_subscription"
	KeyDailyScans   = "detoxai_daily_scans"
)
