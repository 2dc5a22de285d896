package taskname

const (
	// Notification tasks
	NotificationLicenseLink = "notification:license:link"
)
