package preference

const (
	// collection name
	userNode     string = "users"
	settingsNode string = "settings"

	// doc id of the notification settings under settings
	notificationsDoc string = "notifications"
)
