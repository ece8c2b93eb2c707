package token

const (
	// collection name
	userNode  string = "users"
	tokenNode string = "notificationTokens"

	// Fields' name and path
	TokenFieldPath     string = "token"
	PlatformFieldPath  string = "platform"
	UpdatedAtFieldPath string = "updatedAt"
)
