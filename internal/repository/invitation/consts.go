package invitation

const (
	// collection name
	invitationNode string = "invitations"

	// Fields' name and path
	NotifiedAtFieldPath string = "notifiedAt"
)
