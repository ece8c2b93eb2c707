package model

import "time"

type NotificationToken struct {
	Token     string    `firestore:"token,omitempty"`
	Platform  string    `firestore:"platform,omitempty"`
	UpdatedAt time.Time `firestore:"updatedAt,omitempty"`
}

// NotificationPreferences fields are nil when the user never set them.
type NotificationPreferences struct {
	PushEnabled *bool `firestore:"pushEnabled,omitempty"`
	PushInvites *bool `firestore:"pushInvites,omitempty"`
	PushUpdates *bool `firestore:"pushUpdates,omitempty"`
}

func (p NotificationPreferences) Enabled() bool { return orTrue(p.PushEnabled) }
func (p NotificationPreferences) Invites() bool { return orTrue(p.PushInvites) }
func (p NotificationPreferences) Updates() bool { return orTrue(p.PushUpdates) }

func orTrue(b *bool) bool {
	return b == nil || *b
}
