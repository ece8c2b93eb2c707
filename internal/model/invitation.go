package model

import "time"

type ItemType string

const (
	ItemTypeRecipe           ItemType = "recipe"
	ItemTypeRecipeCollection ItemType = "recipeCollection"
	ItemTypeShoplist         ItemType = "shoplist"
	ItemTypeMenu             ItemType = "menu"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

type Invitation struct {
	Id         string           `firestore:"-"`
	FromUserId string           `firestore:"fromUserId,omitempty"`
	ToUserId   string           `firestore:"toUserId,omitempty"`
	ItemId     string           `firestore:"itemId,omitempty"`
	ItemType   ItemType         `firestore:"itemType,omitempty"`
	ItemName   string           `firestore:"itemName,omitempty"`
	Status     InvitationStatus `firestore:"status,omitempty"`
	NotifiedAt *time.Time       `firestore:"notifiedAt,omitempty"`
}

// IsPending treats a missing status as pending.
func (i Invitation) IsPending() bool {
	return i.Status == "" || i.Status == InvitationPending
}
