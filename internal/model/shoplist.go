package model

type Shoplist struct {
	Id         string   `firestore:"-"`
	Name       string   `firestore:"name,omitempty"`
	UserId     string   `firestore:"userId,omitempty"`
	SharedWith []string `firestore:"sharedWith,omitempty"`
}

type ShoplistItem struct {
	Id        string `firestore:"-"`
	Text      string `firestore:"text,omitempty"`
	CreatedBy string `firestore:"createdBy,omitempty"`
}
