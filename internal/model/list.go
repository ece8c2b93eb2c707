package model

type RecipeRef struct {
	RecipeId string `firestore:"recipeId,omitempty"`
}

type Menu struct {
	Id         string      `firestore:"-"`
	Name       string      `firestore:"name,omitempty"`
	UserId     string      `firestore:"userId,omitempty"`
	SharedWith []string    `firestore:"sharedWith,omitempty"`
	UpdatedBy  string      `firestore:"updatedBy,omitempty"`
	Recipes    []RecipeRef `firestore:"recipes,omitempty"`
}

type RecipeCollection struct {
	Id         string   `firestore:"-"`
	Name       string   `firestore:"name,omitempty"`
	UserId     string   `firestore:"userId,omitempty"`
	SharedWith []string `firestore:"sharedWith,omitempty"`
	UpdatedBy  string   `firestore:"updatedBy,omitempty"`
	RecipeIds  []string `firestore:"recipeIds,omitempty"`
}

// ShareableList is the membership view shared by menus and recipe collections.
type ShareableList struct {
	Id         string
	Name       string
	UserId     string
	SharedWith []string
	UpdatedBy  string
	MemberIds  []string
}

func (m Menu) Shareable() ShareableList {
	ids := make([]string, 0, len(m.Recipes))
	for _, r := range m.Recipes {
		if r.RecipeId != "" {
			ids = append(ids, r.RecipeId)
		}
	}
	return ShareableList{
		Id:         m.Id,
		Name:       m.Name,
		UserId:     m.UserId,
		SharedWith: m.SharedWith,
		UpdatedBy:  m.UpdatedBy,
		MemberIds:  ids,
	}
}

func (c RecipeCollection) Shareable() ShareableList {
	return ShareableList{
		Id:         c.Id,
		Name:       c.Name,
		UserId:     c.UserId,
		SharedWith: c.SharedWith,
		UpdatedBy:  c.UpdatedBy,
		MemberIds:  c.RecipeIds,
	}
}

type Recipe struct {
	Id    string `firestore:"-"`
	Title string `firestore:"title,omitempty"`
}
