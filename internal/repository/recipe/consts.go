package recipe

const (
	// collection name
	recipeNode string = "recipes"
)
