package recipecollection

const (
	// collection name
	recipeCollectionNode string = "recipeCollections"
)
