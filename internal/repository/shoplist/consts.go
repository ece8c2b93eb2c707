package shoplist

const (
	// collection name
	shoplistNode string = "shoplists"
	// collection group id of the items nested under every shoplist
	itemsNode string = "items"
)
