package menu

const (
	// collection name
	menuNode string = "menulists"
)
