package ops

// Firestore query operators.
const (
	Equal         = "=="
	NotEqual      = "!="
	Greater       = ">"
	Less          = "<"
	In            = "in"
	ArrayContains = "array-contains"
)
