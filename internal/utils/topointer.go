package utils

func BoolToPointer(b bool) *bool {
	return &b
}
