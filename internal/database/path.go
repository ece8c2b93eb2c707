package database

import (
	"strings"

	"cloud.google.com/go/firestore"
)

// RelativePath returns the document path below the database root,
// e.g. "shoplists/s1/items/i1".
func RelativePath(ref *firestore.DocumentRef) string {
	segments := []string{}
	for ref != nil {
		segments = append(segments, ref.ID)
		if ref.Parent == nil {
			break
		}
		segments = append(segments, ref.Parent.ID)
		ref = ref.Parent.Parent
	}

	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "/")
}

// ParentID returns the id of the document owning ref's collection, or "" for root collections.
func ParentID(ref *firestore.DocumentRef) string {
	if ref == nil || ref.Parent == nil || ref.Parent.Parent == nil {
		return ""
	}
	return ref.Parent.Parent.ID
}
