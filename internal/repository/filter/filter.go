package filter

import "cloud.google.com/go/firestore"

type Where struct {
	Path  string
	Op    string
	Value interface{}
}

func Apply(query firestore.Query, where []Where) firestore.Query {
	for _, w := range where {
		query = query.Where(w.Path, w.Op, w.Value)
	}
	return query
}
