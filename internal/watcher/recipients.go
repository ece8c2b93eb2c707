package watcher

// Recipients returns the owner followed by sharedWith, without the author, empty ids
// and duplicates.
func Recipients(owner string, sharedWith []string, author string) []string {
	seen := map[string]struct{}{}
	out := []string{}

	add := func(id string) {
		if id == "" || id == author {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	add(owner)
	for _, id := range sharedWith {
		add(id)
	}
	return out
}

// Added returns the ids of curr missing from prev, once each, in curr order.
func Added(prev, curr []string) []string {
	known := make(map[string]struct{}, len(prev))
	for _, id := range prev {
		known[id] = struct{}{}
	}

	out := []string{}
	for _, id := range curr {
		if _, ok := known[id]; ok {
			continue
		}
		known[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
