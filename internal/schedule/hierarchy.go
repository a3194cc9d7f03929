package schedule

// ParentCycle returns the first loop in the parent links of activities as a
// path starting and ending on the same id, or nil. A parent id that names no
// activity ends its chain.
func ParentCycle(activities []Activity) []string {
	const (
		unvisited = iota
		walking
		done
	)

	parent := make(map[string]string, len(activities))
	ids := make([]string, 0, len(activities))
	for _, a := range activities {
		if _, dup := parent[a.ID]; !dup {
			ids = append(ids, a.ID)
		}
		parent[a.ID] = a.ParentID
	}
	SortIDs(ids)

	state := make(map[string]int, len(ids))
	for _, id := range ids {
		var path []string
		cur := id
		for cur != "" && state[cur] == unvisited {
			if _, known := parent[cur]; !known {
				break
			}
			state[cur] = walking
			path = append(path, cur)
			cur = parent[cur]
		}
		if cur != "" && state[cur] == walking {
			for i, p := range path {
				if p == cur {
					return append(append([]string(nil), path[i:]...), cur)
				}
			}
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return nil
}
