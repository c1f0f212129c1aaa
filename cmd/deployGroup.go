package cmd

// deployGroup buckets installItems sharing one destination directory so the
// transfer step pays one round trip per destination instead of one per file.
type deployGroup struct {
	destination string
	files       []installItem
	directories []installItem
	executables []installItem
}

// size reports the number of items in the group.
func (g *deployGroup) size() int {
	return len(g.files) + len(g.directories) + len(g.executables)
}

// groupItems partitions items into deployGroups keyed by destination,
// preserving the order in which destinations first appear. Libraries travel
// with plain files; only executables get the post-upload chmod.
func groupItems(items []installItem) []deployGroup {
	index := make(map[string]int)
	var groups []deployGroup
	for _, it := range items {
		i, ok := index[it.destination]
		if !ok {
			i = len(groups)
			index[it.destination] = i
			groups = append(groups, deployGroup{destination: it.destination})
		}
		switch it.kind {
		case kindDirectory:
			groups[i].directories = append(groups[i].directories, it)
		case kindExecutable:
			groups[i].executables = append(groups[i].executables, it)
		default:
			groups[i].files = append(groups[i].files, it)
		}
	}
	return groups
}
