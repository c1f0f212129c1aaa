package cmd

import "path/filepath"

// installKind classifies one deployable artifact from an install manifest.
type installKind int

const (
	kindFile installKind = iota
	kindDirectory
	kindLibrary
	kindExecutable
)

// String returns the lower-case kind name used in logs and plan output.
func (k installKind) String() string {
	switch k {
	case kindDirectory:
		return "directory"
	case kindLibrary:
		return "library"
	case kindExecutable:
		return "executable"
	default:
		return "file"
	}
}

// installItem is one artifact to deploy: a local source path bound to an
// absolute remote destination directory. Items are produced transiently by
// scanning the build tree and consumed once per deploy invocation.
type installItem struct {
	kind        installKind
	source      string
	destination string
	name        string
}

// newInstallItem derives the basename from source.
func newInstallItem(kind installKind, source, destination string) installItem {
	return installItem{
		kind:        kind,
		source:      source,
		destination: destination,
		name:        filepath.Base(source),
	}
}

// remotePath returns the final path of the item on the target.
func (it installItem) remotePath() string {
	return it.destination + "/" + it.name
}
