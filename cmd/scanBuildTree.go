package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// installManifestName is the file CMake generates per configured directory.
const installManifestName = "cmake_install.cmake"

// scanBuildTree walks buildDir for generated install manifests and returns
// the deduplicated list of install items they declare. No hardcoded paths:
// everything to deploy, and where, comes from the build tree itself.
//
// A missing or manifest-free build directory yields errConfiguration so the
// caller can tell the user to run a build first; individual manifest parse
// problems are logged and skipped, never fatal to the whole scan.
func scanBuildTree(buildDir string) ([]installItem, error) {
	if st, err := os.Stat(buildDir); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("build directory %s not found (run the build first): %w", buildDir, errConfiguration)
	}

	var manifests []string
	err := filepath.WalkDir(buildDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.WithError(err).Warnf("skipping unreadable path %s", path)
			return nil
		}
		if !d.IsDir() && d.Name() == installManifestName {
			manifests = append(manifests, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk build tree: %w", err)
	}
	if len(manifests) == 0 {
		return nil, fmt.Errorf("no %s found under %s (run the build first): %w", installManifestName, buildDir, errConfiguration)
	}

	seen := make(map[string]struct{})
	var items []installItem
	for _, m := range manifests {
		parsed, err := parseInstallManifest(m)
		if err != nil {
			log.WithError(err).Warnf("skipping manifest %s", m)
			continue
		}
		for _, it := range parsed {
			key := it.source + "\x00" + it.destination
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			items = append(items, it)
		}
	}
	log.Infof("scanned %d manifests under %s: %d install items", len(manifests), buildDir, len(items))
	return items, nil
}
