package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// syncDirectory mirrors localDir's contents under remoteDir in one round
// trip. The sync is asymmetric: extraction adds and overwrites but never
// deletes remote files — removing anything on a resource-constrained target
// is the operator's call, not this tool's.
func syncDirectory(t transport, localDir, remoteDir string) error {
	if st, err := os.Stat(localDir); err != nil || !st.IsDir() {
		return fmt.Errorf("local directory %s not found: %w", localDir, errTransfer)
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(writeTarDirectory(pw, localDir))
	}()

	out, code, err := t.runWithInput(syncCommand(remoteDir), pr)
	if err != nil {
		return fmt.Errorf("sync %s to %s: %v: %w", localDir, remoteDir, err, errTransfer)
	}
	if code != 0 {
		return fmt.Errorf("sync %s to %s: %s: %w", localDir, remoteDir, strings.TrimSpace(string(out)), errTransfer)
	}
	return nil
}
