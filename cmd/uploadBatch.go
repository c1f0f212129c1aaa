package cmd

import (
	"fmt"
	"io"
	"strings"
)

// uploadBatch transfers all localPaths into remoteDir in exactly one round
// trip: the files are tar.gz-archived on the fly and streamed into a remote
// extraction. This collapses O(n) per-file copies into O(1) per destination
// group, which is where the deploy step's wall-clock win comes from.
func uploadBatch(t transport, localPaths []string, remoteDir string) error {
	if len(localPaths) == 0 {
		return nil
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(writeTarArchive(pw, localPaths))
	}()

	out, code, err := t.runWithInput(extractCommand(remoteDir), pr)
	if err != nil {
		return fmt.Errorf("batch upload of %d files to %s: %v: %w", len(localPaths), remoteDir, err, errTransfer)
	}
	if code != 0 {
		return fmt.Errorf("batch upload of %d files to %s: %s: %w", len(localPaths), remoteDir, strings.TrimSpace(string(out)), errTransfer)
	}
	return nil
}
