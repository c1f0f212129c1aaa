package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// putStream writes the contents of r to remotePath over one session. The
// stream rides the command's stdin, so no separate copy channel is needed.
func putStream(t transport, r io.Reader, remotePath string) error {
	out, code, err := t.runWithInput(catCommand(remotePath), r)
	if err != nil {
		return fmt.Errorf("write %s: %v: %w", remotePath, err, errTransfer)
	}
	if code != 0 {
		return fmt.Errorf("write %s: %s: %w", remotePath, strings.TrimSpace(string(out)), errTransfer)
	}
	return nil
}

// uploadFile transfers a single local file to remotePath.
func uploadFile(t transport, localPath, remotePath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %v: %w", localPath, err, errTransfer)
	}
	defer func() { _ = f.Close() }()
	return putStream(t, f, remotePath)
}
