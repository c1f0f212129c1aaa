package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// monitorCmd groups the output-monitor control surface that works outside a
// full debug session: inspecting and cleaning up the remote side of the
// stream from a separate invocation.
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Inspect or clean up the remote output stream",
}

var monitorStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the remote output file and any attached streamers",
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := sessionOutputFile()
		if err != nil {
			return err
		}
		sm := newSessionManager()
		defer sm.pool.closeAll()
		t, err := sm.connect()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		sizeOut, code, err := runRemoteFunc(t, "wc -c < "+shellQuote(outputFile), cfgCmdTimeout)
		if err != nil || code != 0 {
			_, _ = fmt.Fprintf(out, "output file: %s (absent)\n", outputFile)
		} else {
			_, _ = fmt.Fprintf(out, "output file: %s (%s bytes)\n", outputFile, strings.TrimSpace(string(sizeOut)))
		}

		tails, err := findRemotePIDs(t, "tail", outputFile)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "attached streamers: %d\n", len(tails))
		return nil
	},
}

var monitorCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Stop any leftover output streamers on the target",
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := sessionOutputFile()
		if err != nil {
			return err
		}
		sm := newSessionManager()
		defer sm.pool.closeAll()
		t, err := sm.connect()
		if err != nil {
			return err
		}

		n, err := killRemoteProcesses(t, "tail", outputFile)
		if err != nil {
			return err
		}
		// Idempotent: nothing attached is a success, not an error.
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "stopped %d streamer(s)\n", n)
		return nil
	},
}

// sessionOutputFile derives the remote output path the same way a debug
// session would, so monitor commands address the right file.
func sessionOutputFile() (string, error) {
	if strings.TrimSpace(cfgProgramPath) == "" {
		return "", fmt.Errorf("program path is required to locate the output file (--program or LOCAL_PROGRAM_PATH): %w", errConfiguration)
	}
	return cfgRemoteTmp + "/" + filepath.Base(cfgProgramPath) + ".output", nil
}

func init() {
	monitorCmd.AddCommand(monitorStatusCmd)
	monitorCmd.AddCommand(monitorCleanupCmd)
}
