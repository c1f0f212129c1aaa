package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// diagnosticCmd is a read-only health check of the remote side: can we
// connect, is a gdbserver binary present, which debug-server processes run,
// and which ports listen. It never mutates remote state.
var diagnosticCmd = &cobra.Command{
	Use:   "diagnostic",
	Short: "Check target connectivity and debug-server state (read-only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		sm := newSessionManager()
		defer sm.pool.closeAll()
		t, err := sm.connect()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		_, code, err := runRemoteFunc(t, "echo ok", cfgCmdTimeout)
		if err != nil || code != 0 {
			return fmt.Errorf("connectivity check failed: %w", errConnection)
		}
		_, _ = fmt.Fprintf(out, "connectivity: ok (%s:%d)\n", cfgSSHHost, cfgSSHPort)

		verOut, verCode, _ := runRemoteFunc(t, "command -v gdbserver && gdbserver --version 2>/dev/null | head -n 1", cfgCmdTimeout)
		if verCode == 0 && len(verOut) > 0 {
			_, _ = fmt.Fprintf(out, "gdbserver: %s\n", strings.ReplaceAll(strings.TrimSpace(string(verOut)), "\n", " — "))
		} else {
			_, _ = fmt.Fprintln(out, "gdbserver: not found on target")
		}

		pids, err := findRemotePIDs(t, "gdbserver")
		if err != nil {
			_, _ = fmt.Fprintf(out, "processes: unavailable (%v)\n", err)
		} else if len(pids) == 0 {
			_, _ = fmt.Fprintln(out, "processes: no gdbserver running")
		} else {
			strs := make([]string, 0, len(pids))
			for _, p := range pids {
				strs = append(strs, strconv.Itoa(p))
			}
			_, _ = fmt.Fprintf(out, "processes: gdbserver pid(s) %s\n", strings.Join(strs, ", "))
		}

		nsOut, _, err := runRemoteFunc(t, listListeningCommand(), cfgCmdTimeout)
		if err == nil {
			ports := parseListeningPorts(string(nsOut))
			strs := make([]string, 0, len(ports))
			for _, p := range ports {
				strs = append(strs, strconv.Itoa(p))
			}
			_, _ = fmt.Fprintf(out, "listening ports: %s\n", strings.Join(strs, ", "))
		}
		return nil
	},
}
