package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// plannedCommands renders the exact remote command sequence a deploy (and,
// when sess is non-nil, a debug start) would issue, for audit before running.
// Pure: nothing here touches the network.
func plannedCommands(items []installItem, sess *remoteSession) []string {
	var cmds []string

	var safe []installItem
	for _, it := range items {
		if isProtectedPath(it.destination) {
			cmds = append(cmds, fmt.Sprintf("# refused (protected path): %s -> %s", it.source, it.destination))
			continue
		}
		safe = append(safe, it)
	}

	groups := groupItems(safe)
	for _, g := range groups {
		cmds = append(cmds, mkdirCommand(g.destination))
		for _, d := range g.directories {
			cmds = append(cmds, fmt.Sprintf("%s  # stream tar.gz of %s", syncCommand(d.remotePath()), d.source))
		}
		n := len(g.files) + len(g.executables)
		if n > 0 {
			cmds = append(cmds, fmt.Sprintf("%s  # stream tar.gz of %d file(s)", extractCommand(g.destination), n))
		}
		if len(g.executables) > 0 {
			paths := make([]string, 0, len(g.executables))
			for _, e := range g.executables {
				paths = append(paths, e.remotePath())
			}
			cmds = append(cmds, chmodExecCommand(paths))
		}
	}

	if sess != nil {
		cmds = append(cmds,
			"ps  # find previous gdbserver instances to kill",
			catCommand(sess.controlScriptPath)+"  # stream launcher script",
			chmodExecCommand([]string{sess.controlScriptPath}),
			truncateCommand(sess.outputFile),
			startDetachedCommand(sess.controlScriptPath),
			processAliveCommand(0)+"  # pid from previous step",
			listListeningCommand(),
			tailFollowCommand(sess.outputFile),
		)
	}
	return cmds
}

// planCmd prints the planned remote command sequence without connecting
// anywhere.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the remote commands a deploy/debug would run (no connection)",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := scanBuildTree(cfgBuildDir)
		if err != nil {
			return err
		}

		// The debug portion of the plan needs a session; omit it when the
		// program is not configured rather than failing a pure audit.
		var sess *remoteSession
		if cfgProgramPath != "" && cfgSSHHost != "" {
			if s, err := newRemoteSession(items, args); err == nil {
				sess = s
			}
		}

		out := cmd.OutOrStdout()
		for _, c := range plannedCommands(items, sess) {
			_, _ = fmt.Fprintln(out, c)
		}
		return nil
	},
}
