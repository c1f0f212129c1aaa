package cmd

import (
	"github.com/spf13/cobra"
)

// deployCmd runs the full deployment: scan the build tree for install
// manifests, then drive the orchestrator over one reused SSH connection.
// Exit status distinguishes success, partial success, and hard failure.
var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy scanned install artifacts to the remote target",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := scanBuildTree(cfgBuildDir)
		if err != nil {
			return err
		}

		sm := newSessionManager()
		defer sm.pool.closeAll()
		t, err := sm.connect()
		if err != nil {
			return err
		}

		report := deployItems(t, items)
		return report.err()
	},
}
