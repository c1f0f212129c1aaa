package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gdbdeploy",
	Short: "Deploy CMake build artifacts to an embedded target and run gdbserver remotely",
	Long: "Scans CMake-generated install manifests to discover deployment artifacts, deploys them " +
		"to a remote embedded device over a reused SSH connection, starts and supervises a remote " +
		"gdbserver process, and streams its output back in real time.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Assigned in init to avoid an initialization cycle: applyTargetFile refers
// back to rootCmd.
func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := initLogging(cfgLogFile); err != nil {
			return err
		}
		// Target-file defaults fill any connection fields still unset after
		// flags and environment are applied.
		return applyTargetFile(cfgTargetFile)
	}
}
