package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// debugCmd is the full remote-debug flow: deploy (unless --no-deploy), start
// and verify gdbserver on the target, attach the output monitor, print the
// connect hint for the local debugger, then stream until interrupted and tear
// everything down.
var debugCmd = &cobra.Command{
	Use:   "debug [-- program args]",
	Short: "Deploy, start gdbserver on the target, and stream its output",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, scanErr := scanBuildTree(cfgBuildDir)
		if scanErr != nil && cfgRemoteDir == "" {
			// Without manifests the remote program location cannot be
			// resolved; with --remote-dir the scan is optional.
			return scanErr
		}

		sess, err := newRemoteSession(items, args)
		if err != nil {
			return err
		}

		sm := newSessionManager()
		defer sm.teardown()

		t, err := sm.connect()
		if err != nil {
			return err
		}

		if !cfgNoDeploy {
			report := deployItems(t, items)
			if err := report.err(); err != nil {
				if !errors.Is(err, errPartialDeploy) {
					return err
				}
				log.WithError(err).Warn("continuing debug start despite failed groups")
			}
		}

		sv := newSupervisor(t, sess)
		sm.setSession(sess, sv)
		if err := sv.start(); err != nil {
			return err
		}

		if cfgMonitorEnabled {
			if _, err := sm.startMonitor(t, sess.outputFile, os.Stdout); err != nil {
				log.WithError(err).Warn("output monitor could not attach; continuing without streaming")
			}
		}

		gdb := cfgGDBPath
		if gdb == "" {
			gdb = "gdb"
		}
		fmt.Printf("session %s ready\n", sess.id)
		fmt.Printf("attach with: %s %s -ex 'target remote %s'\n", gdb, sess.localProgramPath, sess.gdbTarget())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		log.Info("debug session ending")
		return nil
	},
}

func init() {
	debugCmd.Flags().BoolVar(&cfgNoDeploy, "no-deploy", false, "Skip deployment; assume artifacts are already on the target")
}
