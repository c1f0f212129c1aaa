package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var cfgInstallPubKeyPath string

// installKeyCmd installs a local SSH public key into the target user's
// authorized_keys so subsequent deploy/debug runs do not need REMOTE_SSH_PASS.
// The append is guarded by an exact-match grep, so re-running is harmless.
var installKeyCmd = &cobra.Command{
	Use:   "install-key",
	Short: "Install an SSH public key on the target for passwordless access",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgInstallPubKeyPath == "" {
			return fmt.Errorf("--pubkey is required (path to SSH public key): %w", errConfiguration)
		}
		pubBytes, err := os.ReadFile(cfgInstallPubKeyPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("public key file not found: %s: %w", cfgInstallPubKeyPath, errConfiguration)
			}
			return fmt.Errorf("read public key: %w", err)
		}
		pubKey := strings.TrimSpace(string(pubBytes))
		if pubKey == "" || strings.ContainsAny(pubKey, "\n'") {
			return fmt.Errorf("public key file must contain a single key line: %w", errConfiguration)
		}

		sm := newSessionManager()
		defer sm.pool.closeAll()
		t, err := sm.connect()
		if err != nil {
			return err
		}

		install := "mkdir -p ~/.ssh && chmod 700 ~/.ssh && " +
			"grep -qxF " + shellQuote(pubKey) + " ~/.ssh/authorized_keys 2>/dev/null || " +
			"echo " + shellQuote(pubKey) + " >> ~/.ssh/authorized_keys && chmod 600 ~/.ssh/authorized_keys"
		out, code, err := runRemoteFunc(t, install, cfgCmdTimeout)
		if err != nil {
			return fmt.Errorf("install key: %w", err)
		}
		if code != 0 {
			return fmt.Errorf("install key: %s", strings.TrimSpace(string(out)))
		}
		log.Infof("public key installed for %s@%s", cfgSSHUser, cfgSSHHost)
		return nil
	},
}

func init() {
	installKeyCmd.Flags().StringVar(&cfgInstallPubKeyPath, "pubkey", "", "Path to the SSH public key to install")
}
