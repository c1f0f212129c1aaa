package cmd

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// init configures the root command's persistent flags, binds them to the
// environment via Viper, and registers all subcommands. The environment names
// follow the build-cache conventions of the target projects (REMOTE_SSH_HOST,
// REMOTE_GDBSERVER_PORT, ...) rather than a single prefix, so each variable is
// bound explicitly.
func init() {
	// Persistent flags (inherited by subcommands like `deploy` and `debug`)
	rootCmd.PersistentFlags().StringVarP(&cfgBuildDir, "build-dir", "b", "build", "CMake build directory containing generated install manifests")
	rootCmd.PersistentFlags().StringVarP(&cfgSSHHost, "host", "H", "", "Remote target host (or set REMOTE_SSH_HOST)")
	rootCmd.PersistentFlags().IntVar(&cfgSSHPort, "port", 2222, "Remote SSH port (or set REMOTE_SSH_PORT)")
	rootCmd.PersistentFlags().StringVarP(&cfgSSHUser, "user", "u", "root", "SSH username")
	rootCmd.PersistentFlags().StringVar(&cfgSSHPass, "password", "", "SSH password (or set REMOTE_SSH_PASS)")
	rootCmd.PersistentFlags().StringVar(&cfgKeyPath, "key", "", "Path to SSH private key (PEM, OpenSSH)")
	rootCmd.PersistentFlags().StringVar(&cfgPassphrase, "passphrase", "", "Private key passphrase")
	rootCmd.PersistentFlags().StringVar(&cfgKnownHosts, "known-hosts", filepath.Join(os.Getenv("HOME"), ".ssh", "known_hosts"), "Path to known_hosts file")
	rootCmd.PersistentFlags().BoolVar(&cfgStrictHost, "strict-host-key", false, "Require host key verification (embedded targets usually regenerate keys)")
	rootCmd.PersistentFlags().IntVar(&cfgGDBPort, "gdb-port", 10000, "Remote gdbserver listen port (or set REMOTE_GDBSERVER_PORT)")
	rootCmd.PersistentFlags().StringVarP(&cfgProgramPath, "program", "p", "", "Local path of the executable to debug (or set LOCAL_PROGRAM_PATH)")
	rootCmd.PersistentFlags().StringVar(&cfgGDBPath, "gdb", "", "Local cross-gdb path, printed in the connect hint (or set LOCAL_GDB_PATH)")
	rootCmd.PersistentFlags().DurationVar(&cfgWaitTime, "wait-time", 2*time.Second, "Delay before verifying the remote process (or set DEBUG_WAIT_TIME in ms)")
	rootCmd.PersistentFlags().BoolVar(&cfgMonitorEnabled, "monitor-output", true, "Stream remote process output (or set DAP_MONITOR_ENABLED)")
	rootCmd.PersistentFlags().StringVar(&cfgRemoteTmp, "remote-tmp", "/tmp", "Remote scratch directory for launcher script and output file")
	rootCmd.PersistentFlags().StringVar(&cfgRemoteDir, "remote-dir", "", "Remote directory of the deployed program (default: resolved from install manifests)")
	rootCmd.PersistentFlags().DurationVar(&cfgConnTimeout, "conn-timeout", 15*time.Second, "SSH connection timeout")
	rootCmd.PersistentFlags().DurationVar(&cfgCmdTimeout, "cmd-timeout", 30*time.Second, "Per-command timeout. 0 disables")
	rootCmd.PersistentFlags().StringVar(&cfgTargetFile, "target-file", "", "Optional YAML file with target connection defaults")
	rootCmd.PersistentFlags().StringVar(&cfgLogFile, "log-file", "gdbdeploy.log", "Persistent log file ('' for stderr only)")

	// Bind flags with Viper
	_ = viper.BindPFlag("build-dir", rootCmd.PersistentFlags().Lookup("build-dir"))
	_ = viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("host"))
	_ = viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
	_ = viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))
	_ = viper.BindPFlag("key", rootCmd.PersistentFlags().Lookup("key"))
	_ = viper.BindPFlag("passphrase", rootCmd.PersistentFlags().Lookup("passphrase"))
	_ = viper.BindPFlag("known-hosts", rootCmd.PersistentFlags().Lookup("known-hosts"))
	_ = viper.BindPFlag("strict-host-key", rootCmd.PersistentFlags().Lookup("strict-host-key"))
	_ = viper.BindPFlag("gdb-port", rootCmd.PersistentFlags().Lookup("gdb-port"))
	_ = viper.BindPFlag("program", rootCmd.PersistentFlags().Lookup("program"))
	_ = viper.BindPFlag("gdb", rootCmd.PersistentFlags().Lookup("gdb"))
	_ = viper.BindPFlag("wait-time", rootCmd.PersistentFlags().Lookup("wait-time"))
	_ = viper.BindPFlag("monitor-output", rootCmd.PersistentFlags().Lookup("monitor-output"))
	_ = viper.BindPFlag("remote-tmp", rootCmd.PersistentFlags().Lookup("remote-tmp"))
	_ = viper.BindPFlag("remote-dir", rootCmd.PersistentFlags().Lookup("remote-dir"))
	_ = viper.BindPFlag("conn-timeout", rootCmd.PersistentFlags().Lookup("conn-timeout"))
	_ = viper.BindPFlag("cmd-timeout", rootCmd.PersistentFlags().Lookup("cmd-timeout"))
	_ = viper.BindPFlag("target-file", rootCmd.PersistentFlags().Lookup("target-file"))
	_ = viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))

	bindEnvNames()

	// Pull in environment overrides on init
	cobra.OnInitialize(applyViperOverrides)

	// Add subcommands
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(diagnosticCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(installKeyCmd)
}

// bindEnvNames registers the environment bindings. Environment variables use
// the build-cache names, not a common prefix.
func bindEnvNames() {
	_ = viper.BindEnv("host", "REMOTE_SSH_HOST")
	_ = viper.BindEnv("port", "REMOTE_SSH_PORT")
	_ = viper.BindEnv("password", "REMOTE_SSH_PASS")
	_ = viper.BindEnv("gdb-port", "REMOTE_GDBSERVER_PORT")
	_ = viper.BindEnv("program", "LOCAL_PROGRAM_PATH")
	_ = viper.BindEnv("gdb", "LOCAL_GDB_PATH")
	_ = viper.BindEnv("wait-time", "DEBUG_WAIT_TIME")
	_ = viper.BindEnv("monitor-output", "DAP_MONITOR_ENABLED")
}

// applyViperOverrides copies the viper-resolved values (flags merged with the
// environment) into the package configuration variables.
func applyViperOverrides() {
	if v := viper.GetString("build-dir"); v != "" {
		cfgBuildDir = v
	}
	if v := viper.GetString("host"); v != "" {
		cfgSSHHost = v
	}
	if v := viper.GetInt("port"); v != 0 {
		cfgSSHPort = v
	}
	if v := viper.GetString("user"); v != "" {
		cfgSSHUser = v
	}
	if v := viper.GetString("password"); v != "" {
		cfgSSHPass = v
	}
	if v := viper.GetString("key"); v != "" {
		cfgKeyPath = v
	}
	if v := viper.GetString("passphrase"); v != "" {
		cfgPassphrase = v
	}
	if v := viper.GetString("known-hosts"); v != "" {
		cfgKnownHosts = v
	}
	if v := viper.GetInt("gdb-port"); v != 0 {
		cfgGDBPort = v
	}
	if v := viper.GetString("program"); v != "" {
		cfgProgramPath = v
	}
	if v := viper.GetString("gdb"); v != "" {
		cfgGDBPath = v
	}
	if v := viper.GetString("wait-time"); v != "" {
		cfgWaitTime = parseWaitTime(v, cfgWaitTime)
	}
	if v := viper.GetString("remote-tmp"); v != "" {
		cfgRemoteTmp = v
	}
	if v := viper.GetString("remote-dir"); v != "" {
		cfgRemoteDir = v
	}
	if v := viper.GetString("conn-timeout"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfgConnTimeout = d
		}
	}
	if v := viper.GetString("cmd-timeout"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfgCmdTimeout = d
		}
	}
	if v := viper.GetString("target-file"); v != "" {
		cfgTargetFile = v
	}
	if viper.IsSet("log-file") {
		cfgLogFile = viper.GetString("log-file")
	}
	// Booleans
	if viper.IsSet("strict-host-key") {
		cfgStrictHost = viper.GetBool("strict-host-key")
	}
	if viper.IsSet("monitor-output") {
		cfgMonitorEnabled = viper.GetBool("monitor-output")
	}
}

// parseWaitTime accepts either a Go duration ("1500ms", "2s") or a bare
// integer interpreted as milliseconds, which is how DEBUG_WAIT_TIME is
// expressed in the build caches this tool reads.
func parseWaitTime(v string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return time.Duration(n) * time.Millisecond
	}
	return fallback
}
