package cmd

import "time"

// Version is the CLI version string injected at build time via -ldflags.
var Version = "0.1.0"

var (
	// Global configuration populated by flags, environment variables, and the
	// optional target file. These are declared here so they are visible across
	// subcommands.
	cfgBuildDir       string
	cfgSSHHost        string
	cfgSSHPort        int
	cfgSSHUser        string
	cfgSSHPass        string
	cfgKeyPath        string
	cfgPassphrase     string
	cfgKnownHosts     string
	cfgStrictHost     bool
	cfgGDBPort        int
	cfgProgramPath    string
	cfgGDBPath        string
	cfgWaitTime       time.Duration
	cfgMonitorEnabled bool
	cfgRemoteTmp      string
	cfgRemoteDir      string
	cfgConnTimeout    time.Duration
	cfgCmdTimeout     time.Duration
	cfgTargetFile     string
	cfgLogFile        string
	cfgNoDeploy       bool
)

// Allow tests to stub dialing, command execution, and timing.
var (
	dialSSHFunc   = dialSSH
	runRemoteFunc = runRemote
	sleepFunc     = time.Sleep
	nowFunc       = time.Now
)
