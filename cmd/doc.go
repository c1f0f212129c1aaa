// Package cmd implements the gdbdeploy command-line interface.
//
// The package organizes all CLI subcommands (deploy, debug, diagnostic,
// plan, monitor, verify, install-key) and the underlying helpers for SSH
// connectivity, install-manifest scanning, batched file transfer, remote
// gdbserver supervision, and live output streaming.
//
// New contributors should start by reading rootCmd.go to see how cobra is
// wired, deploy.go for the deployment orchestration flow, scanBuildTree.go
// for how install manifests are discovered and parsed, connPool.go for the
// reused SSH control channel, and outputMonitor.go for the streaming tail of
// the remote process output.
package cmd
