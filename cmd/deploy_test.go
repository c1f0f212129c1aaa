package cmd

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestDeployItems_ProtectedDestinationRefused verifies the safety invariant:
// items destined for a protected path are skipped, recorded, and no remote
// command ever mentions the protected destination.
func TestDeployItems_ProtectedDestinationRefused(t *testing.T) {
	resetConfig()
	tmp := t.TempDir()
	src := writeTemp(t, tmp, "payload", "x")

	items := []installItem{
		newInstallItem(kindExecutable, src, "/usr/bin"),
		newInstallItem(kindFile, src, "/opt/app/etc"),
	}

	f := &fakeTransport{}
	report := deployItems(f, items)

	require.Len(t, report.skipped, 1)
	require.Equal(t, "/usr/bin", report.skipped[0].destination)
	require.NoError(t, report.err())
	for _, cmd := range f.recorded() {
		require.NotContains(t, cmd, "/usr/bin")
	}
}

// TestDeployItems_OneBatchPerDestination verifies the round-trip invariant:
// N files for one destination travel as exactly one archive stream, never as
// N individual transfers.
func TestDeployItems_OneBatchPerDestination(t *testing.T) {
	resetConfig()
	tmp := t.TempDir()
	a := writeTemp(t, tmp, "a.conf", "a")
	b := writeTemp(t, tmp, "b.conf", "b")
	c := writeTemp(t, tmp, "run.sh", "#!/bin/sh\n")

	items := []installItem{
		newInstallItem(kindFile, a, "/opt/app/etc"),
		newInstallItem(kindFile, b, "/opt/app/etc"),
		newInstallItem(kindExecutable, c, "/opt/app/etc"),
	}

	f := &fakeTransport{}
	report := deployItems(f, items)
	require.NoError(t, report.err())

	require.Equal(t, 1, f.inputCallCount())
	require.Equal(t, extractCommand("/opt/app/etc"), f.inputCmds[0])
	require.NotEmpty(t, f.inputs[0])

	// chmod covers exactly the uploaded executable.
	cmds := f.recorded()
	require.Contains(t, cmds, mkdirCommand("/opt/app/etc"))
	require.Contains(t, cmds, chmodExecCommand([]string{"/opt/app/etc/run.sh"}))
}

// TestDeployItems_FailedGroupDoesNotAbortLaterGroups verifies partial-success
// semantics: a failing destination is reported, later groups still deploy,
// and the report error is errPartialDeploy.
func TestDeployItems_FailedGroupDoesNotAbortLaterGroups(t *testing.T) {
	resetConfig()
	tmp := t.TempDir()
	a := writeTemp(t, tmp, "a.conf", "a")
	b := writeTemp(t, tmp, "b.conf", "b")

	items := []installItem{
		newInstallItem(kindFile, a, "/opt/bad"),
		newInstallItem(kindFile, b, "/opt/good"),
	}

	f := &fakeTransport{respond: func(cmd string) (string, int, error) {
		if cmd == mkdirCommand("/opt/bad") {
			return "mkdir: read-only file system", 1, nil
		}
		return "", 0, nil
	}}
	report := deployItems(f, items)

	require.ErrorIs(t, report.err(), errPartialDeploy)
	require.Contains(t, report.failed, "/opt/bad")
	require.Equal(t, []string{"/opt/good"}, report.deployed)
}

func TestDeployItems_AllGroupsFailedIsTransferError(t *testing.T) {
	resetConfig()
	tmp := t.TempDir()
	a := writeTemp(t, tmp, "a.conf", "a")
	items := []installItem{newInstallItem(kindFile, a, "/opt/app")}

	f := &fakeTransport{respond: func(cmd string) (string, int, error) {
		return "no space left on device", 1, nil
	}}
	report := deployItems(f, items)
	err := report.err()
	require.ErrorIs(t, err, errTransfer)
	require.False(t, errors.Is(err, errPartialDeploy))
}

// TestDeployCmd_UnreachableHost covers scenario B: deploy against a dead
// endpoint surfaces errConnection and performs zero file transfer attempts.
func TestDeployCmd_UnreachableHost(t *testing.T) {
	resetConfig()
	tmp := t.TempDir()
	writeTemp(t, tmp, "cmake_install.cmake", `
set(CMAKE_INSTALL_PREFIX "/opt/app")
file(INSTALL DESTINATION "${CMAKE_INSTALL_PREFIX}/bin" TYPE EXECUTABLE FILES "/src/build/app")
`)
	cfgBuildDir = tmp
	cfgSSHHost = "127.0.0.1"
	cfgSSHPort = 1 // nothing listens here

	transfers := 0
	origRun := runRemoteFunc
	t.Cleanup(func() { runRemoteFunc = origRun })
	runRemoteFunc = func(tr transport, cmd string, timeout time.Duration) ([]byte, int, error) {
		transfers++
		return nil, 0, nil
	}

	err := deployCmd.RunE(deployCmd, nil)
	require.ErrorIs(t, err, errConnection)
	require.Zero(t, transfers)
}

func TestDeployReport_Summary(t *testing.T) {
	r := newDeployReport()
	r.groups = 3
	r.deployed = []string{"/a", "/b"}
	r.failed["/c"] = errTransfer
	require.True(t, strings.Contains(r.summary(), "deployed 2/3"))
}
