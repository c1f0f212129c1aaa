package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// busybox ps: no column selection, PID first, command line last.
const busyboxPS = `  PID USER       VSZ STAT COMMAND
    1 root      1024 S    init
  214 root      2280 S    /bin/sh /tmp/myapp.sh
  215 root     15400 S    gdbserver :10000 /opt/app/bin/myapp
  302 root      1100 S    tail -n +1 -f /tmp/myapp.output
  417 debug     1980 R    ps
`

func TestParsePSOutput_BusyboxFormat(t *testing.T) {
	require.Equal(t, []int{215}, parsePSOutput(busyboxPS, "gdbserver"))
	require.Equal(t, []int{302}, parsePSOutput(busyboxPS, "tail", "/tmp/myapp.output"))
	// All patterns must match the same line.
	require.Empty(t, parsePSOutput(busyboxPS, "gdbserver", "/tmp/myapp.output"))
	require.Empty(t, parsePSOutput(busyboxPS, "nonexistent"))
}

func TestFindRemotePIDs(t *testing.T) {
	resetConfig()
	f := &fakeTransport{respond: func(cmd string) (string, int, error) {
		return busyboxPS, 0, nil
	}}
	pids, err := findRemotePIDs(f, "gdbserver", ":10000")
	require.NoError(t, err)
	require.Equal(t, []int{215}, pids)
	require.Equal(t, []string{"ps"}, f.recorded())
}

func TestKillRemoteProcesses_EscalatesForSurvivors(t *testing.T) {
	resetConfig()
	f := &fakeTransport{respond: func(cmd string) (string, int, error) {
		switch {
		case cmd == "ps":
			return busyboxPS, 0, nil
		case cmd == processAliveCommand(215):
			return "", 0, nil // still alive after SIGTERM
		default:
			return "", 0, nil
		}
	}}
	issued, err := killRemoteProcesses(f, "gdbserver")
	require.NoError(t, err)
	require.Equal(t, 1, issued)

	cmds := f.recorded()
	require.Contains(t, cmds, killCommand(215, false))
	require.Contains(t, cmds, killCommand(215, true))
}

func TestKillRemoteProcesses_NoEscalationWhenGone(t *testing.T) {
	resetConfig()
	f := &fakeTransport{respond: func(cmd string) (string, int, error) {
		switch {
		case cmd == "ps":
			return busyboxPS, 0, nil
		case cmd == processAliveCommand(215):
			return "", 1, nil // already dead
		default:
			return "", 0, nil
		}
	}}
	issued, err := killRemoteProcesses(f, "gdbserver")
	require.NoError(t, err)
	require.Equal(t, 1, issued)
	for _, cmd := range f.recorded() {
		require.False(t, strings.Contains(cmd, "kill -9"), "unexpected escalation: %q", cmd)
	}
}

func TestKillRemoteProcesses_NoneFoundIsNotAnError(t *testing.T) {
	resetConfig()
	f := &fakeTransport{respond: func(cmd string) (string, int, error) {
		return "  PID USER COMMAND\n", 0, nil
	}}
	issued, err := killRemoteProcesses(f, "gdbserver")
	require.NoError(t, err)
	require.Zero(t, issued)
	require.Equal(t, []string{"ps"}, f.recorded())
}
