package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClassifyOutputLine(t *testing.T) {
	errLines := []string{
		"ERROR: cannot open device",
		"Segmentation fault (core dumped)",
		"assert failed at main.c:42",
		"fatal: unexpected state",
	}
	for _, l := range errLines {
		require.True(t, classifyOutputLine(l), "expected error classification: %q", l)
	}

	infoLines := []string{
		"Listening on port 10000",
		"Remote debugging from host 192.168.7.1",
		"sensor reading: 42",
	}
	for _, l := range infoLines {
		require.False(t, classifyOutputLine(l), "expected info classification: %q", l)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestOutputMonitor_StreamsAndClassifies(t *testing.T) {
	resetConfig()
	nowFunc = func() time.Time {
		return time.Date(2026, 8, 26, 10, 30, 0, 123_000_000, time.UTC)
	}

	var buf bytes.Buffer
	f := &fakeTransport{
		streamBlocking: true,
		streamData:     "starting up\nERROR: no sensor\n",
	}
	m, err := startOutputMonitor(f, "/tmp/myapp.output", &buf)
	require.NoError(t, err)
	defer func() { _ = m.cleanup() }()

	require.Equal(t, []string{tailFollowCommand("/tmp/myapp.output")}, f.streamCmds)

	waitFor(t, func() bool { return m.status().lines == 2 })
	st := m.status()
	require.True(t, st.active)
	require.Equal(t, 1, st.errorLines)

	out := buf.String()
	require.Contains(t, out, "[10:30:00.123 out] starting up\n")
	require.Contains(t, out, "[10:30:00.123 err] ERROR: no sensor\n")
}

func TestOutputMonitor_CleanupIsIdempotent(t *testing.T) {
	resetConfig()
	f := &fakeTransport{streamBlocking: true}
	m, err := startOutputMonitor(f, "/tmp/myapp.output", nil)
	require.NoError(t, err)

	require.NoError(t, m.cleanup())
	require.False(t, m.status().active)
	require.NoError(t, m.cleanup())
	require.Equal(t, 1, f.streams[0].stopCount())
}

func TestOutputMonitor_ClosedStreamMarksInactive(t *testing.T) {
	resetConfig()
	// Non-blocking stream: EOF immediately, like a dropped connection.
	f := &fakeTransport{streamData: "last line\n"}
	m, err := startOutputMonitor(f, "/tmp/myapp.output", nil)
	require.NoError(t, err)

	waitFor(t, func() bool { return !m.status().active })
	require.Equal(t, 1, m.status().lines)
}

func TestSessionManager_SecondMonitorStopsFirst(t *testing.T) {
	resetConfig()
	f := &fakeTransport{streamBlocking: true}
	sm := newSessionManager()

	first, err := sm.startMonitor(f, "/tmp/a.output", nil)
	require.NoError(t, err)
	require.Same(t, first, sm.activeMonitor())

	second, err := sm.startMonitor(f, "/tmp/b.output", nil)
	require.NoError(t, err)
	defer func() { _ = second.cleanup() }()

	require.Same(t, second, sm.activeMonitor())
	require.False(t, first.status().active)
	require.Equal(t, 1, f.streams[0].stopCount())
}

func TestSessionManager_TeardownStopsMonitor(t *testing.T) {
	resetConfig()
	f := &fakeTransport{streamBlocking: true}
	sm := newSessionManager()

	m, err := sm.startMonitor(f, "/tmp/a.output", nil)
	require.NoError(t, err)

	sm.teardown()
	require.False(t, m.status().active)
	require.Nil(t, sm.activeMonitor())
}

func TestMonitorStatus_UptimeOnlyWhileActive(t *testing.T) {
	resetConfig()
	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return base }

	f := &fakeTransport{streamBlocking: true}
	m, err := startOutputMonitor(f, "/tmp/a.output", nil)
	require.NoError(t, err)

	nowFunc = func() time.Time { return base.Add(90 * time.Second) }
	require.Equal(t, 90*time.Second, m.status().uptime)

	require.NoError(t, m.cleanup())
	require.Zero(t, m.status().uptime)
}

func TestOutputMonitor_LongLines(t *testing.T) {
	resetConfig()
	long := strings.Repeat("x", 200*1024)
	f := &fakeTransport{streamBlocking: true, streamData: long + "\n"}

	var buf bytes.Buffer
	m, err := startOutputMonitor(f, "/tmp/a.output", &buf)
	require.NoError(t, err)
	defer func() { _ = m.cleanup() }()

	waitFor(t, func() bool { return m.status().lines == 1 })
	require.Contains(t, buf.String(), long)
}
