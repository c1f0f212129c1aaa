package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunRemote_Success(t *testing.T) {
	f := &fakeTransport{respond: func(cmd string) (string, int, error) {
		return "ok\n", 0, nil
	}}
	out, code, err := runRemote(f, "echo ok", time.Second)
	require.NoError(t, err)
	require.Zero(t, code)
	require.Equal(t, "ok\n", string(out))
	require.Equal(t, []string{"echo ok"}, f.recorded())
}

func TestRunRemote_NonZeroExit(t *testing.T) {
	f := &fakeTransport{respond: func(cmd string) (string, int, error) {
		return "not found", 127, nil
	}}
	out, code, err := runRemote(f, "missing-binary", time.Second)
	require.NoError(t, err)
	require.Equal(t, 127, code)
	require.Equal(t, "not found", string(out))
}

func TestRunRemote_Timeout(t *testing.T) {
	f := &fakeTransport{delay: 200 * time.Millisecond}
	_, code, err := runRemote(f, "sleep 60", 10*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, -1, code)
}

func TestRunRemote_ZeroTimeoutDisables(t *testing.T) {
	f := &fakeTransport{delay: 20 * time.Millisecond}
	_, code, err := runRemote(f, "slow", 0)
	require.NoError(t, err)
	require.Zero(t, code)
}

func TestRunRemoteAsync_DeliversResult(t *testing.T) {
	resetConfig()
	f := &fakeTransport{respond: func(cmd string) (string, int, error) {
		return "done", 0, nil
	}}

	ch := make(chan string, 1)
	runRemoteAsync(f, "long-job", time.Second, func(out []byte, exitCode int, err error) {
		require.NoError(t, err)
		require.Zero(t, exitCode)
		ch <- string(out)
	})

	select {
	case got := <-ch:
		require.Equal(t, "done", got)
	case <-time.After(2 * time.Second):
		t.Fatal("async result never delivered")
	}
}
