package cmd

import (
	"context"
	"time"
)

// remoteResult carries the outcome of one remote command.
type remoteResult struct {
	out      []byte
	exitCode int
	err      error
}

// runRemote executes a single remote command with an optional timeout. On
// timeout the session goroutine is abandoned (its session dies with the
// connection or on completion) and context.DeadlineExceeded is returned.
func runRemote(t transport, cmd string, timeout time.Duration) ([]byte, int, error) {
	run := func() remoteResult {
		out, code, err := t.run(cmd)
		return remoteResult{out, code, err}
	}

	if timeout <= 0 {
		r := run()
		return r.out, r.exitCode, r.err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ch := make(chan remoteResult, 1)
	go func() { ch <- run() }()

	select {
	case r := <-ch:
		return r.out, r.exitCode, r.err
	case <-ctx.Done():
		// Best-effort: indicate timeout. Caller may reconnect if desired.
		return nil, -1, context.DeadlineExceeded
	}
}

// runRemoteAsync runs cmd without blocking the caller and delivers the result
// on done from a background goroutine. Used where the flow must stay
// responsive while a slow remote command completes.
func runRemoteAsync(t transport, cmd string, timeout time.Duration, done func(out []byte, exitCode int, err error)) {
	go func() {
		out, code, err := runRemoteFunc(t, cmd, timeout)
		done(out, code, err)
	}()
}
