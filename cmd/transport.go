package cmd

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/ssh"
)

// transport is the minimal surface the orchestrator, supervisor, and monitor
// need from a remote connection. Tests substitute a recording double; the
// real implementation is a pooled SSH client (connPool.go).
type transport interface {
	// run executes one remote command and returns combined output and the
	// remote exit code (-1 when it could not be determined).
	run(cmd string) ([]byte, int, error)
	// runWithInput is run with the command's stdin fed from in; this is how
	// file contents and tar streams travel without a separate copy channel.
	runWithInput(cmd string, in io.Reader) ([]byte, int, error)
	// stream starts a long-running remote command and returns its combined
	// output as a reader. The caller owns the handle and must stop() it.
	stream(cmd string) (streamHandle, error)
	close() error
}

// streamHandle is one live streaming remote command (e.g. a tail -f).
type streamHandle interface {
	io.Reader
	stop() error
}

// sshStream adapts an *ssh.Session running a started command to streamHandle.
type sshStream struct {
	io.Reader
	sess *ssh.Session
}

func (s *sshStream) stop() error {
	// Closing the session tears down the remote channel, which terminates
	// the streamed command on any reasonable sshd.
	return s.sess.Close()
}

// sessionExitCode derives the remote exit status from a session error.
func sessionExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ssh.ExitError
	if errors.As(err, &ee) {
		return ee.ExitStatus()
	}
	return -1
}

// openStream starts cmd on a fresh session of client and returns its stdout
// as a reader. Callers that need stderr merge it remotely with 2>&1.
func openStream(client *ssh.Client, cmd string) (streamHandle, error) {
	sess, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("open stream session: %w", err)
	}
	out, err := sess.StdoutPipe()
	if err != nil {
		_ = sess.Close()
		return nil, err
	}
	sess.Stderr = io.Discard
	if err := sess.Start(cmd); err != nil {
		_ = sess.Close()
		return nil, fmt.Errorf("start stream %q: %w", cmd, err)
	}
	return &sshStream{Reader: out, sess: sess}, nil
}
