package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// writeTemp creates a temp file with content and returns its path.
func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

// resetConfig clears global configuration so tests don't leak state
func resetConfig() {
	viper.Reset()
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	cfgBuildDir = "build"
	cfgSSHHost = ""
	cfgSSHPort = 2222
	cfgSSHUser = "root"
	cfgSSHPass = ""
	cfgKeyPath = ""
	cfgPassphrase = ""
	cfgKnownHosts = ""
	cfgStrictHost = false
	cfgGDBPort = 10000
	cfgProgramPath = ""
	cfgGDBPath = ""
	cfgWaitTime = 2 * time.Second
	cfgMonitorEnabled = true
	cfgRemoteTmp = "/tmp"
	cfgRemoteDir = ""
	cfgConnTimeout = time.Second
	cfgCmdTimeout = 5 * time.Second
	cfgTargetFile = ""
	cfgLogFile = ""
	cfgNoDeploy = false
	cfgInstallPubKeyPath = ""
	dialSSHFunc = dialSSH
	runRemoteFunc = runRemote
	sleepFunc = time.Sleep
	nowFunc = time.Now
}

// fakeStream is a canned streamHandle that tracks how often it was stopped.
// When backed by a pipe it stays open, like a real tail -f, until stopped.
type fakeStream struct {
	io.Reader
	pw    *io.PipeWriter
	mu    sync.Mutex
	stops int
}

func (s *fakeStream) stop() error {
	s.mu.Lock()
	s.stops++
	s.mu.Unlock()
	if s.pw != nil {
		_ = s.pw.Close()
	}
	return nil
}

func (s *fakeStream) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

// fakeTransport records every remote operation and answers from an optional
// responder, standing in for the pooled SSH connection.
type fakeTransport struct {
	mu         sync.Mutex
	commands   []string // all run/runWithInput commands, in order
	inputCmds  []string // runWithInput commands only
	inputs     [][]byte
	streamCmds []string
	streams    []*fakeStream

	// respond answers a command; nil means ("", 0, nil) for everything.
	respond    func(cmd string) (string, int, error)
	streamData string
	// streamBlocking backs streams with a pipe that stays open until the
	// stream is stopped, like a real tail -f.
	streamBlocking bool
	streamErr      error
	delay          time.Duration
}

func (f *fakeTransport) answer(cmd string) ([]byte, int, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.respond == nil {
		return nil, 0, nil
	}
	out, code, err := f.respond(cmd)
	return []byte(out), code, err
}

func (f *fakeTransport) run(cmd string) ([]byte, int, error) {
	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	f.mu.Unlock()
	return f.answer(cmd)
}

func (f *fakeTransport) runWithInput(cmd string, in io.Reader) ([]byte, int, error) {
	var b []byte
	if in != nil {
		b, _ = io.ReadAll(in)
	}
	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	f.inputCmds = append(f.inputCmds, cmd)
	f.inputs = append(f.inputs, b)
	f.mu.Unlock()
	return f.answer(cmd)
}

func (f *fakeTransport) stream(cmd string) (streamHandle, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	var s *fakeStream
	if f.streamBlocking {
		pr, pw := io.Pipe()
		s = &fakeStream{Reader: pr, pw: pw}
		if f.streamData != "" {
			go func() { _, _ = pw.Write([]byte(f.streamData)) }()
		}
	} else {
		s = &fakeStream{Reader: strings.NewReader(f.streamData)}
	}
	f.mu.Lock()
	f.streamCmds = append(f.streamCmds, cmd)
	f.streams = append(f.streams, s)
	f.mu.Unlock()
	return s, nil
}

func (f *fakeTransport) close() error { return nil }

func (f *fakeTransport) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	copy(out, f.commands)
	return out
}

func (f *fakeTransport) inputCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputCmds)
}
