package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// sessionManager owns the state of one deploy/debug flow: the connection
// pool, the active remote session, its supervisor, and the single active
// output monitor. Commands create one manager and pass it along explicitly;
// there is no module-level session state.
type sessionManager struct {
	pool *connPool

	mu      sync.Mutex
	session *remoteSession
	sv      *supervisor
	monitor *outputMonitor
}

func newSessionManager() *sessionManager {
	return &sessionManager{pool: newConnPool()}
}

// connect acquires the reused control channel for the configured target.
func (sm *sessionManager) connect() (*pooledConn, error) {
	if strings.TrimSpace(cfgSSHHost) == "" {
		return nil, fmt.Errorf("remote host is required (--host or REMOTE_SSH_HOST): %w", errConfiguration)
	}
	target := fmt.Sprintf("%s:%d", cfgSSHHost, cfgSSHPort)
	return sm.pool.acquire(target, cfgSSHUser, cfgSSHPass, cfgKeyPath, cfgPassphrase, cfgKnownHosts, cfgStrictHost, cfgConnTimeout)
}

// startMonitor attaches a new output monitor for the session, stopping any
// previously active one first: at most one monitor is active per session.
func (sm *sessionManager) startMonitor(t transport, outputFile string, sink io.Writer) (*outputMonitor, error) {
	sm.mu.Lock()
	prev := sm.monitor
	sm.mu.Unlock()
	if prev != nil {
		if err := prev.cleanup(); err != nil {
			log.WithError(err).Warn("stopping previous output monitor failed")
		}
	}

	m, err := startOutputMonitor(t, outputFile, sink)
	if err != nil {
		return nil, err
	}
	sm.mu.Lock()
	sm.monitor = m
	sm.mu.Unlock()
	return m, nil
}

// activeMonitor returns the current monitor, or nil.
func (sm *sessionManager) activeMonitor() *outputMonitor {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.monitor
}

// setSession records the session and its supervisor.
func (sm *sessionManager) setSession(sess *remoteSession, sv *supervisor) {
	sm.mu.Lock()
	sm.session = sess
	sm.sv = sv
	sm.mu.Unlock()
}

// teardown ends the debug session: stop the monitor, kill the remote debug
// server, release the connections. The three steps are independent and any
// subset may fail (a dropped connection most commonly) without aborting the
// rest.
func (sm *sessionManager) teardown() {
	sm.mu.Lock()
	monitor := sm.monitor
	sv := sm.sv
	sm.monitor = nil
	sm.sv = nil
	sm.session = nil
	sm.mu.Unlock()

	if monitor != nil {
		if err := monitor.cleanup(); err != nil {
			log.WithError(err).Warn("monitor cleanup failed")
		}
	}
	if sv != nil {
		if err := sv.stop(); err != nil {
			log.WithError(err).Warn("remote process teardown failed")
		}
	}
	sm.pool.closeAll()
}
