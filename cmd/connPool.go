package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// connIdleTimeout bounds how long an unused control channel stays open.
const connIdleTimeout = 10 * time.Minute

// pooledConn is one reused SSH control channel. Every remote operation rides
// a session (channel) on the same authenticated TCP connection, so only the
// first use pays the full handshake. The mutex serializes commands: this
// subsystem never issues unordered concurrent commands on one connection.
type pooledConn struct {
	target string
	client *ssh.Client

	mu       sync.Mutex
	lastUsed time.Time
}

func (c *pooledConn) touch() {
	c.lastUsed = nowFunc()
}

func (c *pooledConn) run(cmd string) ([]byte, int, error) {
	return c.runWithInput(cmd, nil)
}

func (c *pooledConn) runWithInput(cmd string, in io.Reader) ([]byte, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	sess, err := c.client.NewSession()
	if err != nil {
		return nil, -1, fmt.Errorf("session on %s: %w", c.target, err)
	}
	defer func() { _ = sess.Close() }()
	if in != nil {
		sess.Stdin = in
	}
	out, err := sess.CombinedOutput(cmd)
	code := sessionExitCode(err)
	if err != nil && code < 0 {
		return out, code, err
	}
	return out, code, nil
}

func (c *pooledConn) stream(cmd string) (streamHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	return openStream(c.client, cmd)
}

func (c *pooledConn) close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// connPool caches control channels keyed by host:port. Idle connections are
// reaped after connIdleTimeout so an abandoned session does not pin the
// target's sshd forever.
type connPool struct {
	mu     sync.Mutex
	conns  map[string]*pooledConn
	reaper sync.Once
}

func newConnPool() *connPool {
	return &connPool{conns: make(map[string]*pooledConn)}
}

// acquire returns the live pooled connection for target, dialing a new one
// when none exists. Subsequent operations on the returned transport pay only
// the per-session cost.
func (p *connPool) acquire(target, user, password, keyPath, passphrase, knownHostsPath string, strictHost bool, dialTimeout time.Duration) (*pooledConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.conns[target]; ok {
		// Probe liveness cheaply; a dead TCP connection answers immediately.
		if _, _, err := c.client.SendRequest("keepalive@gdbdeploy", true, nil); err == nil {
			c.touch()
			return c, nil
		}
		_ = c.close()
		delete(p.conns, target)
	}

	client, err := dialSSHFunc(target, user, password, keyPath, passphrase, knownHostsPath, strictHost, dialTimeout)
	if err != nil {
		return nil, err
	}
	c := &pooledConn{target: target, client: client, lastUsed: nowFunc()}
	p.conns[target] = c
	p.reaper.Do(func() { go p.reapIdle() })
	return c, nil
}

// reapIdle tears down connections that have sat unused past the idle bound.
func (p *connPool) reapIdle() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		p.mu.Lock()
		for target, c := range p.conns {
			if nowFunc().Sub(c.lastUsed) > connIdleTimeout {
				_ = c.close()
				delete(p.conns, target)
			}
		}
		p.mu.Unlock()
	}
}

// closeAll drops every pooled connection; used at session teardown.
func (p *connPool) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for target, c := range p.conns {
		_ = c.close()
		delete(p.conns, target)
	}
}
