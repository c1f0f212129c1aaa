// Package sshserv is an in-process SSH server used by end-to-end tests. It
// accepts any user without authentication, serves exec requests through a
// pluggable handler, and records every command it receives so tests can
// assert on the exact remote command sequence.
package sshserv

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// Handler processes one exec request: the requested command line and
// whatever the client streamed on stdin. It returns the output to write and
// the exit status to report.
type Handler func(cmd string, stdin []byte) (out string, exitCode int)

// Server records the exec commands it has served.
type Server struct {
	mu       sync.Mutex
	commands []string
	handler  Handler
	addr     net.Addr
}

// Addr returns the bound listen address, useful with a ":0" listenAddr.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Commands returns a copy of every exec command received so far.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

func (s *Server) record(cmd string) {
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()
}

// Start launches the test server on listenAddr (e.g. 127.0.0.1:20222) with
// the given exec handler. Returns the server (for command inspection) and a
// stop function that closes the listener and waits for shutdown.
func Start(listenAddr string, handler Handler) (*Server, func(), error) {
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, nil, err
	}

	srv := &Server{handler: handler, addr: ln.Addr()}
	stopCh := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		priv, _ := rsa.GenerateKey(rand.Reader, 2048)
		signer, _ := ssh.NewSignerFromKey(priv)
		cfg := &ssh.ServerConfig{NoClientAuth: true}
		cfg.AddHostKey(signer)

		for {
			_ = ln.(*net.TCPListener).SetDeadline(time.Now().Add(500 * time.Millisecond))
			conn, err := ln.Accept()
			select {
			case <-stopCh:
				if conn != nil {
					_ = conn.Close()
				}
				return
			default:
			}
			if err != nil {
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					continue
				}
				continue
			}
			go srv.handleConn(conn, cfg)
		}
	}()

	stop := func() {
		close(stopCh)
		_ = ln.Close()
		<-done
	}
	return srv, stop, nil
}

func (s *Server) handleConn(raw net.Conn, cfg *ssh.ServerConfig) {
	sc, chans, reqs, err := ssh.NewServerConn(raw, cfg)
	if err != nil {
		_ = raw.Close()
		return
	}
	_ = sc
	go ssh.DiscardRequests(reqs)
	for ch := range chans {
		if ch.ChannelType() != "session" {
			_ = ch.Reject(ssh.UnknownChannelType, "")
			continue
		}
		c, creqs, err := ch.Accept()
		if err != nil {
			continue
		}
		go s.handleSession(c, creqs)
	}
}

func (s *Server) handleSession(ch ssh.Channel, in <-chan *ssh.Request) {
	defer func() { _ = ch.Close() }()
	for req := range in {
		switch req.Type {
		case "pty-req", "shell", "keepalive@gdbdeploy":
			_ = req.Reply(true, nil)
		case "exec":
			cmd := parseExecPayload(req.Payload)
			_ = req.Reply(true, nil)
			s.record(cmd)
			// The client sends EOF on stdin once it finishes streaming
			// (immediately for commands without input).
			stdin, _ := io.ReadAll(ch)
			out, code := "", 0
			if s.handler != nil {
				out, code = s.handler(cmd, stdin)
			}
			if out != "" {
				_, _ = ch.Write([]byte(out))
			}
			status := make([]byte, 4)
			binary.BigEndian.PutUint32(status, uint32(code))
			_, _ = ch.SendRequest("exit-status", false, status)
			return
		default:
			_ = req.Reply(false, nil)
		}
	}
}

func parseExecPayload(payload []byte) string {
	if len(payload) < 4 {
		return ""
	}
	n := binary.BigEndian.Uint32(payload)
	if int(n) > len(payload)-4 {
		return string(payload[4:])
	}
	return string(payload[4 : 4+n])
}
