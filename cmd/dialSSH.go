package cmd

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// dialSSH establishes an SSH client connection to target ("host:port").
// Auth methods are assembled in order: private key, password, ssh-agent.
// Failures are classified into the error taxonomy: credential rejection maps
// to errAuth, everything else (refused, unreachable, timeout) to errConnection.
func dialSSH(target, user, password, keyPath, passphrase, knownHostsPath string, strictHost bool, dialTimeout time.Duration) (*ssh.Client, error) {
	auths := []ssh.AuthMethod{}

	if keyPath != "" {
		signer, err := loadSigner(keyPath, passphrase)
		if err != nil {
			return nil, fmt.Errorf("load key: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}

	if password != "" {
		auths = append(auths, ssh.Password(password))
	}

	// Try SSH agent if available
	if a := os.Getenv("SSH_AUTH_SOCK"); a != "" {
		if conn, err := net.Dial("unix", a); err == nil {
			ag := agent.NewClient(conn)
			auths = append(auths, ssh.PublicKeysCallback(ag.Signers))
		}
	}

	var hostKeyCB ssh.HostKeyCallback
	if strictHost {
		// Try known_hosts file if present; else fail closed
		if _, err := os.Stat(knownHostsPath); err == nil {
			cb, err := knownhosts.New(knownHostsPath)
			if err != nil {
				return nil, fmt.Errorf("known_hosts: %w", err)
			}
			hostKeyCB = cb
		} else {
			return nil, fmt.Errorf("known_hosts file not found at %s and strict-host-key is enabled: %w", knownHostsPath, errConfiguration)
		}
	} else {
		hostKeyCB = ssh.InsecureIgnoreHostKey()
	}

	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            auths,
		HostKeyCallback: hostKeyCB,
		Timeout:         dialTimeout,
	}

	// Use explicit net.Dialer for connection timeout
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.Dial("tcp", target)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %v: %w", target, err, errConnection)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, target, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, classifyDialError(target, err)
	}
	return ssh.NewClient(c, chans, reqs), nil
}

// classifyDialError distinguishes rejected credentials from transport-level
// handshake failures. x/crypto/ssh reports the former with a stable
// "unable to authenticate" message.
func classifyDialError(target string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "unable to authenticate") || strings.Contains(msg, "permission denied") {
		return fmt.Errorf("ssh %s: %v: %w", target, err, errAuth)
	}
	return fmt.Errorf("ssh %s: %v: %w", target, err, errConnection)
}
