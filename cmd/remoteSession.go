package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// remoteSession is the full state of one remote-debug attempt: connection
// coordinates, resolved program locations, and the scratch paths derived from
// the program name. All fields are explicit; configuration flows in once at
// construction instead of being merged ad hoc at call sites.
type remoteSession struct {
	id      string
	sshHost string
	sshPort int
	gdbPort int
	user    string

	localProgramPath  string
	remoteProgramPath string
	remoteDir         string

	outputFile        string
	controlScriptPath string

	programArgs []string
	processID   int
}

// newRemoteSession validates the configuration and derives the session
// paths. items (from a build-tree scan) resolve where the program was
// deployed; --remote-dir overrides that resolution.
func newRemoteSession(items []installItem, args []string) (*remoteSession, error) {
	if strings.TrimSpace(cfgSSHHost) == "" {
		return nil, fmt.Errorf("remote host is required (--host or REMOTE_SSH_HOST): %w", errConfiguration)
	}
	if strings.TrimSpace(cfgProgramPath) == "" {
		return nil, fmt.Errorf("program path is required (--program or LOCAL_PROGRAM_PATH): %w", errConfiguration)
	}
	if _, err := os.Stat(cfgProgramPath); err != nil {
		return nil, fmt.Errorf("program %s not found locally: %w", cfgProgramPath, errConfiguration)
	}

	remoteDir := cfgRemoteDir
	if remoteDir == "" {
		remoteDir = resolveRemoteDir(items, cfgProgramPath)
	}
	if remoteDir == "" {
		return nil, fmt.Errorf("cannot resolve remote directory for %s from install manifests; pass --remote-dir: %w", cfgProgramPath, errConfiguration)
	}

	name := filepath.Base(cfgProgramPath)
	s := &remoteSession{
		id:                uuid.NewString(),
		sshHost:           cfgSSHHost,
		sshPort:           cfgSSHPort,
		gdbPort:           cfgGDBPort,
		user:              cfgSSHUser,
		localProgramPath:  cfgProgramPath,
		remoteProgramPath: remoteDir + "/" + name,
		remoteDir:         remoteDir,
		outputFile:        cfgRemoteTmp + "/" + name + ".output",
		controlScriptPath: cfgRemoteTmp + "/" + name + ".sh",
		programArgs:       args,
	}
	return s, nil
}

// target returns the host:port dial string for the session.
func (s *remoteSession) target() string {
	return fmt.Sprintf("%s:%d", s.sshHost, s.sshPort)
}

// gdbTarget returns the "target remote" coordinates for the local debugger.
func (s *remoteSession) gdbTarget() string {
	return fmt.Sprintf("%s:%d", s.sshHost, s.gdbPort)
}

// resolveRemoteDir finds the destination the scan assigned to the local
// program, matching by full source path first and by basename as a fallback
// (the build may install from a staging copy of the binary).
func resolveRemoteDir(items []installItem, programPath string) string {
	for _, it := range items {
		if it.kind == kindExecutable && it.source == programPath {
			return it.destination
		}
	}
	base := filepath.Base(programPath)
	for _, it := range items {
		if it.kind == kindExecutable && it.name == base {
			return it.destination
		}
	}
	return ""
}
