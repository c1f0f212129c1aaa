package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// supervisorState names the lifecycle stages of the remote debug-server
// process. Transitions are linear: Idle → Preparing → Starting → Verifying →
// Running → Terminating → Idle.
type supervisorState int

const (
	stateIdle supervisorState = iota
	statePreparing
	stateStarting
	stateVerifying
	stateRunning
	stateTerminating
)

func (s supervisorState) String() string {
	switch s {
	case statePreparing:
		return "preparing"
	case stateStarting:
		return "starting"
	case stateVerifying:
		return "verifying"
	case stateRunning:
		return "running"
	case stateTerminating:
		return "terminating"
	default:
		return "idle"
	}
}

// verifyAttempts bounds how often the supervisor polls the started process
// before giving up on port confirmation.
const verifyAttempts = 5

// supervisor starts, verifies, and tears down the gdbserver process bound to
// one remoteSession.
type supervisor struct {
	t    transport
	sess *remoteSession

	mu    sync.Mutex
	state supervisorState
}

func newSupervisor(t transport, sess *remoteSession) *supervisor {
	return &supervisor{t: t, sess: sess}
}

func (sv *supervisor) currentState() supervisorState {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	return sv.state
}

func (sv *supervisor) setState(s supervisorState) {
	sv.mu.Lock()
	sv.state = s
	sv.mu.Unlock()
	log.Debugf("supervisor: %s", s)
}

// launcherScript renders the remote control script. It pins the library
// search path to the deployed directory and redirects all process output to
// the session's output file for the monitor to stream.
func launcherScript(sess *remoteSession) string {
	args := make([]string, 0, len(sess.programArgs))
	for _, a := range sess.programArgs {
		args = append(args, shellQuote(a))
	}
	argStr := ""
	if len(args) > 0 {
		argStr = " " + strings.Join(args, " ")
	}
	return "#!/bin/sh\n" +
		"# generated by gdbdeploy; overwritten at each run\n" +
		"export LD_LIBRARY_PATH=" + shellQuote(sess.remoteDir) + ":$LD_LIBRARY_PATH\n" +
		"cd " + shellQuote(sess.remoteDir) + "\n" +
		"exec gdbserver :" + strconv.Itoa(sess.gdbPort) + " " + shellQuote(sess.remoteProgramPath) + argStr +
		" > " + shellQuote(sess.outputFile) + " 2>&1\n"
}

// start drives Preparing → Starting → Verifying → Running. A verification
// timeout is a warning, not an error: some debug servers only bind their port
// on the first client connection.
func (sv *supervisor) start() error {
	sv.setState(statePreparing)
	if err := sv.prepare(); err != nil {
		sv.setState(stateIdle)
		return err
	}

	sv.setState(stateStarting)
	pid, err := sv.launch()
	if err != nil {
		sv.setState(stateIdle)
		return err
	}
	sv.sess.processID = pid

	sv.setState(stateVerifying)
	if err := sv.verify(pid); err != nil {
		sv.setState(stateIdle)
		return err
	}

	sv.setState(stateRunning)
	log.Infof("gdbserver running on %s (pid %d), connect with: target remote %s",
		sv.sess.gdbTarget(), pid, sv.sess.gdbTarget())
	return nil
}

// prepare kills any leftover debug server bound to the same port, writes the
// launcher script, and truncates the output file. The absence of a prior
// instance is not an error.
func (sv *supervisor) prepare() error {
	portPattern := ":" + strconv.Itoa(sv.sess.gdbPort)
	if n, err := killRemoteProcesses(sv.t, "gdbserver", portPattern); err != nil {
		log.WithError(err).Warn("could not check for a previous gdbserver instance")
	} else if n > 0 {
		log.Infof("stopped %d previous gdbserver instance(s)", n)
	}

	script := strings.NewReader(launcherScript(sv.sess))
	if err := putStream(sv.t, script, sv.sess.controlScriptPath); err != nil {
		return fmt.Errorf("write launcher script: %v: %w", err, errRemoteProcess)
	}
	out, code, err := runRemoteFunc(sv.t, chmodExecCommand([]string{sv.sess.controlScriptPath}), cfgCmdTimeout)
	if err != nil || code != 0 {
		return fmt.Errorf("chmod launcher script: %s: %w", strings.TrimSpace(string(out)), errRemoteProcess)
	}
	_, _, _ = runRemoteFunc(sv.t, truncateCommand(sv.sess.outputFile), cfgCmdTimeout)
	return nil
}

// launch starts the script detached and captures the remote PID.
func (sv *supervisor) launch() (int, error) {
	out, code, err := runRemoteFunc(sv.t, startDetachedCommand(sv.sess.controlScriptPath), cfgCmdTimeout)
	if err != nil {
		return 0, fmt.Errorf("start gdbserver: %v: %w", err, errRemoteProcess)
	}
	if code != 0 {
		return 0, fmt.Errorf("start gdbserver: %s: %w", strings.TrimSpace(string(out)), errRemoteProcess)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, fmt.Errorf("start gdbserver: unparseable pid %q: %w", strings.TrimSpace(string(out)), errRemoteProcess)
	}
	return pid, nil
}

// verify waits the configured settle time, then polls with linear backoff
// until the process is confirmed alive and, ideally, the port is listening.
func (sv *supervisor) verify(pid int) error {
	sleepFunc(cfgWaitTime)

	for attempt := 1; attempt <= verifyAttempts; attempt++ {
		if _, code, err := runRemoteFunc(sv.t, processAliveCommand(pid), cfgCmdTimeout); err != nil || code != 0 {
			tail := sv.outputTail()
			return fmt.Errorf("gdbserver (pid %d) died during startup:\n%s%w", pid, tail, errRemoteProcess)
		}
		if remotePortListening(sv.t, sv.sess.gdbPort) {
			return nil
		}
		sleepFunc(time.Duration(attempt) * 500 * time.Millisecond)
	}
	log.Warnf("gdbserver (pid %d) is alive but port %d was not confirmed listening; it may bind on first connection", pid, sv.sess.gdbPort)
	return nil
}

// outputTail captures the last lines of the remote output file for diagnosis.
func (sv *supervisor) outputTail() string {
	out, _, err := runRemoteFunc(sv.t, tailLastLinesCommand(sv.sess.outputFile, 20), cfgCmdTimeout)
	if err != nil || len(out) == 0 {
		return ""
	}
	return string(out)
}

// stop drives Terminating → Idle, killing the remote process by command-line
// pattern. Safe to call when nothing was started; repeated calls are no-ops.
func (sv *supervisor) stop() error {
	if sv.currentState() == stateIdle {
		return nil
	}
	sv.setState(stateTerminating)
	defer sv.setState(stateIdle)

	portPattern := ":" + strconv.Itoa(sv.sess.gdbPort)
	n, err := killRemoteProcesses(sv.t, "gdbserver", portPattern)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Infof("stopped gdbserver (%d process(es))", n)
	}
	sv.sess.processID = 0
	return nil
}
