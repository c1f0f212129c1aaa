package cmd

import (
	"strconv"
	"strings"
)

// findRemotePIDs runs plain `ps` on the target and returns the PIDs of
// processes whose command line contains every pattern. Parsing happens
// client-side on the first numeric column, so this works against the minimal
// busybox ps found on embedded targets, which has no column-selection flags.
func findRemotePIDs(t transport, patterns ...string) ([]int, error) {
	out, _, err := runRemoteFunc(t, "ps", cfgCmdTimeout)
	if err != nil {
		return nil, err
	}
	return parsePSOutput(string(out), patterns...), nil
}

// parsePSOutput extracts matching PIDs from raw ps output. Lines whose first
// field is not a number (headers) are ignored.
func parsePSOutput(out string, patterns ...string) []int {
	var pids []int
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		matched := true
		for _, p := range patterns {
			if !strings.Contains(line, p) {
				matched = false
				break
			}
		}
		if matched {
			pids = append(pids, pid)
		}
	}
	return pids
}

// killRemoteProcesses terminates every remote process matching the patterns,
// escalating to SIGKILL for survivors. Best-effort: the absence of a matching
// process is not an error, and individual kill failures are only logged.
// Returns how many kill commands were issued.
func killRemoteProcesses(t transport, patterns ...string) (int, error) {
	pids, err := findRemotePIDs(t, patterns...)
	if err != nil {
		return 0, err
	}
	issued := 0
	for _, pid := range pids {
		if _, _, err := runRemoteFunc(t, killCommand(pid, false), cfgCmdTimeout); err != nil {
			log.WithError(err).Warnf("kill %d failed", pid)
			continue
		}
		issued++
		if _, code, err := runRemoteFunc(t, processAliveCommand(pid), cfgCmdTimeout); err == nil && code == 0 {
			_, _, _ = runRemoteFunc(t, killCommand(pid, true), cfgCmdTimeout)
		}
	}
	return issued, nil
}
