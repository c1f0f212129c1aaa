package cmd

import (
	"bufio"
	"strconv"
	"strings"
)

// parseListeningPorts returns a deduplicated, in-order list of TCP ports in
// LISTEN state from `netstat -tln` output. Only the local-address column is
// considered; the parser tolerates both "0.0.0.0:80" and ":::80" forms so it
// works with busybox netstat.
func parseListeningPorts(out string) []int {
	seen := make(map[int]struct{})
	var ports []int
	s := bufio.NewScanner(strings.NewReader(out))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if !strings.HasPrefix(line, "tcp") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		local := fields[3]
		i := strings.LastIndex(local, ":")
		if i < 0 || i == len(local)-1 {
			continue
		}
		port, err := strconv.Atoi(local[i+1:])
		if err != nil {
			continue
		}
		if _, ok := seen[port]; !ok {
			seen[port] = struct{}{}
			ports = append(ports, port)
		}
	}
	return ports
}

// remotePortListening checks whether the target is listening on port.
func remotePortListening(t transport, port int) bool {
	out, _, err := runRemoteFunc(t, listListeningCommand(), cfgCmdTimeout)
	if err != nil {
		return false
	}
	for _, p := range parseListeningPorts(string(out)) {
		if p == port {
			return true
		}
	}
	return false
}
