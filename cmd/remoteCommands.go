package cmd

import (
	"fmt"
	"strings"
)

// Builders for every remote command string the deploy/debug flows issue.
// Centralizing them keeps the orchestrator, the supervisor, and the `plan`
// subcommand in exact agreement about what runs on the target.

func mkdirCommand(dir string) string {
	return "mkdir -p " + shellQuote(dir)
}

// extractCommand unpacks a tar.gz stream from stdin into dir. Extraction only
// adds and overwrites; there is intentionally no delete anywhere in the
// transfer path.
func extractCommand(dir string) string {
	return "tar -xzf - -C " + shellQuote(dir)
}

// syncCommand is extractCommand with an idempotent mkdir folded into the same
// round trip.
func syncCommand(dir string) string {
	return mkdirCommand(dir) + " && " + extractCommand(dir)
}

func catCommand(path string) string {
	return "cat > " + shellQuote(path)
}

func chmodExecCommand(paths []string) string {
	quoted := make([]string, 0, len(paths))
	for _, p := range paths {
		quoted = append(quoted, shellQuote(p))
	}
	return "chmod +x " + strings.Join(quoted, " ")
}

func truncateCommand(path string) string {
	return ": > " + shellQuote(path)
}

func startDetachedCommand(script string) string {
	return "nohup " + shellQuote(script) + " >/dev/null 2>&1 & echo $!"
}

func processAliveCommand(pid int) string {
	return fmt.Sprintf("kill -0 %d", pid)
}

func killCommand(pid int, force bool) string {
	if force {
		return fmt.Sprintf("kill -9 %d", pid)
	}
	return fmt.Sprintf("kill %d", pid)
}

// listListeningCommand enumerates listening TCP sockets. busybox netstat
// supports -tln; the output is parsed client-side.
func listListeningCommand() string {
	return "netstat -tln 2>/dev/null"
}

// tailFollowCommand streams a file from its first byte, emitting new data as
// it is appended. stderr is merged remotely because the stream session only
// exposes stdout.
func tailFollowCommand(path string) string {
	return "tail -n +1 -f " + shellQuote(path) + " 2>&1"
}

func tailLastLinesCommand(path string, n int) string {
	return fmt.Sprintf("tail -n %d %s 2>/dev/null", n, shellQuote(path))
}
