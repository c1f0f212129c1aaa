package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// log is the package-wide logger. Every user-visible progress message and
// failure goes through it so unattended runs stay diagnosable from the log
// file after the fact.
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
}

// initLogging tees the logger into a persistent log file in addition to
// stderr. Invoked from the root command before any subcommand runs; a path of
// "" leaves the logger on stderr only.
func initLogging(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}
