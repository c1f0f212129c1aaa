package cmd

import (
	"errors"
	"fmt"
	"os"
)

// Execute runs the root command and maps the error taxonomy onto process exit
// codes: 0 success, 2 partial deployment (some groups failed), 1 everything
// else.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errPartialDeploy) {
			_, _ = fmt.Fprintln(os.Stderr, err)
			exitFunc(2)
			return
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		exitFunc(1)
		return
	}
}
