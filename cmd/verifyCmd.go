package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// verifyCmd validates the build tree locally: it runs the scanner and prints
// what would deploy where, flagging protected destinations, without touching
// the network.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Scan the build tree and list install items (no connection)",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := scanBuildTree(cfgBuildDir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		refused := 0
		for _, it := range items {
			note := ""
			if isProtectedPath(it.destination) {
				note = "  [REFUSED: protected path]"
				refused++
			}
			_, _ = fmt.Fprintf(out, "%-10s %s -> %s%s\n", it.kind, it.source, it.destination, note)
		}
		groups := groupItems(items)
		_, _ = fmt.Fprintf(out, "%d item(s) in %d group(s), %d refused\n", len(items), len(groups), refused)
		return nil
	},
}
