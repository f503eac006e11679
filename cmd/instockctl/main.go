// Command instockctl administers an Instock deployment: schema migrations,
// catalog imports and bounding-box checks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "instockctl",
		Short:         "Instock administration tool",
		Long:          `Apply database migrations, import store and item catalogs, and inspect search bounds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newImportCmd(), newBoundsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
