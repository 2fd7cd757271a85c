// Command plugify-host is a minimal demo CLI wiring internal/config's
// layered Options into a plugify.Engine: it is not part of the runtime's
// public contract, just a runnable harness for exercising it from a
// terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "plugify-host",
		Short:         "plugify-host runs, lists, and reports on a Plugify extension tree",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to plugify.yaml (defaults to ./plugify.yaml if present)")

	root.AddCommand(
		newRunCmd(&configFile),
		newListCmd(&configFile),
		newReportCmd(&configFile),
	)
	return root
}
