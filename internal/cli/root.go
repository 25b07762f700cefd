// Package cli is the cobra command tree for the kbcore binary, in the
// style of the teacher's internal/cmd package: a package-scope rootCmd,
// subcommands registered from their own init(), flags bound to
// package-scope vars.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "kbcore",
	Short: "Client-side state engine for the KB-Unified chat aggregator",
	Long: `kbcore runs the message classification, virtual-buffer routing, and
read-state propagation engine that backs KB-Unified's keyboard-driven
inbox. It owns no UI: it connects a transport, applies the command API,
and emits a snapshot after every mutation for a UI layer to render.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "kbcore.toml", "path to the TOML config file")
}

// Execute runs the command tree; main's only job is to call this and
// exit with its error.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}
