package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "docpage",
		Short:         "Cursor-based pagination over live document sources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "conf", "c", "", "config file path")

	rootCmd.AddCommand(
		NewPageCommand(&configFile),
		NewSeedCommand(&configFile),
		NewServeCommand(&configFile),
		NewVersionCommand(),
	)

	return rootCmd
}
