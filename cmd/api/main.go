package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "assetfin",
		Short:         "Asset depreciation, loan amortization and valuation API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (yaml); ASSETFIN_* env vars override it")

	root.AddCommand(
		newServeCommand(&configPath),
		newMigrateCommand(&configPath),
		newRefreshCommand(&configPath),
	)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
