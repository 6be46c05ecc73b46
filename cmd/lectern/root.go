package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/version"
)

var (
	cfgFile string
	homeDir string
)

var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Document server for lazily browsing large paginated documents",
	Long: `Lectern serves page resources for large scanned documents so that
clients can browse thousand-page books without loading everything up front.

Resources are fetched on demand, cached with request coalescing, and
prefetched nearest-first around the reader's current page. Page images
can be served from disk, rendered from the source PDF, or proxied from
a remote origin.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ~/.lectern/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "lectern home directory (default: ~/.lectern)",
	)

	rootCmd.AddCommand(versionCmd)
}
