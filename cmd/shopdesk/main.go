package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "shopdesk",
	Short: "shopdesk - admin backend for a multilingual storefront",
	Long: `shopdesk serves the admin dashboard, the page-section builder and the
storefront read API. Configuration comes from the environment
(ADMIN_PASSWORD, ADMIN_SESSION_SECRET, DATABASE_PATH, ...).`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the shopdesk version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shopdesk %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, seedCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
