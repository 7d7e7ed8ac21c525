package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "freefinder",
	Short: "Backend API server for the FreeFinder marketplace",
	Long: `Backend API server for the FreeFinder classifieds marketplace:
signup with email verification, listings, profiles, and reviews.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
