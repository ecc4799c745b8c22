// Package cli implements the threatstage command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "threatstage",
	Short: "Generative attack scenario orchestration for security dashboards",
	Long:  "Models simulated attack scripts into structured threat scenarios — analysis, security events, affected cloud resources, dashboard metrics — and tests countermeasures against them.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default ~/.threatstage/config.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
