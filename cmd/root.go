// Package cmd implements the wrfup CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	presetPath = "wrfup.yaml"

	appVersion = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "wrfup",
	Short: "wrfup — install, configure, and compile WRF and WPS",
	Long: "wrfup walks through a complete WRF installation on this machine:\n" +
		"system dependencies, build environment, source download, configure,\n" +
		"compile, and verification. It is interactive; every decision is a\n" +
		"prompt with a sensible default.",
	SilenceUsage: true,
	RunE:         runInstall,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&presetPath, "config", "wrfup.yaml", "preset file path")

	rootCmd.AddCommand(probeCmd)
}

// SetVersionInfo sets the version and commit for display.
func SetVersionInfo(version, commit string) {
	appVersion = version
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("wrfup %s (commit: %s)\n", version, commit))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
