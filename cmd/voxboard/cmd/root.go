package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is the release version stamped into the banner.
const Version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "voxboard",
	Short: "VoxBoard is the voice-command dashboard backend",
	Long: `Backend service for the VoxBoard voice-command dashboard: user accounts,
session authentication, and dashboard configuration storage.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
