package cmd

import (
	"github.com/spf13/cobra"
)

// selftestCmd posts a test message to verify the Slack configuration
// without waiting for a scan.
var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Post a test message to verify the Slack configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return notifierOption.RunSelfTest(cmd, args)
	},
}
