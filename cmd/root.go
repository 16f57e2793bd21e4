// Package cmd provides the command line interface for the kube-bench
// notifier application
package cmd

import (
	"github.com/spf13/cobra"
)

// notifierOption is the global instance of NotifierOption
var notifierOption *NotifierOption

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kube-bench-notifier",
	Short: "Deliver kube-bench scan results to Slack",
	Long: `kube-bench-notifier waits for a kube-bench JSON result file, turns it into
an HTML report with an optional AI-generated security analysis, and posts
everything to a Slack channel.

It is meant to run as a sidecar or follow-up job next to a kube-bench scan:
kube-bench writes its JSON output into a shared directory and this tool picks
up the newest file once it is fully written.

Example usage:
  # Wait for results and notify (token and channel from the environment)
  SLACK_BOT_TOKEN=xoxb-... kube-bench-notifier --results-dir /var/run/kube-bench

  # Explicit flags, no AI analysis, local copy of the report
  kube-bench-notifier --slack-token xoxb-... --slack-channel "#security" \
    --ai-enabled=false --output report.html

  # Verify the Slack integration without running a scan
  kube-bench-notifier selftest`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return notifierOption.Run(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
