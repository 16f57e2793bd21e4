package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/config"
	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/notifier"
	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/pipeline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// NotifierOption option for the kube-bench notifier command
type NotifierOption struct {
	*logrus.Logger
	Config *config.Config

	// String field for CLI parsing (will be converted to Config)
	maxWaitSecondsStr string
}

// NewNotifierOption creates a new NotifierOption instance
func NewNotifierOption() *NotifierOption {
	return &NotifierOption{
		Logger: logrus.New(),
		Config: config.NewDefaultConfig(),
	}
}

// AddFlags add flags to options
func (o *NotifierOption) AddFlags(flags *pflag.FlagSet) {
	// Slack configuration
	flags.StringVar(&o.Config.SlackToken, "slack-token", "", "Slack bot token (xoxb-...)")
	flags.StringVar(&o.Config.SlackChannel, "slack-channel", o.Config.SlackChannel, "Slack channel to post results to")

	// Scanner hand-off configuration
	flags.StringVar(&o.Config.ResultsDir, "results-dir", o.Config.ResultsDir, "Directory watched for kube-bench JSON result files")
	flags.DurationVar(&o.Config.WaitTimeout, "wait-timeout", o.Config.WaitTimeout, "How long to wait for a result file before giving up")

	// AI analysis configuration
	flags.BoolVar(&o.Config.AIEnabled, "ai-enabled", o.Config.AIEnabled, "Enable AI analysis of failed checks")
	flags.StringVar(&o.Config.OpenAIAPIKey, "openai-api-key", "", "OpenAI API key (analysis is skipped when unset)")
	flags.StringVar(&o.Config.OpenAIModel, "openai-model", o.Config.OpenAIModel, "OpenAI model used for the analysis")
	flags.StringVar(&o.Config.OpenAIBaseURL, "openai-base-url", "", "OpenAI-compatible API base URL (optional)")

	// Output and logging
	flags.StringVar(&o.Config.OutputFile, "output", "", "Also write the HTML report to this local file")
	flags.BoolVar(&o.Config.Verbose, "verbose", false, "Enable verbose logging (debug level logs)")
}

// Run executes the scan notification pipeline
func (o *NotifierOption) Run(cmd *cobra.Command, args []string) error {
	if err := o.initialize(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return pipeline.New(o.Config, o.Logger).Run(ctx)
}

// RunSelfTest verifies the Slack credentials by posting a test message
func (o *NotifierOption) RunSelfTest(cmd *cobra.Command, args []string) error {
	if err := o.initialize(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n := notifier.New(o.Config.SlackToken, o.Config.SlackChannel, o.Logger)
	return n.SendSelfTest(ctx)
}

// readAllFromViper reads all configuration values from viper
// This includes environment variables with KUBEBENCH_ prefix
func (o *NotifierOption) readAllFromViper() {
	if err := viper.Unmarshal(o.Config); err != nil {
		o.Warnf("Failed to unmarshal config from viper: %v", err)
	}

	// Clean up string values by trimming whitespace and newlines
	o.Config.SlackToken = strings.TrimSpace(o.Config.SlackToken)
	o.Config.SlackChannel = strings.TrimSpace(o.Config.SlackChannel)
	o.Config.ResultsDir = strings.TrimSpace(o.Config.ResultsDir)
	o.Config.OpenAIAPIKey = strings.TrimSpace(o.Config.OpenAIAPIKey)
	o.Config.OpenAIModel = strings.TrimSpace(o.Config.OpenAIModel)
	o.Config.OpenAIBaseURL = strings.TrimSpace(o.Config.OpenAIBaseURL)

	// MAX_WAIT_TIME is a plain number of seconds, kept for compatibility
	// with existing deployments, so it cannot map onto the duration field
	// directly.
	if o.maxWaitSecondsStr == "" {
		o.maxWaitSecondsStr = strings.TrimSpace(viper.GetString("max-wait-time"))
	}
}

// parseStringFields converts string CLI fields to proper types in config
func (o *NotifierOption) parseStringFields() error {
	if o.maxWaitSecondsStr == "" {
		return nil
	}
	seconds, err := strconv.Atoi(o.maxWaitSecondsStr)
	if err != nil {
		return fmt.Errorf("invalid MAX_WAIT_TIME value %q: %w", o.maxWaitSecondsStr, err)
	}
	o.Config.WaitTimeout = time.Duration(seconds) * time.Second
	return nil
}

// initialize resolves, validates and logs the configuration
func (o *NotifierOption) initialize() error {
	o.readAllFromViper()
	if err := o.parseStringFields(); err != nil {
		return err
	}

	if o.Config.Verbose {
		o.SetLevel(logrus.DebugLevel)
		o.Debugf("Resolved configuration:\n%s", o.Config.DebugString())
	} else {
		o.SetLevel(logrus.InfoLevel)
	}

	return o.Config.Validate()
}
