package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variables
const EnvPrefix = "KUBEBENCH"

var cfgFile string

func init() {
	cobra.OnInitialize(initConfig)

	// Initialize NotifierOption and add flags
	notifierOption = NewNotifierOption()
	notifierOption.AddFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (optional, flags and environment take precedence)")

	// Bind flags to viper for environment variable support
	viper.BindPFlags(rootCmd.PersistentFlags())

	// Legacy environment variable names, kept so existing deployments keep
	// working without renaming their secrets.
	viper.BindEnv("slack-token", "KUBEBENCH_SLACK_TOKEN", "SLACK_BOT_TOKEN")
	viper.BindEnv("slack-channel", "KUBEBENCH_SLACK_CHANNEL", "SLACK_CHANNEL")
	viper.BindEnv("results-dir", "KUBEBENCH_RESULTS_DIR", "KUBE_BENCH_OUTPUT_DIR")
	viper.BindEnv("max-wait-time", "MAX_WAIT_TIME")
	viper.BindEnv("openai-api-key", "KUBEBENCH_OPENAI_API_KEY", "OPENAI_API_KEY")

	rootCmd.AddCommand(selftestCmd)
}

func initConfig() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			cobra.CheckErr(err)
		}
	}
}
