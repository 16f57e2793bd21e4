// Package config provides configuration management for the kube-bench
// notifier. All options are resolved once at startup (flags first, then
// environment variables, then an optional config file) into an immutable
// Config value passed to each component.
package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config holds the resolved pipeline configuration.
type Config struct {
	// Slack configuration
	SlackToken   string `json:"slack_token" yaml:"slack_token" mapstructure:"slack-token"`
	SlackChannel string `json:"slack_channel" yaml:"slack_channel" mapstructure:"slack-channel"`

	// Scanner hand-off configuration
	ResultsDir  string        `json:"results_dir" yaml:"results_dir" mapstructure:"results-dir"`
	WaitTimeout time.Duration `json:"wait_timeout" yaml:"wait_timeout" mapstructure:"wait-timeout"`

	// AI analysis configuration
	AIEnabled     bool   `json:"ai_enabled" yaml:"ai_enabled" mapstructure:"ai-enabled"`
	OpenAIAPIKey  string `json:"openai_api_key" yaml:"openai_api_key" mapstructure:"openai-api-key"`
	OpenAIModel   string `json:"openai_model" yaml:"openai_model" mapstructure:"openai-model"`
	OpenAIBaseURL string `json:"openai_base_url,omitempty" yaml:"openai_base_url,omitempty" mapstructure:"openai-base-url"`

	// Optional local copy of the HTML report
	OutputFile string `json:"output_file,omitempty" yaml:"output_file,omitempty" mapstructure:"output"`

	// Logging configuration
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty" mapstructure:"verbose"`
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig() *Config {
	return &Config{
		SlackChannel: "#kube-bench",
		ResultsDir:   "/tmp/kube-bench-results",
		WaitTimeout:  300 * time.Second,
		AIEnabled:    true,
		OpenAIModel:  "gpt-4",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SlackToken == "" {
		return ErrMissingSlackToken
	}
	if c.SlackChannel == "" {
		return ErrMissingSlackChannel
	}
	if c.ResultsDir == "" {
		return ErrMissingResultsDir
	}
	if c.WaitTimeout <= 0 {
		return ErrInvalidWaitTimeout
	}
	return nil
}

// AIConfigured reports whether the optional AI analysis should run.
func (c *Config) AIConfigured() bool {
	return c.AIEnabled && c.OpenAIAPIKey != ""
}

// DebugString returns a JSON representation of the config with sensitive
// information redacted
func (c *Config) DebugString() string {
	debugConfig := *c
	if debugConfig.SlackToken != "" {
		debugConfig.SlackToken = "[REDACTED]"
	}
	if debugConfig.OpenAIAPIKey != "" {
		debugConfig.OpenAIAPIKey = "[REDACTED]"
	}

	data, err := json.MarshalIndent(debugConfig, "", "  ")
	if err != nil {
		return fmt.Sprintf("failed to marshal config: %v", err)
	}
	return string(data)
}
