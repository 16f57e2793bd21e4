// Package analyzer sends failed benchmark checks to an OpenAI completion
// endpoint and turns the response into a risk analysis artifact.
//
// The only retry behavior is the context-window fallback: when the API
// rejects the request as too large, the analysis is retried once with the
// first 15 failed checks in document order and marked as truncated. There
// is no backoff and no other retry.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/parser"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultModel is the completion model used when none is configured.
	DefaultModel = openai.GPT4
	// DefaultMaxTokens bounds the completion size.
	DefaultMaxTokens = 2500
	// TruncateLimit is how many failed checks the fallback request keeps.
	TruncateLimit = 15
)

// RiskLevel is the overall risk classification of a scan.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Finding is one ranked issue extracted from the AI response.
type Finding struct {
	Rank         int
	Severity     string
	Test         string
	Impact       string
	Remediation  string
	TimeEstimate string
}

// Analysis is the result of one AI analysis call.
type Analysis struct {
	RiskLevel     RiskLevel
	Findings      []Finding
	RawText       string
	Truncated     bool
	TotalFailures int
	AnalyzedCount int
}

// Config holds the analyzer settings resolved from configuration.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// Analyzer wraps the OpenAI client.
type Analyzer struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *logrus.Logger
}

// New creates an Analyzer from the given configuration.
func New(cfg Config, logger *logrus.Logger) *Analyzer {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = logrus.New()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Analyzer{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

// Analyze requests a risk analysis for the given failed checks. The caller
// guarantees the slice holds FAIL-status checks only, in document order.
func (a *Analyzer) Analyze(ctx context.Context, failed []parser.FailedCheck) (*Analysis, error) {
	if len(failed) == 0 {
		return nil, errors.New("no failed checks to analyze")
	}

	a.logger.Info("Sending failed checks to OpenAI for risk analysis")

	prompt, err := buildPrompt(failed, len(failed), false)
	if err != nil {
		return nil, err
	}

	text, err := a.complete(ctx, prompt)
	if err == nil {
		analysis := parseResponse(text)
		analysis.TotalFailures = len(failed)
		analysis.AnalyzedCount = len(failed)
		return analysis, nil
	}

	if !isContextLengthError(err) || len(failed) <= TruncateLimit {
		return nil, fmt.Errorf("AI analysis failed: %w", err)
	}

	// Request too large: retry once with the first TruncateLimit failures,
	// in original document order, as a fresh conversation.
	a.logger.Warnf("Token limit exceeded, retrying with the first %d findings", TruncateLimit)

	limited := failed[:TruncateLimit]
	prompt, err = buildPrompt(limited, len(failed), true)
	if err != nil {
		return nil, err
	}

	text, err = a.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("AI analysis retry failed: %w", err)
	}

	analysis := parseResponse(text)
	analysis.Truncated = true
	analysis.TotalFailures = len(failed)
	analysis.AnalyzedCount = len(limited)
	return analysis, nil
}

// complete performs a single chat completion call.
func (a *Analyzer) complete(ctx context.Context, userPrompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
		MaxTokens:   a.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// isContextLengthError reports whether the API rejected the request for
// exceeding the model's context window.
func isContextLengthError(err error) bool {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if code, ok := apiErr.Code.(string); ok && code == "context_length_exceeded" {
		return true
	}
	return strings.Contains(apiErr.Message, "maximum context length")
}
