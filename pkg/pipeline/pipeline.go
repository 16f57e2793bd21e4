// Package pipeline wires the watcher, parser, report, analyzer and
// notifier into the one-shot job the binary runs: wait for a kube-bench
// result file, summarize it, render the reports and deliver them to Slack.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/analyzer"
	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/config"
	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/notifier"
	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/parser"
	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/report"
	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/watcher"
	"github.com/sirupsen/logrus"
)

// Pipeline runs a single scan-to-notification cycle.
type Pipeline struct {
	cfg      *config.Config
	logger   *logrus.Logger
	watcher  *watcher.Watcher
	notifier *notifier.Notifier
	analyzer *analyzer.Analyzer
}

// New assembles a Pipeline from a validated config.
func New(cfg *config.Config, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
	}

	p := &Pipeline{
		cfg:      cfg,
		logger:   logger,
		watcher:  watcher.New(cfg.ResultsDir, cfg.WaitTimeout, logger),
		notifier: notifier.New(cfg.SlackToken, cfg.SlackChannel, logger),
	}
	if cfg.AIConfigured() {
		p.analyzer = analyzer.New(analyzer.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		}, logger)
	}
	return p
}

// NewWithComponents builds a Pipeline from pre-built components. Tests use
// this to point the notifier and analyzer at local fakes.
func NewWithComponents(cfg *config.Config, logger *logrus.Logger, w *watcher.Watcher, n *notifier.Notifier, a *analyzer.Analyzer) *Pipeline {
	if logger == nil {
		logger = logrus.New()
	}
	return &Pipeline{cfg: cfg, logger: logger, watcher: w, notifier: n, analyzer: a}
}

// Run executes the full cycle. A watcher timeout or a permanently
// malformed result file is reported to the channel before the error is
// returned; an analyzer failure only downgrades the notification to one
// without the AI artifact.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("Starting kube-bench notification pipeline")
	p.logger.Debugf("Resolved configuration:\n%s", p.cfg.DebugString())

	if err := p.notifier.PostText(ctx, "🔒 Kube-bench scan started, monitoring for results..."); err != nil {
		return fmt.Errorf("failed to send startup notification: %w", err)
	}

	scanReport, err := p.watcher.Wait(ctx)
	if err != nil {
		p.reportFailure(ctx, err)
		return err
	}

	summary := parser.Summarize(scanReport)
	p.logger.Infof("Scan parsed: %d tests, %d passed, %d failed, %d warnings, status %s",
		summary.TotalTests, summary.Pass, summary.Fail, summary.Warn, summary.OverallStatus())

	reportHTML, err := report.Generate(scanReport, summary)
	if err != nil {
		return fmt.Errorf("failed to generate HTML report: %w", err)
	}

	analysisHTML := p.runAnalysis(ctx, scanReport)

	if p.cfg.OutputFile != "" {
		if err := os.WriteFile(p.cfg.OutputFile, []byte(reportHTML), 0o644); err != nil {
			return fmt.Errorf("failed to write report to %s: %w", p.cfg.OutputFile, err)
		}
		p.logger.Infof("HTML report written to %s", p.cfg.OutputFile)
	}

	receipt, err := p.notifier.Publish(ctx, summary, reportHTML, analysisHTML)
	if err != nil {
		return err
	}
	p.logger.Infof("Notification delivered to %s (message %s, %d files)",
		receipt.Channel, receipt.MessageTimestamp, len(receipt.FileIDs))
	return nil
}

// runAnalysis produces the AI analysis artifact, or "" when analysis is
// disabled, unnecessary, or failed.
func (p *Pipeline) runAnalysis(ctx context.Context, scanReport *parser.Report) string {
	if p.analyzer == nil {
		p.logger.Debug("AI analysis disabled, skipping")
		return ""
	}
	failed := parser.FailedChecks(scanReport)
	if len(failed) == 0 {
		p.logger.Info("No failed checks, skipping AI analysis")
		return ""
	}

	analysis, err := p.analyzer.Analyze(ctx, failed)
	if err != nil {
		p.logger.Warnf("AI analysis failed, continuing without it: %v", err)
		return ""
	}
	p.logger.Infof("AI analysis completed: risk %s, %d of %d failures analyzed",
		analysis.RiskLevel, analysis.AnalyzedCount, analysis.TotalFailures)
	return analyzer.RenderHTML(analysis)
}

// reportFailure posts a failure notice for errors the channel should hear
// about. Posting is best effort, the original error is what gets returned.
func (p *Pipeline) reportFailure(ctx context.Context, err error) {
	var text string
	switch {
	case errors.Is(err, watcher.ErrTimeout):
		text = fmt.Sprintf("⚠️ Kube-bench scan timed out: no results appeared in %s within %s",
			p.cfg.ResultsDir, p.cfg.WaitTimeout)
	case errors.Is(err, parser.ErrMalformedReport):
		text = fmt.Sprintf("⚠️ Kube-bench produced an unreadable result file: %v", err)
	default:
		return
	}
	if postErr := p.notifier.PostText(ctx, text); postErr != nil {
		p.logger.Warnf("Failed to post failure notice: %v", postErr)
	}
}
