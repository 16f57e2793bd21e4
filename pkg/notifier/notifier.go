// Package notifier delivers scan results to Slack: one Block Kit message
// plus the HTML artifacts as file uploads.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/parser"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

var (
	// ErrAuth indicates the bot credential is invalid or expired.
	ErrAuth = errors.New("slack authentication failed")
	// ErrChannelUnavailable indicates the target channel cannot be reached
	// (not found, not joined, archived, or missing a permission scope).
	ErrChannelUnavailable = errors.New("slack channel unavailable")
)

// Error strings returned by the Slack API, per failure class.
var (
	authErrors = []string{
		"invalid_auth", "not_authed", "token_revoked", "token_expired", "account_inactive",
	}
	channelErrors = []string{
		"channel_not_found", "not_in_channel", "is_archived", "channel_is_archived", "missing_scope",
	}
)

// Receipt describes what was posted where.
type Receipt struct {
	Channel          string
	MessageTimestamp string
	FileIDs          []string
}

// Notifier posts messages and uploads artifacts to a single channel.
type Notifier struct {
	client  *slack.Client
	channel string
	logger  *logrus.Logger
}

// New creates a Notifier for the given bot token and channel. Extra slack
// options are forwarded to the client (tests inject an API URL this way).
func New(token, channel string, logger *logrus.Logger, opts ...slack.Option) *Notifier {
	if logger == nil {
		logger = logrus.New()
	}
	return &Notifier{
		client:  slack.New(token, opts...),
		channel: channel,
		logger:  logger,
	}
}

// PostText sends a plain text message, used for startup and failure notices.
func (n *Notifier) PostText(ctx context.Context, text string) error {
	_, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return classify(err)
	}
	n.logger.Infof("Message sent to %s", n.channel)
	return nil
}

// Publish posts the scan summary message and uploads the HTML report,
// plus the AI analysis artifact when one was produced. Re-running re-posts;
// the surrounding Job runs this at most once per invocation.
func (n *Notifier) Publish(ctx context.Context, summary parser.Summary, reportHTML, analysisHTML string) (*Receipt, error) {
	fallback := fmt.Sprintf("Kube-bench Security Scan Results - %d tests, %d passed, %d failed",
		summary.TotalTests, summary.Pass, summary.Fail)

	_, ts, err := n.client.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionBlocks(BuildScanBlocks(summary)...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to post scan message: %w", classify(err))
	}
	n.logger.Infof("Scan report message sent to %s", n.channel)

	receipt := &Receipt{Channel: n.channel, MessageTimestamp: ts}

	fileID, err := n.uploadHTML(ctx, reportHTML, "kube-bench-report.html", "Kube-bench Security Report")
	if err != nil {
		return nil, fmt.Errorf("failed to upload scan report: %w", classify(err))
	}
	receipt.FileIDs = append(receipt.FileIDs, fileID)

	if analysisHTML != "" {
		fileID, err := n.uploadHTML(ctx, analysisHTML, "ai-security-analysis.html", "AI Security Analysis")
		if err != nil {
			return nil, fmt.Errorf("failed to upload AI analysis: %w", classify(err))
		}
		receipt.FileIDs = append(receipt.FileIDs, fileID)
	}

	return receipt, nil
}

func (n *Notifier) uploadHTML(ctx context.Context, content, filename, title string) (string, error) {
	file, err := n.client.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Channel:  n.channel,
		Content:  content,
		FileSize: len(content),
		Filename: filename,
		Title:    title,
	})
	if err != nil {
		return "", err
	}
	n.logger.Infof("Uploaded %s to %s", filename, n.channel)
	return file.ID, nil
}

// classify maps Slack API error strings onto the notifier's error taxonomy
// so callers can distinguish credential problems from channel problems.
func classify(err error) error {
	msg := err.Error()
	for _, s := range authErrors {
		if strings.Contains(msg, s) {
			return fmt.Errorf("%w: %s", ErrAuth, msg)
		}
	}
	for _, s := range channelErrors {
		if strings.Contains(msg, s) {
			return fmt.Errorf("%w: %s", ErrChannelUnavailable, msg)
		}
	}
	return err
}
