package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/parser"
	"github.com/slack-go/slack"
)

// maxCriticalShown caps the critical-area list in the chat message; the
// full detail lives in the uploaded HTML report.
const maxCriticalShown = 3

// statusEmoji maps the overall status to its message emoji.
var statusEmoji = map[parser.Status]string{
	parser.StatusPassed:         "✅",
	parser.StatusNeedsAttention: "⚠️",
	parser.StatusCritical:       "❌",
}

// BuildScanBlocks renders the condensed scan summary as Block Kit blocks.
func BuildScanBlocks(summary parser.Summary) []slack.Block {
	status := summary.OverallStatus()

	version := summary.Version
	if version == "" {
		version = "Unknown"
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType,
			fmt.Sprintf("%s Kube-bench Security Scan Results", statusEmoji[status]), true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*Status:* %s\n*Version:* %s", status, version), false, false), nil, nil),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Total Tests:*\n`%d`", summary.TotalTests), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Passed:*\n✅ `%d`", summary.Pass), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Failed:*\n❌ `%d`", summary.Fail), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Warnings:*\n⚠️ `%d`", summary.Warn), false, false),
		}, nil),
	}

	if len(summary.Critical) > 0 {
		blocks = append(blocks,
			slack.NewDividerBlock(),
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("*🚨 Critical Areas (>%d failures):*", parser.CriticalFailThreshold), false, false), nil, nil),
		)
		shown := summary.Critical
		if len(shown) > maxCriticalShown {
			shown = shown[:maxCriticalShown]
		}
		for _, cs := range shown {
			blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("• %s: %s\n  Failed: `%d` tests", cs.ID, cs.Text, cs.Fail), false, false), nil, nil))
		}
	}

	if len(summary.Controls) > 0 {
		blocks = append(blocks,
			slack.NewDividerBlock(),
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, "*📊 Control Summary:*", false, false), nil, nil),
		)
		for _, cs := range summary.Controls {
			emoji := "❌"
			if cs.PassRate == 100 {
				emoji = "✅"
			} else if cs.PassRate >= 80 {
				emoji = "⚠️"
			}
			blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("%s *%s: %s*\nPass: `%d` | Fail: `%d` | Warn: `%d` | Pass Rate: `%.1f%%`",
					emoji, cs.ID, cs.Text, cs.Pass, cs.Fail, cs.Warn, cs.PassRate), false, false), nil, nil))
		}
	}

	blocks = append(blocks,
		slack.NewDividerBlock(),
		slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("⏰ Scan completed: %s | 📄 Full HTML report attached below",
				time.Now().UTC().Format("2006-01-02 15:04:05 UTC")), false, false)),
	)

	return blocks
}

// BuildTestBlocks renders the connectivity self-test message.
func BuildTestBlocks() []slack.Block {
	return []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "🔒 Kube-bench Notifier Self-Test", true, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, "*Connection:*\n✅ Working", false, false),
			slack.NewTextBlockObject(slack.MarkdownType, "*Bot Status:*\n🤖 Ready for kube-bench", false, false),
		}, nil),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
			"This is a *test message* verifying the kube-bench Slack integration.", false, false), nil, nil),
	}
}

// SendSelfTest posts the self-test message to the configured channel.
func (n *Notifier) SendSelfTest(ctx context.Context) error {
	_, _, err := n.client.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText("Test message from kube-bench-notifier", false),
		slack.MsgOptionBlocks(BuildTestBlocks()...),
	)
	if err != nil {
		return classify(err)
	}
	n.logger.Infof("Self-test message sent to %s", n.channel)
	return nil
}
