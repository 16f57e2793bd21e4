package analyzer

import (
	"fmt"
	"html/template"
	"regexp"
	"time"
)

var (
	severityCriticalRegexp = regexp.MustCompile(`(?i)Severity\s*:\s*Critical`)
	severityHighRegexp     = regexp.MustCompile(`(?i)Severity\s*:\s*High`)
	severityMediumRegexp   = regexp.MustCompile(`(?i)Severity\s*:\s*Medium`)
	severityLowRegexp      = regexp.MustCompile(`(?i)Severity\s*:\s*Low`)
	sectionHeaderRegexp    = regexp.MustCompile(`(?m)^(EXECUTIVE SUMMARY|CRITICAL FINDINGS|RISK ASSESSMENT|REMEDIATION ROADMAP|COMPLIANCE STATUS)\s*:?`)
	rankRegexp             = regexp.MustCompile(`(?m)^\s*#(\d+)\b`)
	// Labels are matched against escaped text, hence the &#39; apostrophe.
	labelRegexp = regexp.MustCompile(`(Test:|WHY IT&#39;S DANGEROUS:|Remediation:|Estimated time:)`)
)

// RenderHTML wraps the analysis text in a styled, self-contained document
// with severity badges and, when the finding set was cut down, a
// truncation disclosure at the top.
func RenderHTML(analysis *Analysis) string {
	content := template.HTMLEscapeString(analysis.RawText)
	content = addSeverityBadges(content)

	var note string
	if analysis.Truncated {
		note = fmt.Sprintf(`<div class="truncation-note">NOTE: Due to the large number of findings (%d total), this report analyzes the first %d issues in scan order.</div>`,
			analysis.TotalFailures, analysis.AnalyzedCount)
	}

	return fmt.Sprintf(analysisTemplate,
		analysis.RiskLevel,
		time.Now().UTC().Format("2006-01-02 15:04:05 UTC"),
		note,
		content,
	)
}

// addSeverityBadges decorates an already-escaped response with badge and
// label markup.
func addSeverityBadges(text string) string {
	text = severityCriticalRegexp.ReplaceAllString(text, `<span class="severity-critical">Critical</span>`)
	text = severityHighRegexp.ReplaceAllString(text, `<span class="severity-high">High</span>`)
	text = severityMediumRegexp.ReplaceAllString(text, `<span class="severity-medium">Medium</span>`)
	text = severityLowRegexp.ReplaceAllString(text, `<span class="severity-low">Low</span>`)
	text = sectionHeaderRegexp.ReplaceAllString(text, `<h2>$1</h2>`)
	text = rankRegexp.ReplaceAllString(text, `<span class="rank-number">#$1</span>`)
	text = labelRegexp.ReplaceAllString(text, `<span class="label">$1</span>`)
	return text
}

const analysisTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>AI Security Analysis Report</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 20px;
            background: #f5f5f5;
            line-height: 1.6;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            padding: 30px;
            border-radius: 10px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
        }
        h1 {
            color: #333;
            border-bottom: 3px solid #7b42f6;
            padding-bottom: 10px;
        }
        h2 {
            color: #7b42f6;
            margin-top: 30px;
            font-size: 1.5em;
        }
        .risk-level {
            display: inline-block;
            padding: 5px 12px;
            border-radius: 3px;
            background: #2d3748;
            color: white;
            font-weight: bold;
        }
        .truncation-note {
            background: #fff8f0;
            border-left: 4px solid #ff9900;
            padding: 12px;
            margin: 15px 0;
            border-radius: 4px;
            font-weight: bold;
        }
        .severity-critical {
            background: #ff4444;
            color: white;
            padding: 3px 8px;
            border-radius: 3px;
            font-weight: bold;
            display: inline-block;
        }
        .severity-high {
            background: #ff9900;
            color: white;
            padding: 3px 8px;
            border-radius: 3px;
            font-weight: bold;
            display: inline-block;
        }
        .severity-medium {
            background: #ffcc00;
            color: black;
            padding: 3px 8px;
            border-radius: 3px;
            font-weight: bold;
            display: inline-block;
        }
        .severity-low {
            background: #44ff44;
            color: black;
            padding: 3px 8px;
            border-radius: 3px;
            font-weight: bold;
            display: inline-block;
        }
        .rank-number {
            font-size: 1.3em;
            font-weight: bold;
            color: #7b42f6;
            display: inline-block;
            margin-right: 10px;
        }
        .label {
            font-weight: bold;
            color: #333;
        }
        .timestamp {
            color: #666;
            font-size: 0.9em;
            margin-bottom: 20px;
        }
        .content-text {
            white-space: pre-wrap;
            line-height: 1.8;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>AI Security Analysis Report</h1>
        <p>Overall risk: <span class="risk-level">%s</span></p>
        <div class="timestamp">Generated: %s</div>
        %s
        <div class="content-text">%s</div>
    </div>
</body>
</html>`
