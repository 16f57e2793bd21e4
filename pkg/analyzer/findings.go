package analyzer

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	overallRiskRegexp = regexp.MustCompile(`(?im)^\s*overall risk(?:\s*(?:level|assessment))?\s*[:\-]\s*(critical|high|medium|low)`)
	findingRegexp     = regexp.MustCompile(`(?m)^\s*#(\d+)\b`)
	severityRegexp    = regexp.MustCompile(`(?i)^severity\s*[:\-]\s*(critical|high|medium|low)`)
)

// parseResponse extracts the structured pieces out of the model's text
// response. The raw text is always kept; parsing is best-effort since the
// layout is only requested, not guaranteed.
func parseResponse(text string) *Analysis {
	analysis := &Analysis{
		RawText:  strings.TrimSpace(text),
		Findings: parseFindings(text),
	}
	analysis.RiskLevel = parseRiskLevel(text, analysis.Findings)
	return analysis
}

// parseRiskLevel reads the declared overall risk, falling back to the
// highest finding severity when the summary line is missing.
func parseRiskLevel(text string, findings []Finding) RiskLevel {
	if m := overallRiskRegexp.FindStringSubmatch(text); m != nil {
		switch strings.ToUpper(m[1]) {
		case "CRITICAL", "HIGH":
			return RiskHigh
		case "MEDIUM":
			return RiskMedium
		case "LOW":
			return RiskLow
		}
	}

	level := RiskLow
	for _, f := range findings {
		switch strings.ToUpper(f.Severity) {
		case "CRITICAL", "HIGH":
			return RiskHigh
		case "MEDIUM":
			level = RiskMedium
		}
	}
	if len(findings) == 0 {
		return RiskMedium
	}
	return level
}

// parseFindings splits the response into #N blocks and pulls the labeled
// fields out of each one.
func parseFindings(text string) []Finding {
	indexes := findingRegexp.FindAllStringSubmatchIndex(text, -1)
	var findings []Finding

	for i, loc := range indexes {
		end := len(text)
		if i+1 < len(indexes) {
			end = indexes[i+1][0]
		}
		block := text[loc[0]:end]

		rank, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}

		finding := Finding{Rank: rank}
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if m := severityRegexp.FindStringSubmatch(line); m != nil {
				finding.Severity = strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
				continue
			}
			switch {
			case hasLabel(line, "Test:"):
				finding.Test = labelValue(line, "Test:")
			case hasLabel(line, "WHY IT'S DANGEROUS:"):
				finding.Impact = labelValue(line, "WHY IT'S DANGEROUS:")
			case hasLabel(line, "Remediation:"):
				finding.Remediation = labelValue(line, "Remediation:")
			case hasLabel(line, "Estimated time:"):
				finding.TimeEstimate = labelValue(line, "Estimated time:")
			}
		}
		findings = append(findings, finding)
	}
	return findings
}

func hasLabel(line, label string) bool {
	return len(line) >= len(label) && strings.EqualFold(line[:len(label)], label)
}

func labelValue(line, label string) string {
	return strings.TrimSpace(line[len(label):])
}
