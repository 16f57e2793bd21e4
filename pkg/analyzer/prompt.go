package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/parser"
)

// systemPrompt sets the analysis contract: FAIL-only input, ranked output
// with a parseable layout.
const systemPrompt = `You are a Kubernetes security expert analyzing kube-bench scan results.

Generate a comprehensive security analysis that:
1. ONLY focuses on FAILED tests (ignore PASS/WARN/INFO)
2. Ranks findings from HIGHEST risk (fix ASAP) to LOWEST risk
3. Explains WHY each finding is dangerous and its business impact
4. Includes: Executive Summary, Prioritized Findings, Remediation Roadmap, Compliance Status

Use this exact layout so the report can be post-processed:
- Start the executive summary with a line "Overall Risk: HIGH|MEDIUM|LOW"
- For each finding emit a block starting with "#<rank>" followed by lines
  "Severity: Critical|High|Medium|Low", "Test: <number and description>",
  "WHY IT'S DANGEROUS: <impact>", "Remediation: <steps>", "Estimated time: <estimate>"

Return your analysis as clean text (not HTML). Rank by severity (1 being most critical).`

// buildPrompt builds the user prompt from the serialized failed checks.
// When limited is set the prompt discloses that only a subset of the total
// failures is being analyzed.
func buildPrompt(failed []parser.FailedCheck, totalFailures int, limited bool) (string, error) {
	serialized, err := json.MarshalIndent(failed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize failed checks: %w", err)
	}

	var b strings.Builder
	b.WriteString("Analyze ONLY the FAILED kube-bench tests and generate a security analysis report.\n\n")
	if limited {
		fmt.Fprintf(&b, "NOTE: Only analyzing the first %d of %d total failures due to token limits.\n\n", len(failed), totalFailures)
	}
	fmt.Fprintf(&b, "Total Failures: %d\n", totalFailures)
	fmt.Fprintf(&b, "Analyzing: %d failed tests\n\n", len(failed))
	b.WriteString("FAILED TESTS TO ANALYZE (analyze these ONLY, ignore all PASS/WARN/INFO):\n")
	b.Write(serialized)
	b.WriteString("\n\nProvide a comprehensive security analysis including:\n\n")
	b.WriteString("1. Executive Summary (overall risk assessment)\n")
	fmt.Fprintf(&b, "2. Critical Findings: a ranked list #1 to #%d, highest risk first, in the layout given above\n", len(failed))
	b.WriteString("3. Risk Assessment explaining why these findings are dangerous\n")
	b.WriteString("4. Remediation Roadmap with prioritized action items\n")
	b.WriteString("5. Compliance Status section\n\n")
	fmt.Fprintf(&b, "CRITICAL: List ALL %d findings in full detail. Do NOT use placeholders like \"[...continue...]\".\n", len(failed))
	return b.String(), nil
}
