package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/parser"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cannedAnalysis = `EXECUTIVE SUMMARY:
Overall Risk: HIGH
The cluster has serious control plane misconfigurations.

CRITICAL FINDINGS:
#1
Severity: Critical
Test: 1.2.16 Ensure that the --audit-log-path argument is set
WHY IT'S DANGEROUS: Without audit logs, intrusions go undetected.
Remediation: Set --audit-log-path on the API server.
Estimated time: 30 minutes

#2
Severity: Medium
Test: 4.1.1 Ensure that the kubelet service file permissions are set to 600
WHY IT'S DANGEROUS: World-readable unit files leak configuration.
Remediation: chmod 600 the kubelet unit file.
Estimated time: 10 minutes

REMEDIATION ROADMAP:
Fix audit logging first.

COMPLIANCE STATUS:
Partially compliant with CIS 1.6.`

// fakeOpenAI captures completion requests and serves scripted responses.
type fakeOpenAI struct {
	requests       []openai.ChatCompletionRequest
	rejectFirst    bool
	rejectAll      bool
	rejectWithAuth bool
}

func (f *fakeOpenAI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.requests = append(f.requests, req)

		if f.rejectWithAuth {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`)
			return
		}
		if f.rejectAll || (f.rejectFirst && len(f.requests) == 1) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error": {"message": "This model's maximum context length is 8192 tokens.", "type": "invalid_request_error", "code": "context_length_exceeded"}}`)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  req.Model,
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: cannedAnalysis}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func newTestAnalyzer(t *testing.T, fake *fakeOpenAI) *Analyzer {
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return New(Config{APIKey: "test-key", BaseURL: server.URL + "/v1"}, logger)
}

func failedChecks(n int) []parser.FailedCheck {
	checks := make([]parser.FailedCheck, 0, n)
	for i := 1; i <= n; i++ {
		checks = append(checks, parser.FailedCheck{
			ControlID:   "1",
			ControlText: "Master Node Security Configuration",
			TestNumber:  fmt.Sprintf("1.1.%d", i),
			TestDesc:    fmt.Sprintf("failing check %d", i),
			Remediation: "fix it",
		})
	}
	return checks
}

func TestAnalyze(t *testing.T) {
	fake := &fakeOpenAI{}
	a := newTestAnalyzer(t, fake)

	analysis, err := a.Analyze(context.Background(), failedChecks(5))
	require.NoError(t, err)

	assert.Equal(t, RiskHigh, analysis.RiskLevel)
	assert.False(t, analysis.Truncated)
	assert.Equal(t, 5, analysis.TotalFailures)
	assert.Equal(t, 5, analysis.AnalyzedCount)
	assert.Contains(t, analysis.RawText, "EXECUTIVE SUMMARY")

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, openai.GPT4, req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, "1.1.5")

	require.Len(t, analysis.Findings, 2)
	assert.Equal(t, 1, analysis.Findings[0].Rank)
	assert.Equal(t, "Critical", analysis.Findings[0].Severity)
	assert.Contains(t, analysis.Findings[0].Test, "1.2.16")
	assert.Contains(t, analysis.Findings[0].Impact, "audit logs")
	assert.Contains(t, analysis.Findings[0].Remediation, "--audit-log-path")
	assert.Equal(t, "30 minutes", analysis.Findings[0].TimeEstimate)
	assert.Equal(t, "Medium", analysis.Findings[1].Severity)
}

func TestAnalyzeRetriesWithTruncatedSet(t *testing.T) {
	fake := &fakeOpenAI{rejectFirst: true}
	a := newTestAnalyzer(t, fake)

	analysis, err := a.Analyze(context.Background(), failedChecks(30))
	require.NoError(t, err)

	assert.True(t, analysis.Truncated)
	assert.Equal(t, 30, analysis.TotalFailures)
	assert.Equal(t, TruncateLimit, analysis.AnalyzedCount)

	require.Len(t, fake.requests, 2)
	retry := fake.requests[1].Messages[1].Content
	// Exactly the first 15 in document order.
	assert.Contains(t, retry, `"1.1.1"`)
	assert.Contains(t, retry, `"1.1.15"`)
	assert.NotContains(t, retry, `"1.1.16"`)
	assert.NotContains(t, retry, `"1.1.30"`)
}

func TestAnalyzeNoRetryForSmallSets(t *testing.T) {
	fake := &fakeOpenAI{rejectAll: true}
	a := newTestAnalyzer(t, fake)

	_, err := a.Analyze(context.Background(), failedChecks(10))
	require.Error(t, err)
	assert.Len(t, fake.requests, 1, "no retry should happen for 15 or fewer failures")
}

func TestAnalyzeRetryAlsoFails(t *testing.T) {
	fake := &fakeOpenAI{rejectAll: true}
	a := newTestAnalyzer(t, fake)

	_, err := a.Analyze(context.Background(), failedChecks(30))
	require.Error(t, err)
	assert.Len(t, fake.requests, 2, "exactly one fallback attempt")
}

func TestAnalyzeAuthError(t *testing.T) {
	fake := &fakeOpenAI{rejectWithAuth: true}
	a := newTestAnalyzer(t, fake)

	_, err := a.Analyze(context.Background(), failedChecks(20))
	require.Error(t, err)
	assert.Len(t, fake.requests, 1, "auth errors must not trigger the truncation retry")
}

func TestAnalyzeNoFailedChecks(t *testing.T) {
	a := newTestAnalyzer(t, &fakeOpenAI{})
	_, err := a.Analyze(context.Background(), nil)
	require.Error(t, err)
}

func TestIsContextLengthError(t *testing.T) {
	assert.True(t, isContextLengthError(&openai.APIError{Code: "context_length_exceeded"}))
	assert.True(t, isContextLengthError(&openai.APIError{Message: "This model's maximum context length is 8192 tokens."}))
	assert.False(t, isContextLengthError(&openai.APIError{Code: "invalid_api_key"}))
	assert.False(t, isContextLengthError(fmt.Errorf("connection refused")))
}

func TestParseResponseFallbackRisk(t *testing.T) {
	t.Run("DerivedFromFindings", func(t *testing.T) {
		text := "#1\nSeverity: Medium\nTest: 1.1.1 something\n"
		analysis := parseResponse(text)
		assert.Equal(t, RiskMedium, analysis.RiskLevel)
	})

	t.Run("NoStructure", func(t *testing.T) {
		analysis := parseResponse("free-form text with no layout")
		assert.Equal(t, RiskMedium, analysis.RiskLevel)
		assert.Empty(t, analysis.Findings)
	})
}

func TestRenderHTML(t *testing.T) {
	analysis := parseResponse(cannedAnalysis)
	analysis.Truncated = true
	analysis.TotalFailures = 30
	analysis.AnalyzedCount = 15

	html := RenderHTML(analysis)

	assert.Contains(t, html, "AI Security Analysis Report")
	assert.Contains(t, html, `<span class="severity-critical">Critical</span>`)
	assert.Contains(t, html, `<span class="severity-medium">Medium</span>`)
	assert.Contains(t, html, `<span class="rank-number">#1</span>`)
	assert.Contains(t, html, "<h2>EXECUTIVE SUMMARY</h2>")
	assert.Contains(t, html, "30 total")
	assert.Contains(t, html, "truncation-note")
}

func TestRenderHTMLEscapesContent(t *testing.T) {
	analysis := &Analysis{RawText: "<script>alert(1)</script>", RiskLevel: RiskLow}
	html := RenderHTML(analysis)
	assert.NotContains(t, html, "<script>alert(1)</script>")
}

func TestRenderHTMLWithoutTruncation(t *testing.T) {
	analysis := parseResponse(cannedAnalysis)
	analysis.TotalFailures = 5
	analysis.AnalyzedCount = 5

	html := RenderHTML(analysis)
	assert.NotContains(t, html, "truncation-note")
	assert.Contains(t, strings.ToUpper(html), "HIGH")
}
