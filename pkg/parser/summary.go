package parser

// CriticalFailThreshold is the per-control fail count above which a control
// is listed as a critical area.
const CriticalFailThreshold = 5

// Status is the overall scan classification derived from a Summary.
type Status string

const (
	// StatusPassed no failed checks.
	StatusPassed Status = "PASSED"
	// StatusNeedsAttention failures present, none concentrated enough to be critical.
	StatusNeedsAttention Status = "NEEDS ATTENTION"
	// StatusCritical at least one control exceeded the critical fail threshold.
	StatusCritical Status = "CRITICAL"
)

// ControlSummary holds derived counts for one control section.
type ControlSummary struct {
	ID       string
	Text     string
	NodeType string
	Total    int
	Pass     int
	Fail     int
	Warn     int
	Info     int
	PassRate float64
}

// Summary is the derived aggregate over a whole Report.
type Summary struct {
	TotalTests int
	Pass       int
	Fail       int
	Warn       int
	Info       int
	PassRate   float64
	Version    string
	Controls   []ControlSummary
	Critical   []ControlSummary
}

// Summarize computes a Summary from a Report. Counts are recomputed from
// the individual checks, so the per-control sums always match the overall
// totals regardless of what the source document claims. Control ordering
// is preserved from the document.
func Summarize(report *Report) Summary {
	summary := Summary{}

	for _, control := range report.Controls {
		if summary.Version == "" {
			// Prefer the detected cluster version over the CIS benchmark version.
			if control.DetectedVersion != "" {
				summary.Version = control.DetectedVersion
			} else if control.Version != "" {
				summary.Version = control.Version
			}
		}

		cs := ControlSummary{
			ID:       control.ID,
			Text:     control.Text,
			NodeType: control.NodeType,
		}
		for _, group := range control.Groups {
			for _, check := range group.Checks {
				cs.Total++
				switch check.State {
				case StatePass:
					cs.Pass++
				case StateFail:
					cs.Fail++
				case StateWarn:
					cs.Warn++
				case StateInfo:
					cs.Info++
				}
			}
		}
		if cs.Total > 0 {
			cs.PassRate = float64(cs.Pass) / float64(cs.Total) * 100
		}

		summary.TotalTests += cs.Total
		summary.Pass += cs.Pass
		summary.Fail += cs.Fail
		summary.Warn += cs.Warn
		summary.Info += cs.Info
		summary.Controls = append(summary.Controls, cs)

		if cs.Fail > CriticalFailThreshold {
			summary.Critical = append(summary.Critical, cs)
		}
	}

	if summary.TotalTests > 0 {
		summary.PassRate = float64(summary.Pass) / float64(summary.TotalTests) * 100
	}
	return summary
}

// OverallStatus classifies the scan outcome. Any control with more than
// CriticalFailThreshold failures makes the whole scan critical; otherwise
// any failure at all needs attention.
func (s Summary) OverallStatus() Status {
	if len(s.Critical) > 0 {
		return StatusCritical
	}
	if s.Fail > 0 {
		return StatusNeedsAttention
	}
	return StatusPassed
}
