package parser

// State is the outcome of a single benchmark check.
type State string

const (
	// StatePass check passed.
	StatePass State = "PASS"
	// StateFail check failed.
	StateFail State = "FAIL"
	// StateWarn check could not be carried out automatically.
	StateWarn State = "WARN"
	// StateInfo informational result.
	StateInfo State = "INFO"
)

// Report represents a parsed kube-bench JSON document.
type Report struct {
	Controls []Control `json:"Controls"`
	Totals   Totals    `json:"Totals"`
}

// Control represents a top-level CIS control section
// (e.g., "Master Node Security Configuration").
type Control struct {
	ID              string  `json:"id"`
	Version         string  `json:"version,omitempty"`
	DetectedVersion string  `json:"detected_version,omitempty"`
	Text            string  `json:"text"`
	NodeType        string  `json:"node_type,omitempty"`
	Groups          []Group `json:"tests"`
	TotalPass       int     `json:"total_pass"`
	TotalFail       int     `json:"total_fail"`
	TotalWarn       int     `json:"total_warn"`
	TotalInfo       int     `json:"total_info"`
}

// Group represents a group of related checks within a control.
type Group struct {
	Section string  `json:"section"`
	Desc    string  `json:"desc"`
	Checks  []Check `json:"results"`
	Pass    int     `json:"pass"`
	Fail    int     `json:"fail"`
	Warn    int     `json:"warn"`
	Info    int     `json:"info"`
}

// Check represents an individual benchmark check.
type Check struct {
	ID          string `json:"test_number"`
	Text        string `json:"test_desc"`
	Audit       string `json:"audit,omitempty"`
	Remediation string `json:"remediation,omitempty"`
	State       State  `json:"status"`
	Scored      bool   `json:"scored,omitempty"`
}

// Totals represents the summary counts as reported by kube-bench itself.
// Summarize recomputes these from the checks and never trusts them.
type Totals struct {
	Pass int `json:"total_pass"`
	Fail int `json:"total_fail"`
	Warn int `json:"total_warn"`
	Info int `json:"total_info"`
}

// FailedCheck is a FAIL-status check together with its control context,
// used to build AI analysis requests.
type FailedCheck struct {
	ControlID   string `json:"control_id"`
	ControlText string `json:"control_text,omitempty"`
	TestNumber  string `json:"test_number"`
	TestDesc    string `json:"test_desc"`
	Remediation string `json:"remediation,omitempty"`
}
