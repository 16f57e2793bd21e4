package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrMalformedReport indicates the results file does not match the
// kube-bench JSON schema.
var ErrMalformedReport = errors.New("malformed kube-bench report")

// Parse parses raw kube-bench JSON output into a Report.
// It fails with ErrMalformedReport when the document is not valid JSON or
// does not match the expected schema.
func Parse(content []byte) (*Report, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedReport)
	}

	var raw struct {
		Controls *json.RawMessage `json:"Controls"`
		Totals   Totals           `json:"Totals"`
	}
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	if raw.Controls == nil {
		return nil, fmt.Errorf("%w: missing Controls key", ErrMalformedReport)
	}

	var controls []Control
	if err := json.Unmarshal(*raw.Controls, &controls); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}

	report := &Report{Controls: controls, Totals: raw.Totals}
	if err := validate(report); err != nil {
		return nil, err
	}
	return report, nil
}

// ParseFile reads and parses a kube-bench JSON output file.
func ParseFile(filePath string) (*Report, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(content)
}

// validate checks the schema constraints that json.Unmarshal alone cannot
// enforce: every check must carry a test number and a known status.
func validate(report *Report) error {
	for _, control := range report.Controls {
		for _, group := range control.Groups {
			for _, check := range group.Checks {
				if check.ID == "" {
					return fmt.Errorf("%w: check without test_number in control %q section %q",
						ErrMalformedReport, control.ID, group.Section)
				}
				switch check.State {
				case StatePass, StateFail, StateWarn, StateInfo:
				case "":
					return fmt.Errorf("%w: check %s has no status", ErrMalformedReport, check.ID)
				default:
					return fmt.Errorf("%w: check %s has unknown status %q", ErrMalformedReport, check.ID, check.State)
				}
			}
		}
	}
	return nil
}

// FailedChecks returns every FAIL-status check in document order, together
// with its control context.
func FailedChecks(report *Report) []FailedCheck {
	var failed []FailedCheck
	for _, control := range report.Controls {
		for _, group := range control.Groups {
			for _, check := range group.Checks {
				if check.State != StateFail {
					continue
				}
				failed = append(failed, FailedCheck{
					ControlID:   control.ID,
					ControlText: control.Text,
					TestNumber:  check.ID,
					TestDesc:    check.Text,
					Remediation: check.Remediation,
				})
			}
		}
	}
	return failed
}
