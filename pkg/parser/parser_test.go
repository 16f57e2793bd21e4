package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleJSON = `{
  "Controls": [
    {
      "id": "1",
      "version": "cis-1.6",
      "detected_version": "1.28",
      "text": "Master Node Security Configuration",
      "node_type": "master",
      "tests": [
        {
          "section": "1.1",
          "desc": "Master Node Configuration Files",
          "results": [
            {"test_number": "1.1.1", "test_desc": "API server pod file permissions", "status": "PASS", "scored": true},
            {"test_number": "1.1.2", "test_desc": "API server pod file ownership", "status": "FAIL", "remediation": "chown root:root the file", "scored": true},
            {"test_number": "1.1.3", "test_desc": "Controller manager pod file permissions", "status": "WARN"}
          ]
        }
      ],
      "total_pass": 1,
      "total_fail": 1,
      "total_warn": 1,
      "total_info": 0
    }
  ],
  "Totals": {"total_pass": 1, "total_fail": 1, "total_warn": 1, "total_info": 0}
}`

func TestParse(t *testing.T) {
	t.Run("ValidDocument", func(t *testing.T) {
		report, err := Parse([]byte(sampleJSON))
		if err != nil {
			t.Fatalf("Expected successful parse, got error: %v", err)
		}
		if len(report.Controls) != 1 {
			t.Fatalf("Expected 1 control, got %d", len(report.Controls))
		}
		control := report.Controls[0]
		if control.ID != "1" {
			t.Errorf("Expected control id 1, got %q", control.ID)
		}
		if control.DetectedVersion != "1.28" {
			t.Errorf("Expected detected version 1.28, got %q", control.DetectedVersion)
		}
		if len(control.Groups) != 1 || len(control.Groups[0].Checks) != 3 {
			t.Fatalf("Unexpected group/check layout: %+v", control.Groups)
		}
		check := control.Groups[0].Checks[1]
		if check.State != StateFail {
			t.Errorf("Expected FAIL status, got %q", check.State)
		}
		if check.Remediation == "" {
			t.Error("Expected remediation text to be preserved")
		}
	})

	t.Run("EmptyControls", func(t *testing.T) {
		report, err := Parse([]byte(`{"Controls": [], "Totals": {}}`))
		if err != nil {
			t.Fatalf("Expected empty controls to be valid, got error: %v", err)
		}
		if len(report.Controls) != 0 {
			t.Errorf("Expected 0 controls, got %d", len(report.Controls))
		}
	})

	t.Run("NotJSON", func(t *testing.T) {
		_, err := Parse([]byte("[INFO] 1 Master Node Security Configuration"))
		if !errors.Is(err, ErrMalformedReport) {
			t.Errorf("Expected ErrMalformedReport, got: %v", err)
		}
	})

	t.Run("EmptyDocument", func(t *testing.T) {
		_, err := Parse([]byte("  \n"))
		if !errors.Is(err, ErrMalformedReport) {
			t.Errorf("Expected ErrMalformedReport, got: %v", err)
		}
	})

	t.Run("MissingControlsKey", func(t *testing.T) {
		_, err := Parse([]byte(`{"Totals": {"total_pass": 3}}`))
		if !errors.Is(err, ErrMalformedReport) {
			t.Errorf("Expected ErrMalformedReport, got: %v", err)
		}
		if err != nil && !strings.Contains(err.Error(), "Controls") {
			t.Errorf("Expected error to mention Controls key, got: %v", err)
		}
	})

	t.Run("CheckWithoutStatus", func(t *testing.T) {
		doc := `{"Controls": [{"id": "1", "text": "Master", "tests": [{"section": "1.1", "results": [
			{"test_number": "1.1.1", "test_desc": "some check"}
		]}]}]}`
		_, err := Parse([]byte(doc))
		if !errors.Is(err, ErrMalformedReport) {
			t.Fatalf("Expected ErrMalformedReport for missing status, got: %v", err)
		}
		if !strings.Contains(err.Error(), "1.1.1") {
			t.Errorf("Expected error to name the offending check, got: %v", err)
		}
	})

	t.Run("CheckWithUnknownStatus", func(t *testing.T) {
		doc := `{"Controls": [{"id": "1", "text": "Master", "tests": [{"section": "1.1", "results": [
			{"test_number": "1.1.1", "test_desc": "some check", "status": "MAYBE"}
		]}]}]}`
		_, err := Parse([]byte(doc))
		if !errors.Is(err, ErrMalformedReport) {
			t.Errorf("Expected ErrMalformedReport for unknown status, got: %v", err)
		}
	})

	t.Run("CheckWithoutTestNumber", func(t *testing.T) {
		doc := `{"Controls": [{"id": "1", "text": "Master", "tests": [{"section": "1.1", "results": [
			{"test_desc": "some check", "status": "PASS"}
		]}]}]}`
		_, err := Parse([]byte(doc))
		if !errors.Is(err, ErrMalformedReport) {
			t.Errorf("Expected ErrMalformedReport for missing test_number, got: %v", err)
		}
	})
}

func TestParseFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("NonExistentFile", func(t *testing.T) {
		_, err := ParseFile(filepath.Join(tmpDir, "missing.json"))
		if err == nil {
			t.Error("Expected error for nonexistent file, got nil")
		}
	})

	t.Run("ValidFile", func(t *testing.T) {
		path := filepath.Join(tmpDir, "results.json")
		if err := os.WriteFile(path, []byte(sampleJSON), 0644); err != nil {
			t.Fatalf("Failed to write test file: %v", err)
		}
		report, err := ParseFile(path)
		if err != nil {
			t.Fatalf("Expected successful parse, got error: %v", err)
		}
		if len(report.Controls) != 1 {
			t.Errorf("Expected 1 control, got %d", len(report.Controls))
		}
	})
}

func TestFailedChecks(t *testing.T) {
	report, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Failed to parse sample: %v", err)
	}

	failed := FailedChecks(report)
	if len(failed) != 1 {
		t.Fatalf("Expected 1 failed check, got %d", len(failed))
	}
	if failed[0].TestNumber != "1.1.2" {
		t.Errorf("Expected failed check 1.1.2, got %q", failed[0].TestNumber)
	}
	if failed[0].ControlID != "1" {
		t.Errorf("Expected control id 1, got %q", failed[0].ControlID)
	}
	if failed[0].Remediation == "" {
		t.Error("Expected remediation to be carried over")
	}
}

func TestFailedChecksPreservesDocumentOrder(t *testing.T) {
	report := &Report{Controls: []Control{
		{ID: "2", Groups: []Group{{Checks: []Check{
			{ID: "2.1.1", State: StateFail},
			{ID: "2.1.2", State: StatePass},
			{ID: "2.1.3", State: StateFail},
		}}}},
		{ID: "4", Groups: []Group{{Checks: []Check{
			{ID: "4.2.1", State: StateFail},
		}}}},
	}}

	failed := FailedChecks(report)
	want := []string{"2.1.1", "2.1.3", "4.2.1"}
	if len(failed) != len(want) {
		t.Fatalf("Expected %d failed checks, got %d", len(want), len(failed))
	}
	for i, id := range want {
		if failed[i].TestNumber != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, failed[i].TestNumber)
		}
	}
}
