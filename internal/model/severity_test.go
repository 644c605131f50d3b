package model

import "testing"

// TestSeverityString tests the severity string representation.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity Severity
		expected string
	}{
		{SeverityInfo, "INFO"},
		{SeverityLow, "LOW"},
		{SeverityMedium, "MEDIUM"},
		{SeverityHigh, "HIGH"},
		{SeverityCritical, "CRITICAL"},
		{Severity(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.expected {
			t.Errorf("Severity(%d).String() = %q, expected %q", tt.severity, got, tt.expected)
		}
	}
}

// TestParseSeverity tests mapping of external severity strings.
func TestParseSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Severity
	}{
		{"critical", SeverityCritical},
		{"high", SeverityHigh},
		{"medium", SeverityMedium},
		{"low", SeverityLow},
		{"information", SeverityInfo},
		{"", SeverityInfo},
		{"bogus", SeverityInfo},
	}

	for _, tt := range tests {
		if got := ParseSeverity(tt.input); got != tt.expected {
			t.Errorf("ParseSeverity(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

// TestSeverityOrdering ensures severities sort from info to critical.
// The vulnerability rollup relies on this ordering.
func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	if !(SeverityInfo < SeverityLow && SeverityLow < SeverityMedium &&
		SeverityMedium < SeverityHigh && SeverityHigh < SeverityCritical) {
		t.Error("severity constants are not strictly increasing")
	}
}

// TestGetFindingInfo tests the central finding metadata mapping.
func TestGetFindingInfo(t *testing.T) {
	t.Parallel()

	t.Run("known type carries severity and remediation", func(t *testing.T) {
		t.Parallel()

		info := GetFindingInfo("dom_xss")
		if info.Severity != SeverityCritical {
			t.Errorf("got %v, expected critical", info.Severity)
		}
		if info.Remediation == "" {
			t.Error("expected remediation text")
		}
	})

	t.Run("unknown type defaults to info", func(t *testing.T) {
		t.Parallel()

		info := GetFindingInfo("no_such_finding")
		if info.Severity != SeverityInfo {
			t.Errorf("got %v, expected info", info.Severity)
		}
	})

	t.Run("GetSeverity matches GetFindingInfo", func(t *testing.T) {
		t.Parallel()

		for _, ft := range []string{"dom_xss", "insecure_form", "missing_csp", "exif_gps"} {
			if GetSeverity(ft) != GetFindingInfo(ft).Severity {
				t.Errorf("severity mismatch for %q", ft)
			}
		}
	})
}

// TestFormHasPasswordInput tests password field detection.
func TestFormHasPasswordInput(t *testing.T) {
	t.Parallel()

	form := Form{
		Action: "/login",
		Method: "POST",
		Inputs: []FormInput{
			{Type: "text", Name: "user"},
			{Type: "password", Name: "pass"},
		},
	}
	if !form.HasPasswordInput() {
		t.Error("expected password input to be detected")
	}

	noPass := Form{Action: "/search", Method: "GET", Inputs: []FormInput{{Type: "text", Name: "q"}}}
	if noPass.HasPasswordInput() {
		t.Error("expected no password input")
	}
}
