// internal/core/domain/enums_test.go
package domain

import (
	"testing"

	"ctsubs/internal/testutil"
)

func TestParseSourceKind(t *testing.T) {
	tests := []struct {
		in    string
		want  SourceKind
		known bool
		label string
	}{
		{"Certificate Transparency", SourceCertificateTransparency, true, "CT Logs"},
		{"ct logs", SourceCertificateTransparency, true, "CT Logs"},
		{"crt.sh", SourceCertificateTransparency, true, "CT Logs"},
		{"DNS Enumeration", SourceDNSEnumeration, true, "DNS Enum"},
		{" dns enum ", SourceDNSEnumeration, true, "DNS Enum"},
		{"Passive DNS", SourceKind("Passive DNS"), false, "DNS Enum"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseSourceKind(tt.in)
			testutil.AssertEqual(t, got, tt.want, "kind")
			testutil.AssertEqual(t, got.IsKnown(), tt.known, "IsKnown")
			testutil.AssertEqual(t, got.Label(), tt.label, "Label")
		})
	}
}

func TestState(t *testing.T) {
	tests := []struct {
		state    State
		name     string
		terminal bool
	}{
		{StateIdle, "idle", false},
		{StateActive, "active", false},
		{StateCompleted, "completed", true},
		{StateCancelled, "cancelled", true},
		{StateErrored, "errored", true},
		{State(99), "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, tt.state.String(), tt.name, "String")
			testutil.AssertEqual(t, tt.state.IsTerminal(), tt.terminal, "IsTerminal")

			text, err := tt.state.MarshalText()
			testutil.AssertNoError(t, err, "MarshalText")
			testutil.AssertEqual(t, string(text), tt.name, "MarshalText")
		})
	}
}
