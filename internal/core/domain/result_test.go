package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ctsubs/internal/testutil"
)

func TestNewResult(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		source  string
		want    Result
		wantErr error
	}{
		{"ct", "a.example.com", "Certificate Transparency", Result{"a.example.com", SourceCertificateTransparency}, nil},
		{"trimmed subject", "  b.example.com ", "DNS Enumeration", Result{"b.example.com", SourceDNSEnumeration}, nil},
		{"unknown source kept", "c.example.com", "Passive DNS", Result{"c.example.com", SourceKind("Passive DNS")}, nil},
		{"empty subject", " ", "DNS Enumeration", Result{}, ErrEmptySubject},
		{"empty source", "d.example.com", "", Result{}, ErrEmptySource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewResult(tt.subject, tt.source)
			if tt.wantErr != nil {
				testutil.AssertTrue(t, errors.Is(err, tt.wantErr), "expected sentinel error")
				return
			}
			testutil.AssertNoError(t, err, "NewResult")
			testutil.AssertEqual(t, got, tt.want, "result")
		})
	}
}

func TestSearchResponse_JSON(t *testing.T) {
	raw := `{"domain":"example.com","subdomains":[{"subdomain":"a.example.com","source":"Certificate Transparency"}]}`

	var resp SearchResponse
	testutil.AssertNoError(t, json.Unmarshal([]byte(raw), &resp), "decode")
	testutil.AssertEqual(t, resp.Domain, "example.com", "domain")
	testutil.AssertLen(t, resp.Subdomains, 1, "subdomains")
	testutil.AssertEqual(t, resp.Subdomains[0].Source, SourceCertificateTransparency, "source")
	testutil.AssertEqual(t, resp.Error, "", "no error")
}

func TestReport(t *testing.T) {
	r := Report{
		Domain: "example.com",
		State:  StateCompleted,
		Subdomains: []Result{
			{"a.example.com", SourceCertificateTransparency},
			{"b.example.com", SourceDNSEnumeration},
			{"c.example.com", SourceKind("Passive DNS")},
		},
		StartedAt: time.Unix(0, 0).UTC(),
	}

	counts := r.CountBySource()
	testutil.AssertEqual(t, counts["CT Logs"], 1, "CT count")
	testutil.AssertEqual(t, counts["DNS Enum"], 2, "unknown sources are shown as DNS Enum")

	data, err := json.Marshal(r)
	testutil.AssertNoError(t, err, "encode")
	testutil.AssertContains(t, string(data), `"state":"completed"`, "state by name")
}
