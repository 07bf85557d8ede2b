// internal/platform/validator/validator_test.go
package validator

import (
	"testing"

	"ctsubs/internal/testutil"
)

func TestIsDomain(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"valid domain", "example.com", true},
		{"valid subdomain", "test.example.com", true},
		{"empty string", "", false},
		{"too long", string(make([]byte, 300)), false},
		{"ip address", "192.168.1.1", false},
		{"invalid chars", "exam ple.com", false},
		{"starts with hyphen", "-example.com", false},
		{"ends with hyphen", "example-.com", false},
		{"single label", "localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, IsDomain(tt.input), tt.expected, "domain validation")
		})
	}
}

func TestIsPlausibleDomain(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"registrable domain", "example.com", true},
		{"second level suffix", "example.co.uk", true},
		{"subdomain target", "api.example.com", true},
		{"single label", "localhost", false},
		{"bare public suffix", "co.uk", false},
		{"bare tld", "com", false},
		{"numeric tld", "example.123", false},
		{"one letter tld", "example.c", false},
		{"ip address", "10.0.0.1", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, IsPlausibleDomain(tt.input), tt.expected, "plausible domain")
		})
	}
}

func TestIsPlausibleDomainFixtures(t *testing.T) {
	for _, d := range testutil.FixtureDomains {
		testutil.AssertTrue(t, IsPlausibleDomain(d), d)
	}
	for _, d := range testutil.FixtureInvalidDomains {
		testutil.AssertFalse(t, IsPlausibleDomain(d), d)
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "EXAMPLE.COM", "example.com"},
		{"remove trailing dot", "example.com.", "example.com"},
		{"keeps www", "www.example.com", "www.example.com"},
		{"trim spaces", "  Example.com.  ", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, NormalizeDomain(tt.input), tt.expected, "normalized domain")
		})
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"http://localhost:9382", true},
		{"https://subs.example.com", true},
		{"ftp://example.com", false},
		{"localhost:9382", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			testutil.AssertEqual(t, IsURL(tt.input), tt.expected, "url validation")
		})
	}
}
