// internal/core/domain/target_test.go
package domain

import (
	"errors"
	"testing"

	"ctsubs/internal/testutil"
)

func TestValidateTarget(t *testing.T) {
	for _, d := range testutil.FixtureDomains {
		t.Run(d, func(t *testing.T) {
			got, err := ValidateTarget(d)
			testutil.AssertNoError(t, err, "fixture domain should be valid")
			testutil.AssertEqual(t, got, d, "already normalized")
		})
	}

	for _, d := range testutil.FixtureInvalidDomains {
		t.Run("invalid "+d, func(t *testing.T) {
			_, err := ValidateTarget(d)
			testutil.AssertError(t, err, "fixture domain should be rejected")
		})
	}
}

func TestValidateTarget_Normalizes(t *testing.T) {
	got, err := ValidateTarget("  Sub.EXAMPLE.com. ")
	testutil.AssertNoError(t, err, "valid after normalization")
	testutil.AssertEqual(t, got, "sub.example.com", "lowercased, trimmed, trailing dot removed")
}

func TestValidateTarget_Sentinels(t *testing.T) {
	_, err := ValidateTarget("   ")
	testutil.AssertTrue(t, errors.Is(err, ErrEmptyTarget), "blank input is ErrEmptyTarget")

	_, err = ValidateTarget("bad_domain!")
	testutil.AssertTrue(t, errors.Is(err, ErrInvalidDomain), "bad syntax is ErrInvalidDomain")
	testutil.AssertContains(t, err.Error(), "bad_domain!", "message names the input")
}
