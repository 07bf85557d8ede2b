package stream

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"ctsubs/internal/core/domain"
)

func res(subject string, src domain.SourceKind) domain.Result {
	return domain.Result{Subject: subject, Source: src}
}

func TestAggregator_FirstSeenWins(t *testing.T) {
	a := NewAggregator()

	assert.Equal(t, Accepted, a.Offer(res("a.example.com", domain.SourceCertificateTransparency)))
	assert.Equal(t, DuplicateDropped, a.Offer(res("a.example.com", domain.SourceDNSEnumeration)))
	assert.Equal(t, Accepted, a.Offer(res("b.example.com", domain.SourceDNSEnumeration)))

	assert.Equal(t, 2, a.Count())
	assert.Equal(t, []domain.Result{
		res("a.example.com", domain.SourceCertificateTransparency),
		res("b.example.com", domain.SourceDNSEnumeration),
	}, a.Results())
}

func TestAggregator_ResultsIsACopy(t *testing.T) {
	a := NewAggregator()
	a.Offer(res("a.example.com", domain.SourceDNSEnumeration))

	out := a.Results()
	out[0].Subject = "mutated"

	assert.Equal(t, "a.example.com", a.Results()[0].Subject)
}

func TestAggregator_DedupIdempotence(t *testing.T) {
	subjects := []string{"a.example.com", "b.example.com", "c.example.com", "d.example.com"}
	var offers []domain.Result
	for i, s := range subjects {
		for j := 0; j <= i; j++ {
			offers = append(offers, res(s, domain.SourceDNSEnumeration))
		}
	}

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		rng.Shuffle(len(offers), func(i, j int) { offers[i], offers[j] = offers[j], offers[i] })

		a := NewAggregator()
		accepted := 0
		for _, r := range offers {
			if a.Offer(r) == Accepted {
				accepted++
			}
		}
		assert.Equal(t, len(subjects), a.Count(), "round %d", round)
		assert.Equal(t, len(subjects), accepted, "round %d", round)
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "duplicate", DuplicateDropped.String())
}
