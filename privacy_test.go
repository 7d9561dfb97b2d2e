package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDisclosure(t *testing.T) {
	tests := []struct {
		name string
		raw  *string
		want disclosure
	}{
		{"nil is unknown", nil, disclosureUnknown},
		{"empty is unknown", strPtr(""), disclosureUnknown},
		{"garbage is unknown", strPtr("maybe"), disclosureUnknown},
		{"true", strPtr("true"), disclosureAffirmative},
		{"TRUE uppercased", strPtr("TRUE"), disclosureAffirmative},
		{"yes", strPtr("yes"), disclosureAffirmative},
		{"numeric one", strPtr("1"), disclosureAffirmative},
		{"padded yes", strPtr("  Yes "), disclosureAffirmative},
		{"false", strPtr("false"), disclosureNegative},
		{"no", strPtr("No"), disclosureNegative},
		{"numeric zero", strPtr("0"), disclosureNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDisclosure(tt.raw))
		})
	}
}

func TestDisclosureLiterals(t *testing.T) {
	assert.Equal(t, []string{"true", "yes", "1"}, disclosureLiterals(disclosureAffirmative))
	assert.Equal(t, []string{"false", "no", "0"}, disclosureLiterals(disclosureNegative))
	// Unknown yields no restriction, so the seeker's silence is not
	// leaked as a filter.
	assert.Nil(t, disclosureLiterals(disclosureUnknown))
}

func TestSeekerDisclosure(t *testing.T) {
	assert.Equal(t, disclosureUnknown, seekerDisclosure(nil))
	assert.Equal(t, disclosureUnknown, seekerDisclosure(&Health{}))
	assert.Equal(t, disclosureAffirmative, seekerDisclosure(&Health{HIVStatus: strPtr("yes")}))
	assert.Equal(t, disclosureNegative, seekerDisclosure(&Health{HIVStatus: strPtr("0")}))
}

func TestCanSeeSensitiveHealth(t *testing.T) {
	affirmative := &Health{HIVStatus: strPtr("true")}
	negative := &Health{HIVStatus: strPtr("no")}
	undisclosed := &Health{}

	t.Run("Symmetric Affirmative", func(t *testing.T) {
		assert.True(t, canSeeSensitiveHealth(&Health{HIVStatus: strPtr("1")}, affirmative))
	})
	t.Run("Symmetric Negative", func(t *testing.T) {
		assert.True(t, canSeeSensitiveHealth(&Health{HIVStatus: strPtr("false")}, negative))
	})
	t.Run("Asymmetric Denied", func(t *testing.T) {
		assert.False(t, canSeeSensitiveHealth(negative, affirmative))
		assert.False(t, canSeeSensitiveHealth(undisclosed, affirmative))
		assert.False(t, canSeeSensitiveHealth(nil, affirmative))
	})
	t.Run("Undisclosed Target Never Shown", func(t *testing.T) {
		assert.False(t, canSeeSensitiveHealth(affirmative, undisclosed))
		assert.False(t, canSeeSensitiveHealth(undisclosed, undisclosed))
	})
}
