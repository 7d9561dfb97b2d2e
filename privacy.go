package main

import "strings"

// disclosure is the normalized tri-state of a sensitive boolean-like
// attribute. Historical rows encode the same fact as a boolean, a string
// or a number, so every comparison goes through parseDisclosure; the
// literal lists must never be inlined at a comparison site.
type disclosure int

const (
	disclosureUnknown disclosure = iota
	disclosureAffirmative
	disclosureNegative
)

// affirmativeLiterals and negativeLiterals are the accepted stored
// encodings, lowercased. They also drive the SQL rendering of the
// privacy phase so filter and normalizer can never drift apart.
var (
	affirmativeLiterals = []string{"true", "yes", "1"}
	negativeLiterals    = []string{"false", "no", "0"}
)

// parseDisclosure maps a raw stored value to its tri-state. A nil pointer
// (no record, or record without the attribute) is unknown, which is
// distinct from an explicit negative.
func parseDisclosure(raw *string) disclosure {
	if raw == nil {
		return disclosureUnknown
	}
	v := strings.ToLower(strings.TrimSpace(*raw))
	for _, lit := range affirmativeLiterals {
		if v == lit {
			return disclosureAffirmative
		}
	}
	for _, lit := range negativeLiterals {
		if v == lit {
			return disclosureNegative
		}
	}
	return disclosureUnknown
}

// seekerDisclosure extracts the seeker's own HIV disclosure from their
// health record, tolerating the record itself being absent.
func seekerDisclosure(h *Health) disclosure {
	if h == nil {
		return disclosureUnknown
	}
	return parseDisclosure(h.HIVStatus)
}

// disclosureLiterals returns the stored encodings matching the given
// tri-state branch. Unknown returns nil: no restriction is applied, so a
// seeker who never disclosed does not leak that fact through the filter.
func disclosureLiterals(d disclosure) []string {
	switch d {
	case disclosureAffirmative:
		return affirmativeLiterals
	case disclosureNegative:
		return negativeLiterals
	default:
		return nil
	}
}

// canSeeSensitiveHealth reports whether the requester may see the target's
// HIV status. Visibility is symmetric: only a requester whose own declared
// tri-state equals the target's may see it.
func canSeeSensitiveHealth(requester, target *Health) bool {
	td := seekerDisclosure(target)
	if td == disclosureUnknown {
		return false
	}
	return seekerDisclosure(requester) == td
}
