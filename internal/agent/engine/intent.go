package engine

import "strings"

// farewellPhrases is the termination fast-path vocabulary. It is matched
// literally ahead of the reasoning service so the common goodbye path costs
// no model latency. Expanding it changes the call-ending contract; keep the
// tests in sync.
var farewellPhrases = []string{
	"goodbye",
	"good bye",
	"bye",
	"hang up",
	"that's all",
	"that is all",
}

// IsFarewell reports whether the utterance matches the termination intent.
// Single words match on word boundaries ("bye" must not match "maybe");
// multi-word phrases match as substrings of the lowered text.
func IsFarewell(utterance string) bool {
	lowered := strings.ToLower(utterance)
	words := fieldsNoPunct(lowered)

	for _, phrase := range farewellPhrases {
		if strings.ContainsRune(phrase, ' ') {
			if strings.Contains(lowered, phrase) {
				return true
			}
			continue
		}
		for _, w := range words {
			if w == phrase {
				return true
			}
		}
	}
	return false
}

func fieldsNoPunct(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
			return false
		}
		return true
	})
}
