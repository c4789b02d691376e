package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFarewell(t *testing.T) {
	cases := []struct {
		utterance string
		want      bool
	}{
		{"goodbye", true},
		{"Goodbye!", true},
		{"ok bye", true},
		{"good bye now", true},
		{"that's all, thanks", true},
		{"that is all", true},
		{"please hang up", true},
		{"Bye.", true},
		{"maybe tomorrow", false},
		{"is my baby covered", false},
		{"what are your hours", false},
		{"do you take Cigna", false},
		{"", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, IsFarewell(tc.utterance), "utterance: %q", tc.utterance)
	}
}
