package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short text unchanged", "Door frame", 20, "Door frame"},
		{"collapses whitespace", "Door\n\tframe   cracked", 50, "Door frame cracked"},
		{"cuts with ellipsis", "abcdefghij", 6, "abc..."},
		{"unicode safe", "Überprüfung der Decke", 8, "Überp..."},
		{"clamps tiny max", "abcdef", 1, "a..."},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.input, tt.maxLen))
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty())
}
