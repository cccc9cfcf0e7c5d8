package randid

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]*$`)

func TestGenerate_length_and_alphabet(t *testing.T) {
	for _, n := range []int{0, 1, 6, 12} {
		id := Generate(n)
		assert.Len(t, id, n)
		assert.Regexp(t, idPattern, id)
	}
}

func TestGenerate_mostly_unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 200 {
		seen[Generate(8)] = true
	}
	assert.GreaterOrEqual(t, len(seen), 195)
}

func TestGenerate_uses_letters_and_digits(t *testing.T) {
	var letters, digits bool
	for range 500 {
		for _, c := range Generate(10) {
			switch {
			case c >= 'a' && c <= 'z':
				letters = true
			case c >= '0' && c <= '9':
				digits = true
			}
		}
	}
	assert.True(t, letters)
	assert.True(t, digits)
}
