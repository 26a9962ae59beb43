package classroom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateCode()
		require.Len(t, code, 12)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected rune %q", r)
		}
		seen[code] = true
	}
	// 100 draws from a 36^12 space colliding would mean the generator
	// is broken.
	assert.Len(t, seen, 100)
}

func TestVerifyCode(t *testing.T) {
	assert.True(t, VerifyCode("ABC123DEF456", "ABC123DEF456"))

	// Case-sensitive, exact.
	assert.False(t, VerifyCode("ABC123DEF456", "abc123def456"))
	assert.False(t, VerifyCode("ABC123DEF456", "ABC123DEF45"))
	assert.False(t, VerifyCode("ABC123DEF456", ""))

	// A class with no code never matches anything.
	assert.False(t, VerifyCode("", ""))
}
