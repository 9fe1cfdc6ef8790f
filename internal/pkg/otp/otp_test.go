package otp

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SixDigitNumericString(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := New()
		require.NoError(t, err)
		assert.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err, "code must be numeric: %q", code)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
		assert.NotEqual(t, byte('0'), code[0], "code must not have a leading zero")
	}
}

func TestNew_NotConstant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := New()
		require.NoError(t, err)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1, "50 draws should not all collide")
}
