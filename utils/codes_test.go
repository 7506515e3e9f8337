package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDeliveryCode(t *testing.T) {
	code, err := GenerateDeliveryCode(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	for _, c := range code {
		assert.True(t, strings.ContainsRune(codeCharset, c), "unexpected character %q", c)
	}
}

func TestGenerateDeliveryCodeAvoidsAmbiguousCharacters(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateDeliveryCode(6)
		require.NoError(t, err)
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "1")
		assert.NotContains(t, code, "I")
		assert.NotContains(t, code, "L")
	}
}

func TestGenerateCode(t *testing.T) {
	token, err := GenerateCode(16)
	require.NoError(t, err)
	assert.Len(t, token, 32)

	other, err := GenerateCode(16)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
