package safe_random

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomBytes(t *testing.T) {
	b, err := GenerateRandomBytes(32)
	require.NoError(t, err)
	assert.Len(t, b, 32)

	// 两次生成不应该相同 (熵源正常工作)
	b2, err := GenerateRandomBytes(32)
	require.NoError(t, err)
	assert.NotEqual(t, b, b2)
}

func TestGenerateRandomHexString(t *testing.T) {
	s, err := GenerateRandomHexString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)
}

func TestReaderReplaceable(t *testing.T) {
	old := Reader
	defer func() { Reader = old }()

	Reader = bytes.NewReader(bytes.Repeat([]byte{0xAB}, 8))
	b, err := GenerateRandomBytes(8)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xAB}, 8), b)
}
