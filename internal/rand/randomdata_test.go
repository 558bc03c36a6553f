package rand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes(t *testing.T) {
	b := Bytes(1024)
	require.Len(t, b, 1024)
	assert.NotEqual(t, b, Bytes(1024))
}

func TestLetterString(t *testing.T) {
	s := LetterString(512)
	require.Len(t, s, 512)
	for _, r := range s {
		assert.True(t, (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'), "unexpected rune %q", r)
	}
}
