package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLatin1(t *testing.T) {
	s, err := Decode([]byte{'c', 'a', 'f', 0xE9})
	require.NoError(t, err)
	assert.Equal(t, "café", s)
}

func TestEncodeLatin1(t *testing.T) {
	b, err := Encode("café")
	require.NoError(t, err)
	assert.Equal(t, []byte{'c', 'a', 'f', 0xE9}, b)

	b, err = Encode("ok ♠")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok ?"), b)
}

func TestEncodeReplacesEveryNonLatin1Rune(t *testing.T) {
	b, err := Encode("♠ 10 € \xff")
	require.NoError(t, err)
	assert.Equal(t, []byte("? 10 ? ?"), b)
	assert.NotContains(t, b, byte(0x1A))
}

func TestCodecRoundTripsEveryByte(t *testing.T) {
	raw := make([]byte, 256)
	for i := range raw {
		raw[i] = byte(i)
	}
	s, err := Decode(raw)
	require.NoError(t, err)
	back, err := Encode(s)
	require.NoError(t, err)
	assert.Equal(t, raw, back)
}
