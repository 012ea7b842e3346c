package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImageRoundTrip(t *testing.T) {
	words := []uint16{0x1234, 0xFFFF, 0x0000, 0xABCD}
	encoded := EncodeImage(words)
	decoded, err := DecodeImage(encoded)
	require.NoError(t, err)
	assert.Equal(t, words, decoded)
}

func TestDecodeImageRejectsOddLength(t *testing.T) {
	_, err := DecodeImage([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
}

func TestEncodeImageIsBigEndian(t *testing.T) {
	out := EncodeImage([]uint16{0x0102})
	assert.Equal(t, []byte{0x01, 0x02}, out)
}
