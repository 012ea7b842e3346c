package bitfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeUnsignedRange(t *testing.T) {
	v, err := EncodeUnsigned(0, 5)
	assert.NoError(t, err)
	assert.EqualValues(t, 0, v)

	v, err = EncodeUnsigned(31, 5)
	assert.NoError(t, err)
	assert.EqualValues(t, 31, v)

	_, err = EncodeUnsigned(32, 5)
	assert.Error(t, err)

	_, err = EncodeUnsigned(-1, 5)
	assert.Error(t, err)
}

func TestEncodeSignedRangeAndRoundTrip(t *testing.T) {
	for bits := uint(5); bits <= 11; bits++ {
		minValue := -(int32(1) << (bits - 1))
		maxValue := (int32(1) << (bits - 1)) - 1
		for _, v := range []int32{minValue, -1, 0, 1, maxValue} {
			encoded, err := EncodeSigned(v, bits)
			assert.NoError(t, err)
			assert.EqualValues(t, v, SignExtend(encoded, bits))
		}
		_, err := EncodeSigned(maxValue+1, bits)
		assert.Error(t, err)
		_, err = EncodeSigned(minValue-1, bits)
		assert.Error(t, err)
	}
}

func TestSignExtendNegativeOne(t *testing.T) {
	encoded, err := EncodeSigned(-1, 9)
	assert.NoError(t, err)
	assert.EqualValues(t, 0x1FF, encoded)
	assert.EqualValues(t, -1, SignExtend(encoded, 9))
}
