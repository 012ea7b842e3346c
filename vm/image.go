package vm

import (
	"encoding/binary"
	"fmt"
)

// DecodeImage turns a big-endian object file's bytes into the word
// stream NewMachine expects, back-to-back 16-bit words with no header.
func DecodeImage(data []byte) ([]uint16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("object file has an odd length of %d bytes", len(data))
	}
	words := make([]uint16, len(data)/2)
	for i := range words {
		words[i] = binary.BigEndian.Uint16(data[i*2 : i*2+2])
	}
	return words, nil
}

// EncodeImage renders a word stream back to the big-endian object file
// format.
func EncodeImage(words []uint16) []byte {
	out := make([]byte, len(words)*2)
	for i, w := range words {
		binary.BigEndian.PutUint16(out[i*2:i*2+2], w)
	}
	return out
}
