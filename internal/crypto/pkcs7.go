package crypto

import (
	"bytes"
	"fmt"
)

// Pad appends PKCS#7 padding for block size k. Input that is already a
// multiple of k gets a full block of padding so Unpad is unambiguous.
func Pad(b []byte, k int) []byte {
	if k < 1 || k > 255 {
		panic("invalid block size, must be in [1, 255]")
	}

	padBytes := k - (len(b) % k)

	out := make([]byte, len(b), len(b)+padBytes)
	copy(out, b)
	return append(out, bytes.Repeat([]byte{byte(padBytes)}, padBytes)...)
}

// Unpad removes PKCS#7 padding for block size k. The final byte must be in
// [1, k] and every padding byte must carry the same value.
func Unpad(b []byte, k int) ([]byte, error) {
	if len(b) == 0 || len(b)%k != 0 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidPadding, len(b))
	}

	padBytes := int(b[len(b)-1])
	if padBytes < 1 || padBytes > k {
		return nil, fmt.Errorf("%w: pad length %d", ErrInvalidPadding, padBytes)
	}

	for _, v := range b[len(b)-padBytes:] {
		if int(v) != padBytes {
			return nil, ErrInvalidPadding
		}
	}

	return b[:len(b)-padBytes], nil
}
