// Package shortvec implements the compact-u16 length prefix used by the
// Solana wire format.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxEncodedLen = 3

// EncodeLen encodes the specified len into the writer.
//
// If len > math.MaxUint16, an error is returned.
func EncodeLen(w io.Writer, len int) (n int, err error) {
	if len < 0 || len > math.MaxUint16 {
		return 0, errors.Errorf("len %d outside of [0, %d]", len, math.MaxUint16)
	}

	var buf [maxEncodedLen]byte
	size := 0
	for {
		buf[size] = byte(len & 0x7f)
		len >>= 7
		if len == 0 {
			size++
			break
		}

		buf[size] |= 0x80
		size++
	}

	return w.Write(buf[:size])
}

// DecodeLen decodes a shortvec encoded len from the reader.
func DecodeLen(r io.Reader) (int, error) {
	var val int
	var b [1]byte
	for i := 0; i < maxEncodedLen; i++ {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		val |= int(b[0]&0x7f) << (i * 7)
		if b[0]&0x80 == 0 {
			return val, nil
		}
	}

	return 0, errors.Errorf("invalid size: exceeds %d bytes", maxEncodedLen)
}
