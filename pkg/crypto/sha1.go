// SHA-1 as defined in FIPS PUB 180-4. One-shot only; the message schedule is
// a 16-word ring buffer rather than the full 80-word array.

package crypto

import (
	"encoding/binary"
	"math/bits"
)

// SHA1Size is the SHA-1 digest size in bytes.
const SHA1Size = 20

// SHA1 computes the SHA-1 message digest of a message.
//
// Returns a 20-byte (160-bit) digest.
func SHA1(message []byte) [SHA1Size]byte {
	h := [5]uint32{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476, 0xc3d2e1f0}

	full := len(message) &^ 63
	for i := 0; i < full; i += shaBlockSize {
		sha1Block(&h, message[i:i+shaBlockSize])
	}

	pad, padLen := shaPad(message[full:], uint64(len(message)))
	sha1Block(&h, pad[0:shaBlockSize])
	if padLen == 2*shaBlockSize {
		sha1Block(&h, pad[shaBlockSize:])
	}

	var digest [SHA1Size]byte
	for i, v := range h {
		binary.BigEndian.PutUint32(digest[i*4:], v)
	}
	return digest
}

// SHA1Slice computes the SHA-1 digest and returns it as a slice.
// This is a convenience function for cases where a slice is preferred.
func SHA1Slice(message []byte) []byte {
	digest := SHA1(message)
	return digest[:]
}

// shaBlockSize is the block size shared by SHA-1 and SHA-256.
const shaBlockSize = 64

// shaPad builds the final padded block(s) for SHA-1 and SHA-256: the message
// tail, 0x80, zeros, and the 64-bit big-endian bit length. Returns the pad
// buffer and its length (64 or 128 bytes).
func shaPad(tail []byte, messageLen uint64) ([2 * shaBlockSize]byte, int) {
	var pad [2 * shaBlockSize]byte
	r := copy(pad[:], tail)
	pad[r] = 0x80

	padLen := shaBlockSize
	if r+1 > shaBlockSize-8 {
		padLen = 2 * shaBlockSize
	}
	binary.BigEndian.PutUint64(pad[padLen-8:padLen], messageLen*8)
	return pad, padLen
}

// sha1Block runs the SHA-1 compression function over one 64-byte block.
func sha1Block(h *[5]uint32, m []byte) {
	// W is a 16-word ring buffer; each round reads W[t mod 16] and writes
	// back the rotated XOR that will serve as W[t+16].
	var w [16]uint32
	for t := 0; t < 16; t++ {
		w[t] = binary.BigEndian.Uint32(m[t*4:])
	}

	a, b, c, d, e := h[0], h[1], h[2], h[3], h[4]

	for t := 0; t < 80; t++ {
		wt := w[t&15]
		wtr := w[(t+13)&15] ^ w[(t+8)&15] ^ w[(t+2)&15] ^ wt
		w[t&15] = bits.RotateLeft32(wtr, 1)

		var ft, kt uint32
		switch {
		case t < 20:
			ft = (b & c) ^ (^b & d)
			kt = 0x5a827999
		case t < 40:
			ft = b ^ c ^ d
			kt = 0x6ed9eba1
		case t < 60:
			ft = (b & c) ^ (b & d) ^ (c & d)
			kt = 0x8f1bbcdc
		default:
			ft = b ^ c ^ d
			kt = 0xca62c1d6
		}

		tmp := bits.RotateLeft32(a, 5) + ft + e + kt + wt
		e = d
		d = c
		c = bits.RotateLeft32(b, 30)
		b = a
		a = tmp
	}

	h[0] += a
	h[1] += b
	h[2] += c
	h[3] += d
	h[4] += e
}
