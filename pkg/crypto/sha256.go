// SHA-256 as defined in FIPS PUB 180-4. One-shot only; shares the padding
// helper and 16-word ring-buffer schedule layout with SHA-1.

package crypto

import (
	"encoding/binary"
	"math/bits"
)

// SHA256Size is the SHA-256 digest size in bytes.
const SHA256Size = 32

// sha256K holds the SHA-256 round constants (FIPS 180-4 Section 4.2.2).
var sha256K = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// SHA256 computes the SHA-256 message digest of a message.
//
// Returns a 32-byte (256-bit) digest.
func SHA256(message []byte) [SHA256Size]byte {
	h := [8]uint32{
		0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
		0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
	}

	full := len(message) &^ 63
	for i := 0; i < full; i += shaBlockSize {
		sha256Block(&h, message[i:i+shaBlockSize])
	}

	pad, padLen := shaPad(message[full:], uint64(len(message)))
	sha256Block(&h, pad[0:shaBlockSize])
	if padLen == 2*shaBlockSize {
		sha256Block(&h, pad[shaBlockSize:])
	}

	var digest [SHA256Size]byte
	for i, v := range h {
		binary.BigEndian.PutUint32(digest[i*4:], v)
	}
	return digest
}

// SHA256Slice computes the SHA-256 digest and returns it as a slice.
// This is a convenience function for cases where a slice is preferred.
func SHA256Slice(message []byte) []byte {
	digest := SHA256(message)
	return digest[:]
}

// sha256Block runs the SHA-256 compression function over one 64-byte block.
func sha256Block(h *[8]uint32, m []byte) {
	// Same 16-word ring-buffer schedule as SHA-1, with the sigma recurrence
	// written back into the slot being read.
	var w [16]uint32
	for t := 0; t < 16; t++ {
		w[t] = binary.BigEndian.Uint32(m[t*4:])
	}

	a, b, c, d, e, f, g, hh := h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7]

	for t := 0; t < 64; t++ {
		wt2 := w[(t+14)&15]
		ssig1 := bits.RotateLeft32(wt2, -17) ^ bits.RotateLeft32(wt2, -19) ^ (wt2 >> 10)
		wt7 := w[(t+9)&15]
		wt15 := w[(t+1)&15]
		ssig0 := bits.RotateLeft32(wt15, -7) ^ bits.RotateLeft32(wt15, -18) ^ (wt15 >> 3)
		wt := w[t&15]
		w[t&15] = ssig1 + wt7 + ssig0 + wt

		bsig1 := bits.RotateLeft32(e, -6) ^ bits.RotateLeft32(e, -11) ^ bits.RotateLeft32(e, -25)
		ch := (e & f) ^ (^e & g)
		t1 := hh + bsig1 + ch + sha256K[t] + wt

		bsig0 := bits.RotateLeft32(a, -2) ^ bits.RotateLeft32(a, -13) ^ bits.RotateLeft32(a, -22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := bsig0 + maj

		hh = g
		g = f
		f = e
		e = d + t1
		d = c
		c = b
		b = a
		a = t1 + t2
	}

	h[0] += a
	h[1] += b
	h[2] += c
	h[3] += d
	h[4] += e
	h[5] += f
	h[6] += g
	h[7] += hh
}
