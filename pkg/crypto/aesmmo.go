// Package crypto provides the AES-128-based cryptographic primitives of the
// ZigBee security stack: CCM and GCM authenticated encryption, RFC 3394 key
// wrap, the Matyas-Meyer-Oseas hash, SHA-1, SHA-256, and a Base64 encoder.
package crypto

import "crypto/aes"

// AES-MMO constants from the ZigBee specification (document 05-3474-21,
// section B.6 Block-Cipher-Based Cryptographic Hash Function).
const (
	// AESMMOSize is the digest size in bytes.
	AESMMOSize = 16

	// AESMMOBlockSize is the hash block size in bytes.
	AESMMOBlockSize = 16

	// aesMMOLongInput is the message length in bytes at which the padding
	// switches from the 16-bit to the 32-bit bit-length encoding. The
	// switch is driven by the original message length, not the padded one.
	aesMMOLongInput = 8192
)

// AESMMO computes the Matyas-Meyer-Oseas hash of a message:
// Hash_0 = 0^128, Hash_j = E(Hash_{j-1}, M_j) xor M_j, with the previous
// digest acting as the AES key for each block.
func AESMMO(message []byte) [AESMMOSize]byte {
	var digest [AESMMOSize]byte

	full := len(message) &^ 15
	for r := 0; r < full; r += AESMMOBlockSize {
		mmoCompress(&digest, message[r:r+AESMMOBlockSize])
	}

	// Final padded block(s): 0x80, zeros, bit length
	var p [AESMMOBlockSize]byte
	r := copy(p[:], message[full:])
	p[r] = 0x80
	r++

	long := len(message) >= aesMMOLongInput
	if (!long && r > 14) || (long && r > 10) {
		// No room for the length field, emit the first of 2 padded blocks
		mmoCompress(&digest, p[:])
		p = [AESMMOBlockSize]byte{}
	}

	bits := uint64(len(message)) * 8
	if !long {
		p[14] = byte(bits >> 8)
		p[15] = byte(bits)
	} else {
		p[10] = byte(bits >> 24)
		p[11] = byte(bits >> 16)
		p[12] = byte(bits >> 8)
		p[13] = byte(bits)
	}
	mmoCompress(&digest, p[:])

	return digest
}

// AESMMOSlice computes the AES-MMO hash and returns it as a slice.
// This is a convenience function for cases where a slice is preferred.
func AESMMOSlice(message []byte) []byte {
	digest := AESMMO(message)
	return digest[:]
}

// mmoCompress runs one MMO compression round: state = E(state, block) xor
// block. The construction demands a fresh AES key schedule per block.
func mmoCompress(state *[AESMMOSize]byte, block []byte) {
	c, _ := aes.NewCipher(state[:]) // 16-byte key, cannot fail
	var out [aesBlockSize]byte
	c.Encrypt(out[:], block)
	for i := range state {
		state[i] = out[i] ^ block[i]
	}
}

// HMACAESMMO computes the keyed hash function for message authentication
// from ZigBee section B.1.4: HMAC per FIPS PUB 198 instantiated with AES-MMO,
// block size 16 bytes.
func HMACAESMMO(key, message []byte) [AESMMOSize]byte {
	var k0 [AESMMOBlockSize]byte
	if len(key) > AESMMOBlockSize {
		d := AESMMO(key)
		copy(k0[:], d[:])
	} else {
		copy(k0[:], key)
	}

	inner := make([]byte, AESMMOBlockSize+len(message))
	for i, b := range k0 {
		inner[i] = b ^ 0x36
	}
	copy(inner[AESMMOBlockSize:], message)
	innerDigest := AESMMO(inner)

	outer := make([]byte, AESMMOBlockSize+AESMMOSize)
	for i, b := range k0 {
		outer[i] = b ^ 0x5C
	}
	copy(outer[AESMMOBlockSize:], innerDigest[:])
	return AESMMO(outer)
}
