// AES-GCM implementation as defined in NIST SP 800-38D.
// Only AES-128 keys and 96-bit IVs are supported; the GHASH multiplier is
// the straightforward shift-and-xor construction over GF(2^128).

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"errors"
)

const (
	// AESGCMKeySize is the AES-128 key size in bytes.
	AESGCMKeySize = 16

	// AESGCMIVSize is the initialization vector size in bytes (96 bits).
	// Other IV sizes are not supported.
	AESGCMIVSize = 12

	// AESGCMTagSize is the full authentication tag size in bytes.
	AESGCMTagSize = 16
)

// Errors
var (
	ErrAESGCMInvalidKeySize     = errors.New("aesgcm: invalid key size, must be 16 bytes")
	ErrAESGCMInvalidIVSize      = errors.New("aesgcm: invalid IV size, must be 12 bytes")
	ErrAESGCMInvalidTagSize     = errors.New("aesgcm: invalid tag size, must be 4 to 16 bytes")
	ErrAESGCMCiphertextTooShort = errors.New("aesgcm: ciphertext too short")
	ErrAESGCMAuthFailed         = errors.New("aesgcm: message authentication failed")
)

// AESGCM represents an AES-128-GCM cipher instance.
type AESGCM struct {
	block   cipher.Block
	h       [aesBlockSize]byte // hash subkey H = CIPH_K(0^128)
	tagSize int
}

// NewAESGCM creates a new AES-128-GCM cipher with the full 16-byte tag.
// The key must be exactly 16 bytes (128 bits).
func NewAESGCM(key []byte) (*AESGCM, error) {
	return NewAESGCMWithTagSize(key, AESGCMTagSize)
}

// NewAESGCMWithTagSize creates a new AES-128-GCM cipher that emits and
// verifies tags truncated to tagSize bytes (4 to 16).
func NewAESGCMWithTagSize(key []byte, tagSize int) (*AESGCM, error) {
	if len(key) != AESGCMKeySize {
		return nil, ErrAESGCMInvalidKeySize
	}
	if tagSize < 4 || tagSize > AESGCMTagSize {
		return nil, ErrAESGCMInvalidTagSize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	g := &AESGCM{block: block, tagSize: tagSize}
	block.Encrypt(g.h[:], g.h[:])
	return g, nil
}

// NonceSize returns the required IV size for this cipher.
func (g *AESGCM) NonceSize() int {
	return AESGCMIVSize
}

// TagSize returns the authentication tag size for this cipher.
func (g *AESGCM) TagSize() int {
	return g.tagSize
}

// Seal encrypts and authenticates plaintext with additional authenticated
// data. This implements the authenticated encryption function of NIST SP
// 800-38D Section 7.1: the ciphertext is produced first, then the tag is
// computed over AAD and ciphertext.
//
// Returns ciphertext || tag.
func (g *AESGCM) Seal(iv, plaintext, aad []byte) ([]byte, error) {
	if len(iv) != AESGCMIVSize {
		return nil, ErrAESGCMInvalidIVSize
	}

	ciphertext := make([]byte, len(plaintext)+g.tagSize)
	g.gctr(iv, ciphertext[:len(plaintext)], plaintext)

	tag := g.tag(iv, aad, ciphertext[:len(plaintext)])
	copy(ciphertext[len(plaintext):], tag[:g.tagSize])

	return ciphertext, nil
}

// Open verifies and decrypts ciphertext with additional authenticated data.
// This implements the authenticated decryption function of NIST SP 800-38D
// Section 7.2: the tag is verified over the ciphertext before any plaintext
// is released.
//
// Returns the plaintext, or ErrAESGCMAuthFailed if the tag does not verify.
func (g *AESGCM) Open(iv, ciphertext, aad []byte) ([]byte, error) {
	if len(iv) != AESGCMIVSize {
		return nil, ErrAESGCMInvalidIVSize
	}
	if len(ciphertext) < g.tagSize {
		return nil, ErrAESGCMCiphertextTooShort
	}

	data := ciphertext[:len(ciphertext)-g.tagSize]
	receivedTag := ciphertext[len(ciphertext)-g.tagSize:]

	expectedTag := g.tag(iv, aad, data)
	if subtle.ConstantTimeCompare(receivedTag, expectedTag[:g.tagSize]) != 1 {
		return nil, ErrAESGCMAuthFailed
	}

	plaintext := make([]byte, len(data))
	g.gctr(iv, plaintext, data)
	return plaintext, nil
}

// Tag computes the full 16-byte authentication tag over AAD and text without
// encrypting anything. With an empty text this is GMAC (NIST SP 800-38D
// Section 3).
func (g *AESGCM) Tag(iv, aad, text []byte) ([AESGCMTagSize]byte, error) {
	if len(iv) != AESGCMIVSize {
		return [AESGCMTagSize]byte{}, ErrAESGCMInvalidIVSize
	}
	return g.tag(iv, aad, text), nil
}

// tag computes T = MSB(CIPH_K(J_0) xor GHASH_H(AAD, text)).
func (g *AESGCM) tag(iv, aad, text []byte) [AESGCMTagSize]byte {
	s := g.ghash(aad, text)

	// J_0 = IV || 0^31 || 1
	var j0 [aesBlockSize]byte
	copy(j0[0:AESGCMIVSize], iv)
	j0[15] = 1
	g.block.Encrypt(j0[:], j0[:])

	for i := range s {
		s[i] ^= j0[i]
	}
	return s
}

// ghash computes GHASH_H over AAD (zero padded), text (zero padded) and the
// 64-bit big-endian bit lengths of each.
func (g *AESGCM) ghash(aad, text []byte) [aesBlockSize]byte {
	var s [aesBlockSize]byte

	for i := 0; i < len(aad); i += aesBlockSize {
		end := i + aesBlockSize
		if end > len(aad) {
			end = len(aad)
		}
		for j := i; j < end; j++ {
			s[j-i] ^= aad[j]
		}
		gfMul(&s, &g.h)
	}

	for i := 0; i < len(text); i += aesBlockSize {
		end := i + aesBlockSize
		if end > len(text) {
			end = len(text)
		}
		for j := i; j < end; j++ {
			s[j-i] ^= text[j]
		}
		gfMul(&s, &g.h)
	}

	// len(A)64 || len(C)64, in bits
	var lengths [aesBlockSize]byte
	binary.BigEndian.PutUint64(lengths[0:8], uint64(len(aad))*8)
	binary.BigEndian.PutUint64(lengths[8:16], uint64(len(text))*8)
	for i := range s {
		s[i] ^= lengths[i]
	}
	gfMul(&s, &g.h)

	return s
}

// gctr applies the GCTR keystream to src, writing the result to dst.
// The pre-counter block is J_0 = IV || 0^31 || 1; data blocks start at
// inc32(J_0). The counter is the low 32 bits, big-endian, wrapping mod 2^32.
func (g *AESGCM) gctr(iv []byte, dst, src []byte) {
	var cb [aesBlockSize]byte
	copy(cb[0:AESGCMIVSize], iv)
	counter := uint32(1)

	var keystream [aesBlockSize]byte
	for i := 0; i < len(src); i += aesBlockSize {
		counter++
		binary.BigEndian.PutUint32(cb[12:16], counter)
		g.block.Encrypt(keystream[:], cb[:])

		end := i + aesBlockSize
		if end > len(src) {
			end = len(src)
		}
		for j := i; j < end; j++ {
			dst[j] = src[j] ^ keystream[j-i]
		}
	}
}

// gfMul computes the product x·y in GF(2^128) and stores it in x.
// Blocks are in big-endian bit order (bit 0 is the MSB of byte 0); the
// reduction polynomial is R = 0xE1 || 0^120. See NIST SP 800-38D Section 6.3.
func gfMul(x, y *[aesBlockSize]byte) {
	var z, v [aesBlockSize]byte
	v = *y

	for i := 0; i < 128; i++ {
		if x[i>>3]&(0x80>>(i&7)) != 0 {
			for j := range z {
				z[j] ^= v[j]
			}
		}
		lsb := v[15] & 1
		for j := 15; j > 0; j-- {
			v[j] = v[j]>>1 | v[j-1]<<7
		}
		v[0] >>= 1
		if lsb != 0 {
			v[0] ^= 0xe1
		}
	}

	*x = z
}

// AESGCMEncrypt is a convenience function for one-shot AES-128-GCM encryption
// with a full 16-byte tag. Returns ciphertext || tag.
func AESGCMEncrypt(key, iv, plaintext, aad []byte) ([]byte, error) {
	gcm, err := NewAESGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(iv, plaintext, aad)
}

// AESGCMDecrypt is a convenience function for one-shot AES-128-GCM decryption
// with a full 16-byte tag. Returns the plaintext, or ErrAESGCMAuthFailed if
// authentication fails.
func AESGCMDecrypt(key, iv, ciphertext, aad []byte) ([]byte, error) {
	gcm, err := NewAESGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Open(iv, ciphertext, aad)
}

// AESGCMTag is a convenience function computing a standalone GMAC over AAD
// and text.
func AESGCMTag(key, iv, aad, text []byte) ([AESGCMTagSize]byte, error) {
	gcm, err := NewAESGCM(key)
	if err != nil {
		return [AESGCMTagSize]byte{}, err
	}
	return gcm.Tag(iv, aad, text)
}
