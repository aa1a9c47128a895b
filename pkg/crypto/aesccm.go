// AES-CCM implementation for the ZigBee security stack.
// This implements AES-128-CCM as defined in NIST SP 800-38C and RFC 3610.
// ZigBee (document 05-3474-21, section 4.5) uses CCM with:
//   - Key length: 128 bits (16 bytes)
//   - Nonce length: 13 bytes (L = 2)
//   - MIC/Tag length: 4, 8 or 16 bytes depending on the security level

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"errors"
)

const (
	// AESCCMKeySize is the AES-128 key size in bytes.
	AESCCMKeySize = 16

	// AESCCMTagSize is the default authentication tag size in bytes.
	AESCCMTagSize = 16

	// AESCCMNonceSize is the default nonce size in bytes. 13-byte nonces
	// are the ones the ZigBee network layer builds (see BuildNetworkNonce).
	AESCCMNonceSize = 13

	// aesBlockSize is the AES block size (always 16 bytes).
	aesBlockSize = 16
)

// Errors
var (
	ErrAESCCMInvalidKeySize     = errors.New("aesccm: invalid key size, must be 16 bytes")
	ErrAESCCMInvalidNonceSize   = errors.New("aesccm: invalid nonce size")
	ErrAESCCMInvalidTagSize     = errors.New("aesccm: invalid tag size, must be 4, 6, 8, 10, 12, 14, or 16")
	ErrAESCCMPayloadTooLong     = errors.New("aesccm: payload too long")
	ErrAESCCMCiphertextTooShort = errors.New("aesccm: ciphertext too short")
	ErrAESCCMAuthFailed         = errors.New("aesccm: message authentication failed")
)

// AESCCM represents an AES-128-CCM cipher instance with configurable parameters.
type AESCCM struct {
	block   cipher.Block
	tagSize int // M: authentication tag size (4, 6, 8, 10, 12, 14, or 16)
	lenSize int // L: length field size (15 - nonceSize), 2-8
}

// NewAESCCM creates a new AES-128-CCM cipher with a 13-byte nonce and a
// 16-byte tag. The key must be exactly 16 bytes (128 bits).
func NewAESCCM(key []byte) (*AESCCM, error) {
	return NewAESCCMWithParams(key, AESCCMNonceSize, AESCCMTagSize)
}

// NewAESCCMWithParams creates a new AES-128-CCM cipher with configurable
// parameters, covering the full NIST SP 800-38C parameter space.
//
// Parameters:
//   - key: 16-byte AES-128 key
//   - nonceSize: nonce length in bytes (7-13, so that 2 <= L <= 8)
//   - tagSize: authentication tag length in bytes (4, 6, 8, 10, 12, 14, or 16)
func NewAESCCMWithParams(key []byte, nonceSize, tagSize int) (*AESCCM, error) {
	if len(key) != AESCCMKeySize {
		return nil, ErrAESCCMInvalidKeySize
	}

	// L = 15 - n must fit the counter and length fields
	lenSize := 15 - nonceSize
	if lenSize < 2 || lenSize > 8 {
		return nil, ErrAESCCMInvalidNonceSize
	}

	if tagSize < 4 || tagSize > 16 || tagSize%2 != 0 {
		return nil, ErrAESCCMInvalidTagSize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return &AESCCM{
		block:   block,
		tagSize: tagSize,
		lenSize: lenSize,
	}, nil
}

// NonceSize returns the required nonce size for this cipher.
func (c *AESCCM) NonceSize() int {
	return 15 - c.lenSize
}

// TagSize returns the authentication tag size for this cipher.
func (c *AESCCM) TagSize() int {
	return c.tagSize
}

// maxPayloadLen returns the largest payload length encodable in the L-byte
// length field, capped at 2^31-1 bytes (the cap applies for L >= 4).
func (c *AESCCM) maxPayloadLen() int {
	if c.lenSize >= 4 {
		return 1<<31 - 1
	}
	return 1<<(8*c.lenSize) - 1
}

// Seal encrypts and authenticates payload with associated data.
// This implements the generation-encryption process of NIST SP 800-38C
// Section 6.1.
//
// Parameters:
//   - nonce: nonce of the configured size, unique per key
//   - payload: data to encrypt
//   - ad: associated data (authenticated, not encrypted)
//
// Returns ciphertext || encrypted tag.
func (c *AESCCM) Seal(nonce, payload, ad []byte) ([]byte, error) {
	if len(nonce) != c.NonceSize() {
		return nil, ErrAESCCMInvalidNonceSize
	}
	if len(payload) > c.maxPayloadLen() {
		return nil, ErrAESCCMPayloadTooLong
	}

	// Raw tag T over B_0 || AD || payload
	tag := c.computeTag(nonce, payload, ad)

	ciphertext := make([]byte, len(payload)+c.tagSize)

	// U = T xor MSBtlen(S_0)
	s0 := c.generateS0(nonce)
	for i := 0; i < c.tagSize; i++ {
		ciphertext[len(payload)+i] = tag[i] ^ s0[i]
	}

	// Payload keystream starts at counter 1
	c.ctrXOR(nonce, ciphertext[:len(payload)], payload)

	return ciphertext, nil
}

// Open decrypts and verifies ciphertext with associated data.
// This implements the decryption-verification process of NIST SP 800-38C
// Section 6.2.
//
// Parameters:
//   - nonce: nonce of the configured size (same as used for encryption)
//   - ciphertext: encrypted data followed by the encrypted tag
//   - ad: associated data
//
// Returns the decrypted payload, or ErrAESCCMAuthFailed if the tag does not
// verify. On failure no plaintext is returned.
func (c *AESCCM) Open(nonce, ciphertext, ad []byte) ([]byte, error) {
	if len(nonce) != c.NonceSize() {
		return nil, ErrAESCCMInvalidNonceSize
	}
	if len(ciphertext) < c.tagSize {
		return nil, ErrAESCCMCiphertextTooShort
	}

	encryptedData := ciphertext[:len(ciphertext)-c.tagSize]
	encryptedTag := ciphertext[len(ciphertext)-c.tagSize:]

	// Undo U = T xor MSBtlen(S_0)
	s0 := c.generateS0(nonce)
	receivedTag := make([]byte, c.tagSize)
	for i := 0; i < c.tagSize; i++ {
		receivedTag[i] = encryptedTag[i] ^ s0[i]
	}

	payload := make([]byte, len(encryptedData))
	c.ctrXOR(nonce, payload, encryptedData)

	expectedTag := c.computeTag(nonce, payload, ad)

	if subtle.ConstantTimeCompare(receivedTag, expectedTag[:c.tagSize]) != 1 {
		return nil, ErrAESCCMAuthFailed
	}

	return payload, nil
}

// computeTag computes the CBC-MAC authentication tag over the formatted
// input per NIST SP 800-38C Appendix A.2.
func (c *AESCCM) computeTag(nonce, payload, ad []byte) []byte {
	// B_0: Flags = Reserved(1) || Adata(1) || M'(3) || L'(3)
	// M' = (tagSize - 2) / 2, L' = L - 1
	var b0 [aesBlockSize]byte
	flags := byte(0)
	if len(ad) > 0 {
		flags |= 1 << 6
	}
	flags |= byte((c.tagSize-2)/2) << 3
	flags |= byte(c.lenSize - 1)

	b0[0] = flags
	nonceSize := c.NonceSize()
	copy(b0[1:1+nonceSize], nonce)
	// Trailing L bytes carry the payload length, big-endian
	c.putLength(b0[1+nonceSize:], len(payload))

	// Y_0 = CIPH_K(B_0)
	mac := make([]byte, aesBlockSize)
	c.block.Encrypt(mac, b0[:])

	if len(ad) > 0 {
		// AD length prefix per A.2.2:
		// 0 < a < 2^16-2^8: two bytes
		// 2^16-2^8 <= a < 2^32: 0xFFFE || four bytes
		// 2^32 <= a < 2^64: 0xFFFF || eight bytes
		var adBlock [aesBlockSize]byte
		adLen := len(ad)
		var headerLen int

		if adLen < (1<<16)-(1<<8) {
			binary.BigEndian.PutUint16(adBlock[0:2], uint16(adLen))
			headerLen = 2
		} else if uint64(adLen) < 1<<32 {
			adBlock[0] = 0xFF
			adBlock[1] = 0xFE
			binary.BigEndian.PutUint32(adBlock[2:6], uint32(adLen))
			headerLen = 6
		} else {
			adBlock[0] = 0xFF
			adBlock[1] = 0xFF
			binary.BigEndian.PutUint64(adBlock[2:10], uint64(adLen))
			headerLen = 10
		}

		firstBlockAD := aesBlockSize - headerLen
		if firstBlockAD > len(ad) {
			firstBlockAD = len(ad)
		}
		copy(adBlock[headerLen:], ad[:firstBlockAD])

		for i := 0; i < aesBlockSize; i++ {
			mac[i] ^= adBlock[i]
		}
		c.block.Encrypt(mac, mac)

		remaining := ad[firstBlockAD:]
		for len(remaining) > 0 {
			var block [aesBlockSize]byte
			n := copy(block[:], remaining)
			remaining = remaining[n:]

			for i := 0; i < aesBlockSize; i++ {
				mac[i] ^= block[i]
			}
			c.block.Encrypt(mac, mac)
		}
	}

	// Payload blocks, zero padded
	remaining := payload
	for len(remaining) > 0 {
		var block [aesBlockSize]byte
		n := copy(block[:], remaining)
		remaining = remaining[n:]

		for i := 0; i < aesBlockSize; i++ {
			mac[i] ^= block[i]
		}
		c.block.Encrypt(mac, mac)
	}

	return mac[:c.tagSize]
}

// generateS0 generates the S_0 keystream block used to encrypt the tag.
// S_0 = CIPH_K(A_0) where A_0 is the counter block with counter value 0.
func (c *AESCCM) generateS0(nonce []byte) []byte {
	// A_0 flags carry only L' = L - 1
	var a0 [aesBlockSize]byte
	a0[0] = byte(c.lenSize - 1)
	nonceSize := c.NonceSize()
	copy(a0[1:1+nonceSize], nonce)
	// Counter = 0 in the trailing L bytes

	s0 := make([]byte, aesBlockSize)
	c.block.Encrypt(s0, a0[:])
	return s0
}

// ctrXOR applies the CTR keystream starting at counter 1 to src, writing the
// result to dst. Counter blocks are formatted per NIST SP 800-38C Appendix A.3.
func (c *AESCCM) ctrXOR(nonce []byte, dst, src []byte) {
	var ctr [aesBlockSize]byte
	ctr[0] = byte(c.lenSize - 1)
	nonceSize := c.NonceSize()
	copy(ctr[1:1+nonceSize], nonce)
	ctr[aesBlockSize-1] = 1

	var keystream [aesBlockSize]byte
	for i := 0; i < len(src); i += aesBlockSize {
		c.block.Encrypt(keystream[:], ctr[:])

		end := i + aesBlockSize
		if end > len(src) {
			end = len(src)
		}
		for j := i; j < end; j++ {
			dst[j] = src[j] ^ keystream[j-i]
		}

		incrementCounter(ctr[aesBlockSize-c.lenSize:])
	}
}

// putLength encodes length into dst as a big-endian value over all of dst.
func (c *AESCCM) putLength(dst []byte, length int) {
	for i := c.lenSize - 1; i >= 0; i-- {
		dst[i] = byte(length)
		length >>= 8
	}
}

// incrementCounter increments a big-endian counter.
func incrementCounter(ctr []byte) {
	for i := len(ctr) - 1; i >= 0; i-- {
		ctr[i]++
		if ctr[i] != 0 {
			break
		}
	}
}

// AESCCMEncrypt is a convenience function for one-shot AES-128-CCM encryption
// with a 13-byte nonce and 16-byte tag. Returns ciphertext || tag.
func AESCCMEncrypt(key, nonce, payload, ad []byte) ([]byte, error) {
	ccm, err := NewAESCCM(key)
	if err != nil {
		return nil, err
	}
	return ccm.Seal(nonce, payload, ad)
}

// AESCCMDecrypt is a convenience function for one-shot AES-128-CCM decryption
// with a 13-byte nonce and 16-byte tag. Returns the decrypted payload, or
// ErrAESCCMAuthFailed if authentication fails.
func AESCCMDecrypt(key, nonce, ciphertext, ad []byte) ([]byte, error) {
	ccm, err := NewAESCCM(key)
	if err != nil {
		return nil, err
	}
	return ccm.Open(nonce, ciphertext, ad)
}
