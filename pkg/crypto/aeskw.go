// AES Key Wrap (RFC 3394) over AES-128.

package crypto

import (
	"crypto/aes"
	"crypto/subtle"
	"errors"
)

const (
	// AESKWKeySize is the key-encryption-key size in bytes.
	AESKWKeySize = 16

	// AESKWBlockSize is the semiblock size of the wrap algorithm in bytes.
	AESKWBlockSize = 8

	// AESKWMaxBlocks is the largest supported number of plaintext
	// semiblocks. The bound keeps every round counter n*j+i below 256.
	AESKWMaxBlocks = 42
)

// aeskwIV is the RFC 3394 Section 2.2.3.1 initial value.
var aeskwIV = [AESKWBlockSize]byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

// Errors
var (
	ErrAESKWInvalidKeySize        = errors.New("aeskw: invalid key size, must be 16 bytes")
	ErrAESKWInvalidPlaintextSize  = errors.New("aeskw: plaintext must be 1 to 42 blocks of 8 bytes")
	ErrAESKWInvalidCiphertextSize = errors.New("aeskw: ciphertext must be 2 to 43 blocks of 8 bytes")
	ErrAESKWIntegrityCheckFailed  = errors.New("aeskw: integrity check failed")
)

// AESKeyWrap wraps plaintext key material per RFC 3394 Section 2.2.1.
// The plaintext must be n*8 bytes with 1 <= n <= 42; the result is
// (n+1)*8 bytes.
func AESKeyWrap(key, plaintext []byte) ([]byte, error) {
	if len(key) != AESKWKeySize {
		return nil, ErrAESKWInvalidKeySize
	}
	n := len(plaintext) / AESKWBlockSize
	if len(plaintext)%AESKWBlockSize != 0 || n < 1 || n > AESKWMaxBlocks {
		return nil, ErrAESKWInvalidPlaintextSize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	ciphertext := make([]byte, (n+1)*AESKWBlockSize)
	r := ciphertext[AESKWBlockSize:]
	copy(r, plaintext)

	// b holds A || R[i] for each encryption
	var b [aesBlockSize]byte
	copy(b[0:8], aeskwIV[:])

	for j := 0; j <= 5; j++ {
		for i := 1; i <= n; i++ {
			copy(b[8:16], r[(i-1)*AESKWBlockSize:])
			block.Encrypt(b[:], b[:])
			// A = MSB64(B) xor t; t = n*j+i fits one byte for n <= 42
			b[7] ^= byte(n*j + i)
			copy(r[(i-1)*AESKWBlockSize:], b[8:16])
		}
	}

	copy(ciphertext[0:8], b[0:8])
	return ciphertext, nil
}

// AESKeyUnwrap is the exact inverse of AESKeyWrap (RFC 3394 Section 2.2.2).
// The wrapped input must be (n+1)*8 bytes with 1 <= n <= 42. Returns the
// n*8-byte plaintext, or ErrAESKWIntegrityCheckFailed if the recovered
// initial value does not match.
func AESKeyUnwrap(key, wrapped []byte) ([]byte, error) {
	if len(key) != AESKWKeySize {
		return nil, ErrAESKWInvalidKeySize
	}
	n := len(wrapped)/AESKWBlockSize - 1
	if len(wrapped)%AESKWBlockSize != 0 || n < 1 || n > AESKWMaxBlocks {
		return nil, ErrAESKWInvalidCiphertextSize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, n*AESKWBlockSize)
	copy(plaintext, wrapped[AESKWBlockSize:])

	var b [aesBlockSize]byte
	copy(b[0:8], wrapped[0:8])

	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			b[7] ^= byte(n*j + i)
			copy(b[8:16], plaintext[(i-1)*AESKWBlockSize:])
			block.Decrypt(b[:], b[:])
			copy(plaintext[(i-1)*AESKWBlockSize:], b[8:16])
		}
	}

	if subtle.ConstantTimeCompare(b[0:8], aeskwIV[:]) != 1 {
		return nil, ErrAESKWIntegrityCheckFailed
	}
	return plaintext, nil
}
