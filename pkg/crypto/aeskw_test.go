package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// RFC 3394 Section 4.1: wrap 128 bits of key data with a 128-bit KEK.
const (
	kwTestKEK        = "000102030405060708090A0B0C0D0E0F"
	kwTestPlaintext  = "00112233445566778899AABBCCDDEEFF"
	kwTestCiphertext = "1FA68B0A8112B447AEF34BD8FB5A7B829D3E862371D2CFE5"
)

func TestAESKeyWrapRFC3394Vector(t *testing.T) {
	key := mustHex(t, kwTestKEK)
	plaintext := mustHex(t, kwTestPlaintext)
	expected := mustHex(t, kwTestCiphertext)

	wrapped, err := AESKeyWrap(key, plaintext)
	require.NoError(t, err)
	require.Equal(t, expected, wrapped)
}

func TestAESKeyUnwrapRFC3394Vector(t *testing.T) {
	key := mustHex(t, kwTestKEK)
	wrapped := mustHex(t, kwTestCiphertext)
	expected := mustHex(t, kwTestPlaintext)

	plaintext, err := AESKeyUnwrap(key, wrapped)
	require.NoError(t, err)
	require.Equal(t, expected, plaintext)
}

func TestAESKeyWrapRoundtrip(t *testing.T) {
	key := mustHex(t, kwTestKEK)

	for _, n := range []int{1, 2, 3, 4, 8, 42} {
		plaintext := make([]byte, n*AESKWBlockSize)
		for i := range plaintext {
			plaintext[i] = byte(i)
		}

		wrapped, err := AESKeyWrap(key, plaintext)
		require.NoError(t, err)
		require.Len(t, wrapped, (n+1)*AESKWBlockSize)

		unwrapped, err := AESKeyUnwrap(key, wrapped)
		require.NoError(t, err)
		require.Equal(t, plaintext, unwrapped)
	}
}

func TestAESKeyWrapDeterministic(t *testing.T) {
	key := mustHex(t, kwTestKEK)
	plaintext := mustHex(t, kwTestPlaintext)

	first, err := AESKeyWrap(key, plaintext)
	require.NoError(t, err)
	second, err := AESKeyWrap(key, plaintext)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestAESKeyUnwrapIntegrityCheck(t *testing.T) {
	key := mustHex(t, kwTestKEK)
	wrapped := mustHex(t, kwTestCiphertext)

	for i := range wrapped {
		tampered := make([]byte, len(wrapped))
		copy(tampered, wrapped)
		tampered[i] ^= 0x01
		_, err := AESKeyUnwrap(key, tampered)
		require.ErrorIs(t, err, ErrAESKWIntegrityCheckFailed, "bit flip at byte %d not detected", i)
	}

	// Wrong KEK
	wrongKey := make([]byte, AESKWKeySize)
	_, err := AESKeyUnwrap(wrongKey, wrapped)
	require.ErrorIs(t, err, ErrAESKWIntegrityCheckFailed)
}

func TestAESKeyWrapInvalidParams(t *testing.T) {
	key := mustHex(t, kwTestKEK)

	_, err := AESKeyWrap(make([]byte, 24), make([]byte, 16))
	require.ErrorIs(t, err, ErrAESKWInvalidKeySize)
	_, err = AESKeyUnwrap(make([]byte, 24), make([]byte, 24))
	require.ErrorIs(t, err, ErrAESKWInvalidKeySize)

	for _, size := range []int{0, 4, 12, 43 * AESKWBlockSize} {
		_, err := AESKeyWrap(key, make([]byte, size))
		require.ErrorIs(t, err, ErrAESKWInvalidPlaintextSize, "plaintext size %d", size)
	}

	for _, size := range []int{0, 8, 12, 44 * AESKWBlockSize} {
		_, err := AESKeyUnwrap(key, make([]byte, size))
		require.ErrorIs(t, err, ErrAESKWInvalidCiphertextSize, "ciphertext size %d", size)
	}
}

func BenchmarkAESKeyWrap(b *testing.B) {
	key := make([]byte, AESKWKeySize)
	plaintext := make([]byte, 32)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = AESKeyWrap(key, plaintext)
	}
}
