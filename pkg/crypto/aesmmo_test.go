package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// ZigBee specification (document 05-3474-21) section C.5 test vectors.
// Vectors 3-6 pin the padding layout on both sides of the 8192-byte
// short/long length-encoding boundary.
var mmoTestVectors = []struct {
	name   string
	msgLen int    // messages are m[i] = i mod 256
	msg    string // explicit message (hex) overriding msgLen
	digest string
}{
	{name: "C.5.1_one_byte", msg: "c0", digest: "ae3a102a28d43ee0d4a09e22788b206c"},
	{name: "C.5.2_one_block", msg: "c0c1c2c3c4c5c6c7c8c9cacbcccdcecf", digest: "a7977e88bc0b61e8210827109a228f2d"},
	{name: "C.5.3_8191_bytes", msgLen: 8191, digest: "24ec2fe75bbffcb34789bc0610e7f165"},
	{name: "C.5.4_8192_bytes", msgLen: 8192, digest: "dc6b0687f09f8607131c170b3bd31591"},
	{name: "C.5.5_8201_bytes", msgLen: 8201, digest: "72c9b15e178aa843e4a16c58e33643a3"},
	{name: "C.5.6_8202_bytes", msgLen: 8202, digest: "bc9828d59b2aa323daf20be5f2e66511"},
}

func TestAESMMOVectors(t *testing.T) {
	for _, tc := range mmoTestVectors {
		t.Run(tc.name, func(t *testing.T) {
			var message []byte
			if tc.msg != "" {
				message = mustHex(t, tc.msg)
			} else {
				message = make([]byte, tc.msgLen)
				for i := range message {
					message[i] = byte(i)
				}
			}

			digest := AESMMO(message)
			if diff := cmp.Diff(tc.digest, hex.EncodeToString(digest[:])); diff != "" {
				t.Errorf("digest mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAESMMOEmptyMessage(t *testing.T) {
	// A single padded block: 0x80, zeros, zero bit length
	digest := AESMMO(nil)
	require.Equal(t, AESMMO([]byte{}), digest)
	require.Len(t, digest[:], AESMMOSize)
}

// TestAESMMOLengthSensitivity checks that appending a single byte changes
// the digest, including across the padding thresholds.
func TestAESMMOLengthSensitivity(t *testing.T) {
	for _, length := range []int{0, 1, 13, 14, 15, 16, 8190, 8191, 8192, 8201} {
		message := make([]byte, length+1)
		for i := range message {
			message[i] = byte(i)
		}

		short := AESMMO(message[:length])
		long := AESMMO(message)
		require.NotEqual(t, short, long, "digest unchanged after appending to %d-byte message", length)
	}
}

func TestAESMMODeterministic(t *testing.T) {
	message := []byte("install code")
	require.Equal(t, AESMMO(message), AESMMO(message))
}

func TestAESMMOSlice(t *testing.T) {
	message := mustHex(t, "c0")
	digest := AESMMO(message)
	require.Equal(t, digest[:], AESMMOSlice(message))
}

func TestHMACAESMMO(t *testing.T) {
	key := mustHex(t, "404142434445464748494a4b4c4d4e4f")
	message := []byte{0xc0}

	mac := HMACAESMMO(key, message)
	require.Len(t, mac[:], AESMMOSize)

	// Deterministic
	require.Equal(t, mac, HMACAESMMO(key, message))

	// Key sensitive
	otherKey := mustHex(t, "404142434445464748494a4b4c4d4e40")
	require.NotEqual(t, mac, HMACAESMMO(otherKey, message))

	// Message sensitive
	require.NotEqual(t, mac, HMACAESMMO(key, []byte{0xc1}))
	require.NotEqual(t, mac, HMACAESMMO(key, []byte{0xc0, 0x00}))
}

// A key longer than the 16-byte block is first hashed down, so it must
// produce the same MAC as its digest used directly.
func TestHMACAESMMOLongKey(t *testing.T) {
	longKey := make([]byte, 40)
	for i := range longKey {
		longKey[i] = byte(i)
	}
	message := []byte("keyed hash input")

	hashedKey := AESMMO(longKey)
	require.Equal(t, HMACAESMMO(hashedKey[:], message), HMACAESMMO(longKey, message))
}

func BenchmarkAESMMO(b *testing.B) {
	message := make([]byte, 256)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = AESMMO(message)
	}
}
