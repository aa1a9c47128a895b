// Nonce construction for ZigBee frame security.
// This implements the CCM nonce format from the ZigBee specification
// (document 05-3474-21, section 4.5.2.2).

package crypto

import "encoding/binary"

// NetworkNonceSize is the ZigBee CCM nonce length in bytes.
const NetworkNonceSize = 13

// BuildNetworkNonce constructs the 13-byte nonce used to protect ZigBee
// network- and application-layer frames.
//
// Format: SourceAddress (8 bytes LE) || FrameCounter (4 bytes LE) ||
// SecurityControl (1 byte), matching the octet order of the fields as they
// appear in the auxiliary frame header.
//
// Parameters:
//   - sourceAddr: IEEE extended (64-bit) address of the frame source
//   - frameCounter: outgoing frame counter for the key in use
//   - securityControl: the auxiliary header's security control byte
//
// Returns a nonce suitable for AESCCM Seal/Open with the default parameters.
func BuildNetworkNonce(sourceAddr uint64, frameCounter uint32, securityControl byte) []byte {
	nonce := make([]byte, NetworkNonceSize)

	// Bytes 0-7: source extended address (little-endian)
	binary.LittleEndian.PutUint64(nonce[0:8], sourceAddr)

	// Bytes 8-11: frame counter (little-endian)
	binary.LittleEndian.PutUint32(nonce[8:12], frameCounter)

	// Byte 12: security control
	nonce[12] = securityControl

	return nonce
}
