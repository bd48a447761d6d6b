package claims

import (
	"encoding/binary"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Leaf encodings are order-sensitive by construction: each claim variant
// fixes its field order once and never changes it, since a reordering would
// silently invalidate every previously published proof for that variant.
// The encoded bytes are what the distribution trees hash; Fingerprint derives
// the replay key from the same bytes.

// EncodeWindowClaim encodes a window-gated claim as
// epochID (8 bytes BE) || recipient (20) || amount (32 BE).
func EncodeWindowClaim(epochID uint64, recipient [20]byte, amount *big.Int) []byte {
	buf := make([]byte, 8+20+32)
	binary.BigEndian.PutUint64(buf[:8], epochID)
	copy(buf[8:28], recipient[:])
	if amount != nil && amount.Sign() > 0 {
		amount.FillBytes(buf[28:60])
	}
	return buf
}

// EncodeBitClaim encodes a bitmap-variant claim as
// recipient (20) || mask (32 BE).
func EncodeBitClaim(recipient [20]byte, mask *big.Int) []byte {
	buf := make([]byte, 20+32)
	copy(buf[:20], recipient[:])
	if mask != nil && mask.Sign() > 0 {
		mask.FillBytes(buf[20:52])
	}
	return buf
}

// Fingerprint derives the deterministic replay key for an encoded leaf.
func Fingerprint(encoded []byte) [32]byte {
	var fp [32]byte
	copy(fp[:], ethcrypto.Keccak256(encoded))
	return fp
}
