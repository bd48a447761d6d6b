package ember

import (
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// MultiplierWord is the packed per-principal multiplier state: one 256-bit
// storage word holding two independently-unlockable 128-bit sub-fields. The
// numerator occupies the high 128 bits, the quantity multiplier the low 128.
// A zero sub-field means "unset/neutral"; each sub-field transitions at most
// once from zero to a nonzero value. All pack/unpack arithmetic lives in this
// file so the rest of the engine only ever sees the two logical fields.
type MultiplierWord [32]byte

var loMask = uint256.MustFromHex("0xffffffffffffffffffffffffffffffff")

func (w MultiplierWord) word() *uint256.Int {
	return new(uint256.Int).SetBytes(w[:])
}

// Numerator returns the high 128-bit sub-field. Zero means unset.
func (w MultiplierWord) Numerator() *big.Int {
	return new(uint256.Int).Rsh(w.word(), 128).ToBig()
}

// QuantityMultiplier returns the low 128-bit sub-field. Zero means unset.
func (w MultiplierWord) QuantityMultiplier() *big.Int {
	return new(uint256.Int).And(w.word(), loMask).ToBig()
}

// WithNumerator writes the high sub-field, leaving the low 128 bits
// untouched. The caller is responsible for the first-writer-wins check.
func (w MultiplierWord) WithNumerator(v *big.Int) (MultiplierWord, error) {
	val, err := sub128(v)
	if err != nil {
		return w, err
	}
	word := w.word()
	word.And(word, loMask)
	word.Or(word, new(uint256.Int).Lsh(val, 128))
	return MultiplierWord(word.Bytes32()), nil
}

// WithQuantityMultiplier writes the low sub-field, leaving the high 128 bits
// untouched.
func (w MultiplierWord) WithQuantityMultiplier(v *big.Int) (MultiplierWord, error) {
	val, err := sub128(v)
	if err != nil {
		return w, err
	}
	word := w.word()
	word.And(word, new(uint256.Int).Lsh(loMask, 128))
	word.Or(word, val)
	return MultiplierWord(word.Bytes32()), nil
}

func sub128(v *big.Int) (*uint256.Int, error) {
	if v == nil || v.Sign() <= 0 {
		return nil, ErrZeroUnlockValue
	}
	if v.BitLen() > 128 {
		return nil, ErrValueTooWide
	}
	val, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrValueTooWide
	}
	return val, nil
}

// EncodeMultiplierUnlock encodes a numerator-unlock entitlement as
// principal (20) || numerator (16 BE). The fingerprint binds the entitlement
// row to the principal it was published for, so a different address cannot
// consume it.
func EncodeMultiplierUnlock(principal [20]byte, numerator *big.Int) []byte {
	buf := make([]byte, 20+16)
	copy(buf[:20], principal[:])
	if numerator != nil && numerator.Sign() > 0 {
		numerator.FillBytes(buf[20:36])
	}
	return buf
}

// UnlockFingerprint derives the consumed-leaf key for an encoded unlock.
func UnlockFingerprint(encoded []byte) [32]byte {
	var fp [32]byte
	copy(fp[:], ethcrypto.Keccak256(encoded))
	return fp
}

// cycleIndex derives the accrual bucket for a timestamp. The index is always
// derived, never stored per deposit.
func cycleIndex(now, initialTime, cycleDuration uint64) (uint64, error) {
	if cycleDuration == 0 || now < initialTime {
		return 0, ErrAccrualNotStarted
	}
	return (now - initialTime) / cycleDuration, nil
}
