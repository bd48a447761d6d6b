package claims

import "math/big"

// checkUnconsumed rejects a fingerprint that has already been spent. This is
// the single most safety-critical gate and is evaluated strictly before any
// external value transfer.
func checkUnconsumed(st EngineState, leaf [32]byte) error {
	consumed, err := st.ClaimConsumed(leaf)
	if err != nil {
		return err
	}
	if consumed {
		return ErrAlreadyClaimed
	}
	return nil
}

// validateMask checks a bitmap-variant mask against the registered category
// count and the recipient's already-claimed bits, returning the merged bitmap
// on success.
func validateMask(claimed, mask *big.Int, categories uint64) (*big.Int, error) {
	if mask == nil || mask.Sign() <= 0 {
		return nil, ErrZeroMask
	}
	if uint64(mask.BitLen()) > categories {
		return nil, ErrMaskOutOfRange
	}
	if new(big.Int).And(claimed, mask).Sign() != 0 {
		return nil, ErrBitsOverlap
	}
	return new(big.Int).Or(claimed, mask), nil
}

// popCount returns the number of set bits in a mask.
func popCount(mask *big.Int) uint64 {
	var n uint64
	for _, w := range mask.Bits() {
		for ; w != 0; w &= w - 1 {
			n++
		}
	}
	return n
}

// maskBits lists the set bit indices of a mask in ascending order.
func maskBits(mask *big.Int) []uint64 {
	bits := make([]uint64, 0, popCount(mask))
	for i := 0; i < mask.BitLen(); i++ {
		if mask.Bit(i) == 1 {
			bits = append(bits, uint64(i))
		}
	}
	return bits
}
