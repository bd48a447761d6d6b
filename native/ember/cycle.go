package ember

import "math/big"

// scaleAsh applies the principal's multiplier projection to a raw ash total.
// Truncating integer division is used throughout, and composition is a
// single-step floor: floor(ash * numerator * quantityMultiplier / precision),
// never two chained divisions.
func scaleAsh(ash *big.Int, word MultiplierWord, precision uint64) *big.Int {
	numerator := word.Numerator()
	quantity := word.QuantityMultiplier()
	hasNumerator := numerator.Sign() > 0
	hasQuantity := quantity.Sign() > 0

	switch {
	case hasNumerator && hasQuantity:
		scaled := new(big.Int).Mul(ash, numerator)
		scaled.Mul(scaled, quantity)
		return scaled.Quo(scaled, new(big.Int).SetUint64(precision))
	case hasNumerator:
		scaled := new(big.Int).Mul(ash, numerator)
		return scaled.Quo(scaled, new(big.Int).SetUint64(precision))
	case hasQuantity:
		return new(big.Int).Mul(ash, quantity)
	default:
		return new(big.Int).Set(ash)
	}
}

// weighBatch converts a batch of deposited token units into raw ash using the
// append-only weight table.
func weighBatch(st EngineState, ids []*big.Int, quantities []*big.Int) (*big.Int, error) {
	if len(ids) != len(quantities) {
		return nil, ErrLengthMismatch
	}
	if len(ids) == 0 {
		return nil, ErrEmptyBatch
	}
	ash := big.NewInt(0)
	for i := range ids {
		// Weight lookups key on the id's magnitude, so a negative id would
		// alias the weight registered for its positive counterpart.
		if ids[i] == nil || ids[i].Sign() < 0 {
			return nil, ErrInvalidTokenID
		}
		if quantities[i] == nil || quantities[i].Sign() <= 0 {
			return nil, ErrInvalidQuantity
		}
		weight, ok, err := st.TokenWeight(ids[i])
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrWeightUnset
		}
		ash.Add(ash, new(big.Int).Mul(quantities[i], weight))
	}
	return ash, nil
}
