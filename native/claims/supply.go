package claims

import "math/big"

// reserveSupply checks the amount against the immutable ceiling and returns
// the new running total. Nothing is persisted here; the engine commits the
// total only once the payout collaborator has accepted the transfer, so a
// failed attempt never moves the counter.
func reserveSupply(st EngineState, cap *big.Int, amount *big.Int) (*big.Int, error) {
	minted, err := st.MintedSupply()
	if err != nil {
		return nil, err
	}
	total := new(big.Int).Add(minted, amount)
	if cap != nil && cap.Sign() > 0 && total.Cmp(cap) > 0 {
		return nil, ErrSupplyExceeded
	}
	return total, nil
}
