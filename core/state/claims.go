package state

import (
	"math/big"

	"ashforge/native/claims"
)

// ClaimWindow loads the window registered for an epoch identifier.
func (m *Manager) ClaimWindow(epochID uint64) (*claims.Window, bool, error) {
	w := new(claims.Window)
	ok, err := m.getRLP(hashKey(claimWindowPrefix, uint64Suffix(epochID)), w)
	if err != nil || !ok {
		return nil, false, err
	}
	return w, true, nil
}

// PutClaimWindow persists a window record. Create-once semantics are enforced
// by the engine, not here.
func (m *Manager) PutClaimWindow(epochID uint64, w *claims.Window) error {
	return m.putRLP(hashKey(claimWindowPrefix, uint64Suffix(epochID)), w)
}

// ClaimConsumed reports whether a claim fingerprint has been spent. The mark
// is write-once so presence of the key is the whole answer.
func (m *Manager) ClaimConsumed(leaf [32]byte) (bool, error) {
	return m.db.Has(hashKey(claimLeafPrefix, leaf[:]))
}

// SetClaimConsumed marks a claim fingerprint as spent. The mark is never
// unset.
func (m *Manager) SetClaimConsumed(leaf [32]byte) error {
	return m.setFlag(hashKey(claimLeafPrefix, leaf[:]))
}

// ClaimedBits returns the recipient's packed claim bitmap. Missing recipients
// read as zero.
func (m *Manager) ClaimedBits(recipient [20]byte) (*big.Int, error) {
	data, err := m.getRaw(hashKey(claimBitsPrefix, recipient[:]))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(data), nil
}

// SetClaimedBits stores the recipient's merged claim bitmap.
func (m *Manager) SetClaimedBits(recipient [20]byte, bits *big.Int) error {
	return m.db.Put(hashKey(claimBitsPrefix, recipient[:]), bits.Bytes())
}

// BitCategories returns the registered reward-category count for the bitmap
// variant, zero when unregistered.
func (m *Manager) BitCategories() (uint64, error) {
	data, err := m.getRaw(hashKey(claimBitCountKey, nil))
	if err != nil || len(data) != 8 {
		return 0, err
	}
	return new(big.Int).SetBytes(data).Uint64(), nil
}

// SetBitCategories stores the reward-category count.
func (m *Manager) SetBitCategories(count uint64) error {
	return m.db.Put(hashKey(claimBitCountKey, nil), uint64Suffix(count))
}

// MintedSupply returns the monotone disbursed-units counter.
func (m *Manager) MintedSupply() (*big.Int, error) {
	data, err := m.getRaw(hashKey(claimSupplyKey, nil))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(data), nil
}

// SetMintedSupply stores the disbursed-units counter.
func (m *Manager) SetMintedSupply(total *big.Int) error {
	return m.db.Put(hashKey(claimSupplyKey, nil), total.Bytes())
}

// PayoutWallet returns the configured funding wallet.
func (m *Manager) PayoutWallet() ([20]byte, bool, error) {
	var wallet [20]byte
	data, err := m.getRaw(hashKey(claimWalletKey, nil))
	if err != nil || len(data) != 20 {
		return wallet, false, err
	}
	copy(wallet[:], data)
	return wallet, true, nil
}

// SetPayoutWallet stores the funding wallet.
func (m *Manager) SetPayoutWallet(addr [20]byte) error {
	return m.db.Put(hashKey(claimWalletKey, nil), addr[:])
}

// ProgramRoot returns the commitment root registered for a module.
func (m *Manager) ProgramRoot(module string) ([32]byte, bool, error) {
	var root [32]byte
	data, err := m.getRaw(hashKey(programRootPrefix, []byte(module)))
	if err != nil || len(data) != 32 {
		return root, false, err
	}
	copy(root[:], data)
	return root, true, nil
}

// SetProgramRoot stores a module's commitment root.
func (m *Manager) SetProgramRoot(module string, root [32]byte) error {
	return m.db.Put(hashKey(programRootPrefix, []byte(module)), root[:])
}
