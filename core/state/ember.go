package state

import (
	"math/big"

	"ashforge/native/ember"
)

// MultiplierWord loads a principal's packed multiplier word. Missing
// principals read as the zero word (both sub-fields unset).
func (m *Manager) MultiplierWord(principal [20]byte) (ember.MultiplierWord, error) {
	var word ember.MultiplierWord
	data, err := m.getRaw(hashKey(emberWordPrefix, principal[:]))
	if err != nil || len(data) != 32 {
		return word, err
	}
	copy(word[:], data)
	return word, nil
}

// SetMultiplierWord stores a principal's packed multiplier word.
func (m *Manager) SetMultiplierWord(principal [20]byte, w ember.MultiplierWord) error {
	return m.db.Put(hashKey(emberWordPrefix, principal[:]), w[:])
}

// ProofLeafConsumed reports whether a multiplier-unlock fingerprint has been
// spent. The mark is write-once so presence of the key is the whole answer.
func (m *Manager) ProofLeafConsumed(leaf [32]byte) (bool, error) {
	return m.db.Has(hashKey(emberLeafPrefix, leaf[:]))
}

// SetProofLeafConsumed marks a multiplier-unlock fingerprint as spent.
func (m *Manager) SetProofLeafConsumed(leaf [32]byte) error {
	return m.setFlag(hashKey(emberLeafPrefix, leaf[:]))
}

// TokenWeight returns the registered weight for a token id.
func (m *Manager) TokenWeight(id *big.Int) (*big.Int, bool, error) {
	data, err := m.getRaw(hashKey(emberWeightPrefix, id.Bytes()))
	if err != nil || len(data) == 0 {
		return nil, false, err
	}
	return new(big.Int).SetBytes(data), true, nil
}

// SetTokenWeight stores a token id's weight. Append-only semantics are
// enforced by the engine.
func (m *Manager) SetTokenWeight(id *big.Int, weight *big.Int) error {
	return m.db.Put(hashKey(emberWeightPrefix, id.Bytes()), weight.Bytes())
}

func userAshSuffix(cycle uint64, principal [20]byte) []byte {
	buf := make([]byte, 8+20)
	copy(buf, uint64Suffix(cycle))
	copy(buf[8:], principal[:])
	return buf
}

// UserAsh returns the accrued ash for a principal in a cycle.
func (m *Manager) UserAsh(cycle uint64, principal [20]byte) (*big.Int, error) {
	data, err := m.getRaw(hashKey(emberUserAshPrefix, userAshSuffix(cycle, principal)))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(data), nil
}

// SetUserAsh stores the accrued ash for a principal in a cycle.
func (m *Manager) SetUserAsh(cycle uint64, principal [20]byte, total *big.Int) error {
	return m.db.Put(hashKey(emberUserAshPrefix, userAshSuffix(cycle, principal)), total.Bytes())
}

// TotalAsh returns the global accrued ash for a cycle.
func (m *Manager) TotalAsh(cycle uint64) (*big.Int, error) {
	data, err := m.getRaw(hashKey(emberTotalAshPrefix, uint64Suffix(cycle)))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(data), nil
}

// SetTotalAsh stores the global accrued ash for a cycle.
func (m *Manager) SetTotalAsh(cycle uint64, total *big.Int) error {
	return m.db.Put(hashKey(emberTotalAshPrefix, uint64Suffix(cycle)), total.Bytes())
}
