// Package state persists the engine-owned maps and counters. Keys are
// keccak256 digests of a readable prefix plus the raw identifier, values are
// RLP or raw big-endian bytes, matching the hashed-key layout the storage
// backends expect.
package state

import (
	"encoding/binary"
	"errors"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"ashforge/storage"
)

// Manager provides typed accessors over a key-value store for every persisted
// structure the engines own. It implements the narrow state interfaces the
// engine packages declare. Manager is not safe for concurrent use; the
// engines serialise access.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func hashKey(prefix string, suffix []byte) []byte {
	buf := make([]byte, len(prefix)+len(suffix))
	copy(buf, prefix)
	copy(buf[len(prefix):], suffix)
	return ethcrypto.Keccak256(buf)
}

func uint64Suffix(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// getRaw returns the stored bytes for a key, nil when absent.
func (m *Manager) getRaw(key []byte) ([]byte, error) {
	value, err := m.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return value, err
}

func (m *Manager) putRLP(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(key, encoded)
}

// getRLP decodes the stored value into out, reporting whether a value was
// present.
func (m *Manager) getRLP(key []byte, out interface{}) (bool, error) {
	data, err := m.getRaw(key)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) setFlag(key []byte) error {
	return m.db.Put(key, []byte{1})
}

func (m *Manager) hasFlag(key []byte) (bool, error) {
	data, err := m.getRaw(key)
	if err != nil {
		return false, err
	}
	return len(data) == 1 && data[0] == 1, nil
}
