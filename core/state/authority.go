package state

// AuthorityHolder returns the administrative capability holder.
func (m *Manager) AuthorityHolder() ([20]byte, bool, error) {
	var holder [20]byte
	data, err := m.getRaw(hashKey(authorityHolderKey, nil))
	if err != nil || len(data) != 20 {
		return holder, false, err
	}
	copy(holder[:], data)
	return holder, true, nil
}

// SetAuthorityHolder stores the capability holder.
func (m *Manager) SetAuthorityHolder(holder [20]byte) error {
	return m.db.Put(hashKey(authorityHolderKey, nil), holder[:])
}

// AuthorityIsRenounced reports whether the capability was given up. The flag
// is write-once so presence of the key is the whole answer.
func (m *Manager) AuthorityIsRenounced() (bool, error) {
	return m.db.Has(hashKey(authorityRenounced, nil))
}

// SetAuthorityRenounced records the permanent renunciation of the capability.
func (m *Manager) SetAuthorityRenounced() error {
	return m.setFlag(hashKey(authorityRenounced, nil))
}

// IsPaused reports whether a module's mutating entry points are disabled. A
// read failure is treated as not paused so a storage hiccup cannot lock the
// pause flag on.
func (m *Manager) IsPaused(module string) bool {
	paused, err := m.hasFlag(hashKey(pausePrefix, []byte(module)))
	if err != nil {
		return false
	}
	return paused
}

// SetModulePaused toggles a module's pause flag.
func (m *Manager) SetModulePaused(module string, paused bool) error {
	key := hashKey(pausePrefix, []byte(module))
	if paused {
		return m.setFlag(key)
	}
	return m.db.Put(key, []byte{0})
}
