package common

import (
	"errors"

	"ashforge/core/events"
)

var (
	ErrUnauthorized       = errors.New("authority: caller lacks capability")
	ErrAuthorityRenounced = errors.New("authority: capability renounced")
	ErrAuthorityUnset     = errors.New("authority: holder not configured")
	ErrZeroHolder         = errors.New("authority: holder must not be zero")
)

// AuthorityState is the persistence surface the capability gate needs.
type AuthorityState interface {
	AuthorityHolder() ([20]byte, bool, error)
	SetAuthorityHolder(holder [20]byte) error
	SetAuthorityRenounced() error
	AuthorityIsRenounced() (bool, error)
}

// Authority is the single capability holder backing every privileged
// operation. Engines call RequireAdmin at the top of each setter instead of
// scattering ownership checks.
type Authority struct {
	st      AuthorityState
	emitter events.Emitter
}

func NewAuthority(st AuthorityState) *Authority {
	return &Authority{st: st, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (a *Authority) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		a.emitter = events.NoopEmitter{}
		return
	}
	a.emitter = emitter
}

// Bootstrap installs the initial holder. It only succeeds while no holder has
// ever been set, so genesis wiring cannot silently replace a live authority.
func (a *Authority) Bootstrap(holder [20]byte) error {
	if holder == ([20]byte{}) {
		return ErrZeroHolder
	}
	if _, ok, err := a.st.AuthorityHolder(); err != nil {
		return err
	} else if ok {
		return nil
	}
	return a.st.SetAuthorityHolder(holder)
}

// RequireAdmin verifies the caller holds the administrative capability.
func (a *Authority) RequireAdmin(caller [20]byte) error {
	renounced, err := a.st.AuthorityIsRenounced()
	if err != nil {
		return err
	}
	if renounced {
		return ErrAuthorityRenounced
	}
	holder, ok, err := a.st.AuthorityHolder()
	if err != nil {
		return err
	}
	if !ok {
		return ErrAuthorityUnset
	}
	if caller != holder {
		return ErrUnauthorized
	}
	return nil
}

// Transfer moves the capability to a new holder.
func (a *Authority) Transfer(caller, newHolder [20]byte) error {
	if err := a.RequireAdmin(caller); err != nil {
		return err
	}
	if newHolder == ([20]byte{}) {
		return ErrZeroHolder
	}
	if err := a.st.SetAuthorityHolder(newHolder); err != nil {
		return err
	}
	a.emitter.Emit(events.AuthorityTransferred{Old: caller, New: newHolder})
	return nil
}

// Renounce gives up the capability permanently. Every privileged operation
// fails afterwards.
func (a *Authority) Renounce(caller [20]byte) error {
	if err := a.RequireAdmin(caller); err != nil {
		return err
	}
	if err := a.st.SetAuthorityRenounced(); err != nil {
		return err
	}
	a.emitter.Emit(events.AuthorityRenounced{Old: caller})
	return nil
}
