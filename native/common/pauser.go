package common

import "ashforge/core/events"

// PauseState is the persistence surface behind the pause flags.
type PauseState interface {
	PauseView
	SetModulePaused(module string, paused bool) error
}

// Pauser is the admin-gated kill switch over module pause flags.
type Pauser struct {
	st      PauseState
	auth    *Authority
	emitter events.Emitter
}

func NewPauser(st PauseState, auth *Authority) *Pauser {
	return &Pauser{st: st, auth: auth, emitter: events.NoopEmitter{}}
}

func (p *Pauser) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		p.emitter = events.NoopEmitter{}
		return
	}
	p.emitter = emitter
}

// SetPaused toggles a module's pause flag.
func (p *Pauser) SetPaused(caller [20]byte, module string, paused bool) error {
	if err := p.auth.RequireAdmin(caller); err != nil {
		return err
	}
	if err := p.st.SetModulePaused(module, paused); err != nil {
		return err
	}
	p.emitter.Emit(events.ModulePauseChanged{Module: module, Paused: paused})
	return nil
}
