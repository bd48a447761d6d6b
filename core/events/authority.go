package events

import (
	"encoding/hex"
	"strconv"

	"ashforge/core/types"
)

const (
	TypeAuthorityTransferred = "authority.transferred"
	TypeAuthorityRenounced   = "authority.renounced"
	TypeModulePauseChanged   = "module.pause"
)

// AuthorityTransferred signals the administrative capability moving to a new
// holder.
type AuthorityTransferred struct {
	Old [20]byte
	New [20]byte
}

func (AuthorityTransferred) EventType() string { return TypeAuthorityTransferred }

func (e AuthorityTransferred) Event() *types.Event {
	return &types.Event{
		Type: TypeAuthorityTransferred,
		Attributes: map[string]string{
			"old": "0x" + hex.EncodeToString(e.Old[:]),
			"new": "0x" + hex.EncodeToString(e.New[:]),
		},
	}
}

// AuthorityRenounced signals that the capability holder gave up the
// administrative capability permanently.
type AuthorityRenounced struct {
	Old [20]byte
}

func (AuthorityRenounced) EventType() string { return TypeAuthorityRenounced }

func (e AuthorityRenounced) Event() *types.Event {
	return &types.Event{
		Type: TypeAuthorityRenounced,
		Attributes: map[string]string{
			"old": "0x" + hex.EncodeToString(e.Old[:]),
		},
	}
}

// ModulePauseChanged records a module being paused or resumed.
type ModulePauseChanged struct {
	Module string
	Paused bool
}

func (ModulePauseChanged) EventType() string { return TypeModulePauseChanged }

func (e ModulePauseChanged) Event() *types.Event {
	return &types.Event{
		Type: TypeModulePauseChanged,
		Attributes: map[string]string{
			"module": e.Module,
			"paused": strconv.FormatBool(e.Paused),
		},
	}
}
