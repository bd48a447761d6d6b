package events

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"ashforge/core/types"
)

const (
	TypeMultiplierUpdated = "ember.multiplier.updated"
	TypeAshAccrued        = "ember.ash.accrued"
	TypeTokenWeightSet    = "ember.weight.set"
)

// MultiplierUpdated records a sub-field of a principal's packed multiplier
// word transitioning from unset to set. Before and after carry the full
// 256-bit word so the unlock order is reconstructable from the log.
type MultiplierUpdated struct {
	Principal [20]byte
	Field     string
	Before    [32]byte
	After     [32]byte
}

func (MultiplierUpdated) EventType() string { return TypeMultiplierUpdated }

func (e MultiplierUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeMultiplierUpdated,
		Attributes: map[string]string{
			"principal": "0x" + hex.EncodeToString(e.Principal[:]),
			"field":     e.Field,
			"before":    "0x" + hex.EncodeToString(e.Before[:]),
			"after":     "0x" + hex.EncodeToString(e.After[:]),
		},
	}
}

// AshAccrued records a weighted deposit being converted to ash and added to
// the per-cycle meters.
type AshAccrued struct {
	Principal [20]byte
	Cycle     uint64
	RawAsh    *big.Int
	FinalAsh  *big.Int
	UserTotal *big.Int
	Total     *big.Int
}

func (AshAccrued) EventType() string { return TypeAshAccrued }

func (e AshAccrued) Event() *types.Event {
	return &types.Event{
		Type: TypeAshAccrued,
		Attributes: map[string]string{
			"principal": "0x" + hex.EncodeToString(e.Principal[:]),
			"cycle":     strconv.FormatUint(e.Cycle, 10),
			"rawAsh":    formatAmount(e.RawAsh),
			"finalAsh":  formatAmount(e.FinalAsh),
			"userTotal": formatAmount(e.UserTotal),
			"total":     formatAmount(e.Total),
		},
	}
}

// TokenWeightSet records the one-time registration of a token weight.
type TokenWeightSet struct {
	TokenID *big.Int
	Weight  *big.Int
}

func (TokenWeightSet) EventType() string { return TypeTokenWeightSet }

func (e TokenWeightSet) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenWeightSet,
		Attributes: map[string]string{
			"tokenId": formatAmount(e.TokenID),
			"weight":  formatAmount(e.Weight),
		},
	}
}
