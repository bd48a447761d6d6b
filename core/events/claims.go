package events

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"ashforge/core/types"
)

const (
	TypeWindowCreated       = "claims.window.created"
	TypeClaimPaid           = "claims.paid"
	TypeClaimStaked         = "claims.staked"
	TypeReplayMarked        = "claims.replay.updated"
	TypeBitsClaimed         = "claims.bits.updated"
	TypeSupplyIncreased     = "claims.supply.updated"
	TypePayoutWalletUpdated = "claims.wallet.updated"
	TypeProgramRootSet      = "claims.root.set"
)

// WindowCreated signals that a claim window has been registered for an epoch.
type WindowCreated struct {
	EpochID   uint64
	Root      [32]byte
	StartTime uint64
	EndTime   uint64
}

func (WindowCreated) EventType() string { return TypeWindowCreated }

func (e WindowCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeWindowCreated,
		Attributes: map[string]string{
			"epoch": strconv.FormatUint(e.EpochID, 10),
			"root":  "0x" + hex.EncodeToString(e.Root[:]),
			"start": strconv.FormatUint(e.StartTime, 10),
			"end":   strconv.FormatUint(e.EndTime, 10),
		},
	}
}

// ClaimPaid records a completed payout for a single entitlement.
type ClaimPaid struct {
	EpochID   uint64
	Leaf      [32]byte
	Recipient [20]byte
	Amount    *big.Int
}

func (ClaimPaid) EventType() string { return TypeClaimPaid }

func (e ClaimPaid) Event() *types.Event {
	return &types.Event{
		Type: TypeClaimPaid,
		Attributes: map[string]string{
			"epoch":     strconv.FormatUint(e.EpochID, 10),
			"leaf":      "0x" + hex.EncodeToString(e.Leaf[:]),
			"recipient": "0x" + hex.EncodeToString(e.Recipient[:]),
			"amount":    formatAmount(e.Amount),
		},
	}
}

// ClaimStaked records a payout routed into the staking collaborator instead of
// being transferred to the recipient directly.
type ClaimStaked struct {
	EpochID   uint64
	Leaf      [32]byte
	Recipient [20]byte
	Amount    *big.Int
}

func (ClaimStaked) EventType() string { return TypeClaimStaked }

func (e ClaimStaked) Event() *types.Event {
	return &types.Event{
		Type: TypeClaimStaked,
		Attributes: map[string]string{
			"epoch":     strconv.FormatUint(e.EpochID, 10),
			"leaf":      "0x" + hex.EncodeToString(e.Leaf[:]),
			"recipient": "0x" + hex.EncodeToString(e.Recipient[:]),
			"amount":    formatAmount(e.Amount),
		},
	}
}

// ReplayMarked records a fingerprint transitioning from unconsumed to
// consumed. Old and new values are carried for off-chain reconciliation.
type ReplayMarked struct {
	Leaf [32]byte
}

func (ReplayMarked) EventType() string { return TypeReplayMarked }

func (e ReplayMarked) Event() *types.Event {
	return &types.Event{
		Type: TypeReplayMarked,
		Attributes: map[string]string{
			"leaf": "0x" + hex.EncodeToString(e.Leaf[:]),
			"old":  "false",
			"new":  "true",
		},
	}
}

// BitsClaimed records a bitmap update for a recipient, carrying the previous
// and updated masks.
type BitsClaimed struct {
	Recipient [20]byte
	Mask      *big.Int
	OldBits   *big.Int
	NewBits   *big.Int
}

func (BitsClaimed) EventType() string { return TypeBitsClaimed }

func (e BitsClaimed) Event() *types.Event {
	return &types.Event{
		Type: TypeBitsClaimed,
		Attributes: map[string]string{
			"recipient": "0x" + hex.EncodeToString(e.Recipient[:]),
			"mask":      formatAmount(e.Mask),
			"old":       formatAmount(e.OldBits),
			"new":       formatAmount(e.NewBits),
		},
	}
}

// SupplyIncreased captures a disbursement counted against the supply ceiling.
type SupplyIncreased struct {
	Delta *big.Int
	Total *big.Int
	Cap   *big.Int
}

func (SupplyIncreased) EventType() string { return TypeSupplyIncreased }

func (e SupplyIncreased) Event() *types.Event {
	return &types.Event{
		Type: TypeSupplyIncreased,
		Attributes: map[string]string{
			"delta": formatAmount(e.Delta),
			"total": formatAmount(e.Total),
			"cap":   formatAmount(e.Cap),
		},
	}
}

// PayoutWalletUpdated signals an administrative change of the wallet claims
// are paid from.
type PayoutWalletUpdated struct {
	Old [20]byte
	New [20]byte
}

func (PayoutWalletUpdated) EventType() string { return TypePayoutWalletUpdated }

func (e PayoutWalletUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypePayoutWalletUpdated,
		Attributes: map[string]string{
			"old": "0x" + hex.EncodeToString(e.Old[:]),
			"new": "0x" + hex.EncodeToString(e.New[:]),
		},
	}
}

// ProgramRootSet records the one-time registration of a program-wide
// commitment root.
type ProgramRootSet struct {
	Module string
	Root   [32]byte
}

func (ProgramRootSet) EventType() string { return TypeProgramRootSet }

func (e ProgramRootSet) Event() *types.Event {
	return &types.Event{
		Type: TypeProgramRootSet,
		Attributes: map[string]string{
			"module": e.Module,
			"root":   "0x" + hex.EncodeToString(e.Root[:]),
		},
	}
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
