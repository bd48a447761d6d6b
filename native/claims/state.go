package claims

import "math/big"

// EngineState describes the minimal persistence surface the claim engine
// needs from the surrounding state implementation. Tests supply map-backed
// mocks; deployments use the keccak/RLP state manager.
type EngineState interface {
	ClaimWindow(epochID uint64) (*Window, bool, error)
	PutClaimWindow(epochID uint64, w *Window) error

	ClaimConsumed(leaf [32]byte) (bool, error)
	SetClaimConsumed(leaf [32]byte) error

	ClaimedBits(recipient [20]byte) (*big.Int, error)
	SetClaimedBits(recipient [20]byte, bits *big.Int) error
	BitCategories() (uint64, error)
	SetBitCategories(count uint64) error

	MintedSupply() (*big.Int, error)
	SetMintedSupply(total *big.Int) error

	PayoutWallet() ([20]byte, bool, error)
	SetPayoutWallet(addr [20]byte) error

	ProgramRoot(module string) ([32]byte, bool, error)
	SetProgramRoot(module string, root [32]byte) error
}

// PayoutVault is the external value-transfer collaborator. A failure result
// is a hard error for the engine, never a silent no-op.
type PayoutVault interface {
	Transfer(from, to [20]byte, amount *big.Int, memo string) error
	Mint(to [20]byte, id *big.Int, amount *big.Int) error
	BatchMint(to [20]byte, ids []*big.Int, amounts []*big.Int) error
}

// Staker routes a claimed payout straight into the staking collaborator.
type Staker interface {
	Stake(recipient [20]byte, amount *big.Int) error
}
