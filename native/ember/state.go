package ember

import "math/big"

// EngineState describes the persistence surface the ember engine needs.
type EngineState interface {
	MultiplierWord(principal [20]byte) (MultiplierWord, error)
	SetMultiplierWord(principal [20]byte, w MultiplierWord) error

	ProofLeafConsumed(leaf [32]byte) (bool, error)
	SetProofLeafConsumed(leaf [32]byte) error

	TokenWeight(id *big.Int) (*big.Int, bool, error)
	SetTokenWeight(id *big.Int, weight *big.Int) error

	UserAsh(cycle uint64, principal [20]byte) (*big.Int, error)
	SetUserAsh(cycle uint64, principal [20]byte, total *big.Int) error
	TotalAsh(cycle uint64) (*big.Int, error)
	SetTotalAsh(cycle uint64, total *big.Int) error

	ProgramRoot(module string) ([32]byte, bool, error)
	SetProgramRoot(module string, root [32]byte) error
}

// TokenBurner destroys the deposited source tokens as part of an accrual. A
// failure aborts the whole operation.
type TokenBurner interface {
	BatchBurn(from [20]byte, ids []*big.Int, amounts []*big.Int) error
}
