package ember

import "errors"

var (
	// Malformed input.
	ErrZeroUnlockValue  = errors.New("ember: unlock value must be positive")
	ErrValueTooWide     = errors.New("ember: value exceeds 128 bits")
	ErrZeroRoot         = errors.New("ember: zero root")
	ErrLengthMismatch   = errors.New("ember: ids and quantities length mismatch")
	ErrEmptyBatch       = errors.New("ember: empty batch")
	ErrInvalidQuantity  = errors.New("ember: quantity must be positive")
	ErrInvalidWeight    = errors.New("ember: weight must be positive")
	ErrInvalidTokenID   = errors.New("ember: token id must not be negative")
	ErrInvalidPayload   = errors.New("ember: malformed unlock payload")
	ErrWrongCredential  = errors.New("ember: unexpected credential shape")
	ErrUnexpectedSource = errors.New("ember: caller is not the designated source")

	// Registry lifecycle.
	ErrRootExists   = errors.New("ember: program root already set")
	ErrRootUnset    = errors.New("ember: program root not set")
	ErrWeightExists = errors.New("ember: token weight already set")
	ErrWeightUnset  = errors.New("ember: token weight not registered")

	// First-writer-wins violations.
	ErrNumeratorUnlocked = errors.New("ember: numerator already unlocked")
	ErrQuantityUnlocked  = errors.New("ember: quantity multiplier already unlocked")
	ErrProofLeafConsumed = errors.New("ember: unlock proof already consumed")

	// Proof and temporal violations.
	ErrInvalidProof      = errors.New("ember: invalid proof")
	ErrAccrualNotStarted = errors.New("ember: accrual period not started")
	ErrAccrualEnded      = errors.New("ember: accrual period ended")

	// Collaborator failures.
	ErrBurnFailed = errors.New("ember: burn failed")
)
