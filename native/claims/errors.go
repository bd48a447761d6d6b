package claims

import "errors"

var (
	// Malformed input.
	ErrInvalidAmount = errors.New("claims: amount must be positive")
	ErrZeroRoot      = errors.New("claims: zero root")
	ErrInvalidWindow = errors.New("claims: window start must precede end")
	ErrWindowExpired = errors.New("claims: window already expired at creation")

	// Registry lifecycle.
	ErrWindowExists       = errors.New("claims: window already set for epoch")
	ErrWindowNotFound     = errors.New("claims: epoch not registered")
	ErrRootExists         = errors.New("claims: program root already set")
	ErrRootUnset          = errors.New("claims: program root not set")
	ErrWalletUnset        = errors.New("claims: payout wallet not configured")
	ErrZeroWallet         = errors.New("claims: payout wallet must not be zero")
	ErrBitCategoriesExist = errors.New("claims: bit categories already registered")
	ErrBitCategoriesUnset = errors.New("claims: bit categories not registered")
	ErrZeroCategories     = errors.New("claims: category count must be positive")
	ErrTooManyCategories  = errors.New("claims: category count exceeds 256")

	// Temporal violations. Kept distinct so callers can decide between
	// retrying later and abandoning.
	ErrWindowNotOpen = errors.New("claims: window not yet open")
	ErrWindowClosed  = errors.New("claims: window closed")

	// Claim-time violations.
	ErrAlreadyClaimed = errors.New("claims: already claimed")
	ErrInvalidProof   = errors.New("claims: invalid proof")
	ErrSupplyExceeded = errors.New("claims: mint supply exceeded")
	ErrZeroMask       = errors.New("claims: mask has no set bits")
	ErrMaskOutOfRange = errors.New("claims: mask exceeds registered categories")
	ErrBitsOverlap    = errors.New("claims: mask overlaps claimed bits")

	// Collaborator failures.
	ErrPayoutFailed       = errors.New("claims: payout transfer failed")
	ErrMintFailed         = errors.New("claims: mint failed")
	ErrStakingUnavailable = errors.New("claims: staking collaborator not configured")
)
