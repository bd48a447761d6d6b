package claims

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"ashforge/core/events"
	"ashforge/merkleproof"
	nativecommon "ashforge/native/common"
)

const moduleName = "claims"

// Config carries the immutable engine parameters.
type Config struct {
	// MintSupply is the hard ceiling on total disbursed units. Zero means
	// unlimited.
	MintSupply *big.Int
	// BitPayout is the number of units counted against the supply per
	// bitmap category claimed.
	BitPayout *big.Int
}

// Normalize ensures pointer fields are non-nil. The method returns the
// receiver to allow chaining.
func (c *Config) Normalize() *Config {
	if c.MintSupply == nil {
		c.MintSupply = big.NewInt(0)
	}
	if c.BitPayout == nil || c.BitPayout.Sign() <= 0 {
		c.BitPayout = big.NewInt(1)
	}
	return c
}

// Request carries the fingerprint-relevant payload and the membership proof
// for a window-gated claim. The effective caller is passed explicitly by the
// surface that resolved it; the engine keeps no ambient caller state.
type Request struct {
	EpochID   uint64
	Recipient [20]byte
	Amount    *big.Int
	Proof     merkleproof.Proof
}

// Receipt summarises a successful claim for the submitting surface.
type Receipt struct {
	Leaf      [32]byte
	Amount    *big.Int
	NewSupply *big.Int
}

// Engine is the eligibility-gated claim engine. Every operation is a single
// atomic state transition: the engine serialises attempts internally, checks
// every gate before touching the payout collaborator, and persists state only
// after the collaborator accepts, so a failed transfer can never strand a
// consumed fingerprint.
type Engine struct {
	mu       sync.Mutex
	st       EngineState
	auth     *nativecommon.Authority
	pauses   nativecommon.PauseView
	verifier merkleproof.Verifier
	vault    PayoutVault
	staker   Staker
	emitter  events.Emitter
	cfg      Config
}

// NewEngine wires the claim engine. The staking collaborator is optional.
func NewEngine(st EngineState, auth *nativecommon.Authority, verifier merkleproof.Verifier, vault PayoutVault, cfg Config) *Engine {
	cfg.Normalize()
	return &Engine{
		st:       st,
		auth:     auth,
		verifier: verifier,
		vault:    vault,
		emitter:  events.NoopEmitter{},
		cfg:      cfg,
	}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

func (e *Engine) SetStaker(s Staker) { e.staker = s }

// --- Administrative surface ---

// SetWindow registers the claim window for an epoch. A window is created
// exactly once; redefinition fails.
func (e *Engine) SetWindow(caller [20]byte, epochID uint64, root [32]byte, start, end, now uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.auth.RequireAdmin(caller); err != nil {
		return err
	}
	if root == ([32]byte{}) {
		return ErrZeroRoot
	}
	if start >= end {
		return ErrInvalidWindow
	}
	if end <= now {
		return ErrWindowExpired
	}
	if _, ok, err := e.st.ClaimWindow(epochID); err != nil {
		return err
	} else if ok {
		return ErrWindowExists
	}
	w := &Window{Root: root, StartTime: start, EndTime: end}
	if err := e.st.PutClaimWindow(epochID, w); err != nil {
		return err
	}
	e.emitter.Emit(events.WindowCreated{EpochID: epochID, Root: root, StartTime: start, EndTime: end})
	return nil
}

// ResolveWindow returns the registered window for an epoch.
func (e *Engine) ResolveWindow(epochID uint64) (*Window, error) {
	w, ok, err := e.st.ClaimWindow(epochID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWindowNotFound
	}
	return w, nil
}

// SetPayoutWallet points claims at a new funding wallet.
func (e *Engine) SetPayoutWallet(caller, wallet [20]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.auth.RequireAdmin(caller); err != nil {
		return err
	}
	if wallet == ([20]byte{}) {
		return ErrZeroWallet
	}
	old, _, err := e.st.PayoutWallet()
	if err != nil {
		return err
	}
	if err := e.st.SetPayoutWallet(wallet); err != nil {
		return err
	}
	e.emitter.Emit(events.PayoutWalletUpdated{Old: old, New: wallet})
	return nil
}

// maxBitCategories is the widest mask the 32-byte leaf field can encode.
const maxBitCategories = 256

// SetBitCategories registers the bitmap variant's category count once. The
// count is capped at the leaf encoding's mask width so every mask the
// registry admits is encodable.
func (e *Engine) SetBitCategories(caller [20]byte, count uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.auth.RequireAdmin(caller); err != nil {
		return err
	}
	if count == 0 {
		return ErrZeroCategories
	}
	if count > maxBitCategories {
		return ErrTooManyCategories
	}
	existing, err := e.st.BitCategories()
	if err != nil {
		return err
	}
	if existing != 0 {
		return ErrBitCategoriesExist
	}
	return e.st.SetBitCategories(count)
}

// SetProgramRoot registers the bitmap variant's commitment root once.
func (e *Engine) SetProgramRoot(caller [20]byte, root [32]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.auth.RequireAdmin(caller); err != nil {
		return err
	}
	if root == ([32]byte{}) {
		return ErrZeroRoot
	}
	if _, ok, err := e.st.ProgramRoot(moduleName); err != nil {
		return err
	} else if ok {
		return ErrRootExists
	}
	if err := e.st.SetProgramRoot(moduleName, root); err != nil {
		return err
	}
	e.emitter.Emit(events.ProgramRootSet{Module: moduleName, Root: root})
	return nil
}

// --- Claim surface ---

// Claim verifies the request against its epoch window and pays the
// entitlement out exactly once.
func (e *Engine) Claim(req Request, now uint64) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.claim(req, now, false)
}

// ClaimAndStake is identical to Claim except the payout is routed into the
// staking collaborator instead of being transferred to the recipient.
func (e *Engine) ClaimAndStake(req Request, now uint64) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.staker == nil {
		return nil, ErrStakingUnavailable
	}
	return e.claim(req, now, true)
}

func (e *Engine) claim(req Request, now uint64, stake bool) (*Receipt, error) {
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 || req.Amount.BitLen() > 256 {
		return nil, ErrInvalidAmount
	}
	window, err := e.ResolveWindow(req.EpochID)
	if err != nil {
		return nil, err
	}
	if err := window.TemporalStatus(now); err != nil {
		return nil, err
	}
	encoded := EncodeWindowClaim(req.EpochID, req.Recipient, req.Amount)
	leaf := Fingerprint(encoded)
	if err := checkUnconsumed(e.st, leaf); err != nil {
		return nil, err
	}
	if !e.verifier.Verify(window.Root, encoded, req.Proof) {
		return nil, ErrInvalidProof
	}
	newSupply, err := reserveSupply(e.st, e.cfg.MintSupply, req.Amount)
	if err != nil {
		return nil, err
	}

	if stake {
		if err := e.staker.Stake(req.Recipient, req.Amount); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPayoutFailed, err)
		}
	} else {
		wallet, ok, err := e.st.PayoutWallet()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrWalletUnset
		}
		memo := fmt.Sprintf("claims/epoch/%d", req.EpochID)
		if err := e.vault.Transfer(wallet, req.Recipient, req.Amount, memo); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPayoutFailed, err)
		}
	}

	if err := e.st.SetClaimConsumed(leaf); err != nil {
		return nil, err
	}
	if err := e.st.SetMintedSupply(newSupply); err != nil {
		return nil, err
	}

	e.emitter.Emit(events.ReplayMarked{Leaf: leaf})
	e.emitter.Emit(events.SupplyIncreased{Delta: req.Amount, Total: newSupply, Cap: e.cfg.MintSupply})
	paid := events.ClaimPaid{EpochID: req.EpochID, Leaf: leaf, Recipient: req.Recipient, Amount: req.Amount}
	if stake {
		e.emitter.Emit(events.ClaimStaked(paid))
	} else {
		e.emitter.Emit(paid)
	}
	return &Receipt{Leaf: leaf, Amount: new(big.Int).Set(req.Amount), NewSupply: newSupply}, nil
}

// CanClaim is the pure precondition check mirroring Claim's gate order. It
// never mutates state.
func (e *Engine) CanClaim(req Request, now uint64) Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return StatusPaused
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 || req.Amount.BitLen() > 256 {
		return StatusInvalidRequest
	}
	window, err := e.ResolveWindow(req.EpochID)
	if err != nil {
		return StatusWindowNotFound
	}
	switch err := window.TemporalStatus(now); {
	case errors.Is(err, ErrWindowNotOpen):
		return StatusWindowNotOpen
	case errors.Is(err, ErrWindowClosed):
		return StatusWindowClosed
	}
	encoded := EncodeWindowClaim(req.EpochID, req.Recipient, req.Amount)
	if err := checkUnconsumed(e.st, Fingerprint(encoded)); err != nil {
		return StatusAlreadyClaimed
	}
	if !e.verifier.Verify(window.Root, encoded, req.Proof) {
		return StatusInvalidProof
	}
	if _, err := reserveSupply(e.st, e.cfg.MintSupply, req.Amount); err != nil {
		return StatusSupplyExceeded
	}
	return StatusOK
}

// --- Bitmap variant ---

// ClaimBits consumes a bitmap-variant entitlement: one proof covers a mask of
// reward categories, each category is minted once, and the recipient's stored
// bitmap records the consumed bits.
func (e *Engine) ClaimBits(recipient [20]byte, mask *big.Int, proof merkleproof.Proof, now uint64) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	categories, err := e.st.BitCategories()
	if err != nil {
		return nil, err
	}
	if categories == 0 {
		return nil, ErrBitCategoriesUnset
	}
	claimed, err := e.st.ClaimedBits(recipient)
	if err != nil {
		return nil, err
	}
	merged, err := validateMask(claimed, mask, categories)
	if err != nil {
		return nil, err
	}
	root, ok, err := e.st.ProgramRoot(moduleName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRootUnset
	}
	encoded := EncodeBitClaim(recipient, mask)
	if !e.verifier.Verify(root, encoded, proof) {
		return nil, ErrInvalidProof
	}

	units := popCount(mask)
	amount := new(big.Int).Mul(new(big.Int).SetUint64(units), e.cfg.BitPayout)
	newSupply, err := reserveSupply(e.st, e.cfg.MintSupply, amount)
	if err != nil {
		return nil, err
	}

	bits := maskBits(mask)
	ids := make([]*big.Int, len(bits))
	amounts := make([]*big.Int, len(bits))
	for i, bit := range bits {
		ids[i] = new(big.Int).SetUint64(bit)
		amounts[i] = new(big.Int).Set(e.cfg.BitPayout)
	}
	if err := e.vault.BatchMint(recipient, ids, amounts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMintFailed, err)
	}

	if err := e.st.SetClaimedBits(recipient, merged); err != nil {
		return nil, err
	}
	if err := e.st.SetMintedSupply(newSupply); err != nil {
		return nil, err
	}

	e.emitter.Emit(events.BitsClaimed{Recipient: recipient, Mask: mask, OldBits: claimed, NewBits: merged})
	e.emitter.Emit(events.SupplyIncreased{Delta: amount, Total: newSupply, Cap: e.cfg.MintSupply})
	return &Receipt{Leaf: Fingerprint(encoded), Amount: amount, NewSupply: newSupply}, nil
}

// ClaimableBits returns the mask of categories the recipient has not yet
// claimed. Pure view.
func (e *Engine) ClaimableBits(recipient [20]byte) (*big.Int, error) {
	categories, err := e.st.BitCategories()
	if err != nil {
		return nil, err
	}
	if categories == 0 {
		return nil, ErrBitCategoriesUnset
	}
	claimed, err := e.st.ClaimedBits(recipient)
	if err != nil {
		return nil, err
	}
	full := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(categories)), big.NewInt(1))
	return full.AndNot(full, claimed), nil
}

// MintedSupply exposes the disbursed-units counter. Pure view.
func (e *Engine) MintedSupply() (*big.Int, error) {
	return e.st.MintedSupply()
}
