package ember

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"ashforge/core/events"
	"ashforge/merkleproof"
	nativecommon "ashforge/native/common"
)

const moduleName = "ember"

// DefaultNumeratorPrecision is the fixed denominator applied when the
// proof-derived numerator scales an accrual.
const DefaultNumeratorPrecision = 10000

// Config carries the immutable ember engine parameters.
type Config struct {
	// NumeratorPrecision divides numerator-scaled accruals. Zero selects
	// DefaultNumeratorPrecision.
	NumeratorPrecision uint64
	// QuantityMultiplier is the constant written into the low sub-field
	// when the qualifying credential is deposited.
	QuantityMultiplier *big.Int
	// CredentialToken and CredentialID describe the single expected
	// credential shape: exactly one unit of this id from this contract.
	CredentialToken [20]byte
	CredentialID    *big.Int
	// AshSource is the designated source token collaborator allowed to
	// deposit weighted batches.
	AshSource [20]byte
	// InitialTime and CycleDuration derive the accrual bucket index;
	// MaxCycle is the last accepted bucket.
	InitialTime   uint64
	CycleDuration uint64
	MaxCycle      uint64
}

// Normalize fills defaulted fields and returns the receiver.
func (c *Config) Normalize() *Config {
	if c.NumeratorPrecision == 0 {
		c.NumeratorPrecision = DefaultNumeratorPrecision
	}
	if c.QuantityMultiplier == nil {
		c.QuantityMultiplier = big.NewInt(0)
	}
	if c.CredentialID == nil {
		c.CredentialID = big.NewInt(0)
	}
	return c
}

// UnlockPayload is the optional proof payload embedded in a credential
// deposit, allowing both sub-fields to unlock in one transaction.
type UnlockPayload struct {
	Numerator   *big.Int
	ProofHashes [][]byte
	ProofIndex  uint64
}

// Engine accumulates multiplier state and converts weighted deposits into
// per-cycle ash. Every operation is a single atomic transition serialised by
// the engine's lock.
type Engine struct {
	mu       sync.Mutex
	st       EngineState
	auth     *nativecommon.Authority
	pauses   nativecommon.PauseView
	verifier merkleproof.Verifier
	burner   TokenBurner
	emitter  events.Emitter
	cfg      Config
}

func NewEngine(st EngineState, auth *nativecommon.Authority, verifier merkleproof.Verifier, burner TokenBurner, cfg Config) *Engine {
	cfg.Normalize()
	return &Engine{
		st:       st,
		auth:     auth,
		verifier: verifier,
		burner:   burner,
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

// --- Administrative surface ---

// SetProgramRoot registers the commitment root for numerator unlocks once.
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

// SetTokenWeight registers a token id's weight in the append-only table.
// Each id's weight may be set at most once.
func (e *Engine) SetTokenWeight(caller [20]byte, id *big.Int, weight *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.auth.RequireAdmin(caller); err != nil {
		return err
	}
	if id == nil || id.Sign() < 0 {
		return ErrInvalidTokenID
	}
	if weight == nil || weight.Sign() <= 0 {
		return ErrInvalidWeight
	}
	if _, ok, err := e.st.TokenWeight(id); err != nil {
		return err
	} else if ok {
		return ErrWeightExists
	}
	if err := e.st.SetTokenWeight(id, weight); err != nil {
		return err
	}
	e.emitter.Emit(events.TokenWeightSet{TokenID: id, Weight: weight})
	return nil
}

// --- Unlock surface ---

// UnlockByProof writes the proof-derived numerator into the high sub-field.
// The entitlement fingerprint binds (principal, numerator); first unlock
// wins, a second attempt fails loudly.
func (e *Engine) UnlockByProof(principal [20]byte, numerator *big.Int, proof merkleproof.Proof) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	word, err := e.st.MultiplierWord(principal)
	if err != nil {
		return err
	}
	unlock, err := e.validateNumeratorUnlock(principal, numerator, proof, word)
	if err != nil {
		return err
	}
	after, err := word.WithNumerator(numerator)
	if err != nil {
		return err
	}
	if err := e.commitWord(principal, unlock.fingerprint, after); err != nil {
		return err
	}
	e.emitter.Emit(events.MultiplierUpdated{Principal: principal, Field: "numerator", Before: [32]byte(word), After: [32]byte(after)})
	return nil
}

// OnCredentialDeposit handles receipt of the designated non-fungible
// credential and writes the configured quantity multiplier into the low
// sub-field. When the deposit embeds an unlock payload, the proof-based
// unlock runs in the same operation, each sub-field subject to its own
// first-writer-wins guard. The quantity event precedes the numerator event.
func (e *Engine) OnCredentialDeposit(token, from [20]byte, tokenID, amount *big.Int, payload []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if token != e.cfg.CredentialToken {
		return ErrUnexpectedSource
	}
	if tokenID == nil || tokenID.Cmp(e.cfg.CredentialID) != 0 {
		return ErrWrongCredential
	}
	if amount == nil || amount.Cmp(big.NewInt(1)) != 0 {
		return ErrWrongCredential
	}
	word, err := e.st.MultiplierWord(from)
	if err != nil {
		return err
	}
	if word.QuantityMultiplier().Sign() != 0 {
		return ErrQuantityUnlocked
	}

	var unlock *numeratorUnlock
	if len(payload) > 0 {
		decoded := new(UnlockPayload)
		if err := rlp.DecodeBytes(payload, decoded); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		proof := merkleproof.Proof{Hashes: decoded.ProofHashes, Index: decoded.ProofIndex}
		unlock, err = e.validateNumeratorUnlock(from, decoded.Numerator, proof, word)
		if err != nil {
			return err
		}
	}

	afterQuantity, err := word.WithQuantityMultiplier(e.cfg.QuantityMultiplier)
	if err != nil {
		return err
	}
	final := afterQuantity
	if unlock != nil {
		final, err = afterQuantity.WithNumerator(unlock.numerator)
		if err != nil {
			return err
		}
	}

	var fp [32]byte
	if unlock != nil {
		fp = unlock.fingerprint
	}
	if err := e.commitWord(from, fp, final); err != nil {
		return err
	}

	e.emitter.Emit(events.MultiplierUpdated{Principal: from, Field: "quantity", Before: [32]byte(word), After: [32]byte(afterQuantity)})
	if unlock != nil {
		e.emitter.Emit(events.MultiplierUpdated{Principal: from, Field: "numerator", Before: [32]byte(afterQuantity), After: [32]byte(final)})
	}
	return nil
}

type numeratorUnlock struct {
	numerator   *big.Int
	fingerprint [32]byte
}

// validateNumeratorUnlock runs every numerator-unlock gate without writing:
// consumed-leaf check, first-writer check on the sub-field, then proof
// verification against the program root.
func (e *Engine) validateNumeratorUnlock(principal [20]byte, numerator *big.Int, proof merkleproof.Proof, word MultiplierWord) (*numeratorUnlock, error) {
	if numerator == nil || numerator.Sign() <= 0 {
		return nil, ErrZeroUnlockValue
	}
	if numerator.BitLen() > 128 {
		return nil, ErrValueTooWide
	}
	encoded := EncodeMultiplierUnlock(principal, numerator)
	fp := UnlockFingerprint(encoded)
	consumed, err := e.st.ProofLeafConsumed(fp)
	if err != nil {
		return nil, err
	}
	if consumed {
		return nil, ErrProofLeafConsumed
	}
	if word.Numerator().Sign() != 0 {
		return nil, ErrNumeratorUnlocked
	}
	root, ok, err := e.st.ProgramRoot(moduleName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRootUnset
	}
	if !e.verifier.Verify(root, encoded, proof) {
		return nil, ErrInvalidProof
	}
	return &numeratorUnlock{numerator: numerator, fingerprint: fp}, nil
}

func (e *Engine) commitWord(principal [20]byte, fingerprint [32]byte, word MultiplierWord) error {
	if fingerprint != ([32]byte{}) {
		if err := e.st.SetProofLeafConsumed(fingerprint); err != nil {
			return err
		}
	}
	return e.st.SetMultiplierWord(principal, word)
}

// Read projects the two logical multiplier fields. Pure, never fails for a
// missing principal: both fields read as zero.
func (e *Engine) Read(principal [20]byte) (numerator, quantityMultiplier *big.Int, err error) {
	word, err := e.st.MultiplierWord(principal)
	if err != nil {
		return nil, nil, err
	}
	return word.Numerator(), word.QuantityMultiplier(), nil
}

// --- Accrual surface ---

// DepositAsh converts a weighted batch of source token units into ash,
// applies the principal's multiplier projection, accrues the per-cycle
// meters, and burns the deposited tokens in the same operation. Only the
// designated source collaborator may call it.
func (e *Engine) DepositAsh(caller, principal [20]byte, ids []*big.Int, quantities []*big.Int, now uint64) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if caller != e.cfg.AshSource {
		return nil, ErrUnexpectedSource
	}
	cycle, err := cycleIndex(now, e.cfg.InitialTime, e.cfg.CycleDuration)
	if err != nil {
		return nil, err
	}
	if cycle > e.cfg.MaxCycle {
		return nil, ErrAccrualEnded
	}
	rawAsh, err := weighBatch(e.st, ids, quantities)
	if err != nil {
		return nil, err
	}
	word, err := e.st.MultiplierWord(principal)
	if err != nil {
		return nil, err
	}
	finalAsh := scaleAsh(rawAsh, word, e.cfg.NumeratorPrecision)

	if err := e.burner.BatchBurn(principal, ids, quantities); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBurnFailed, err)
	}

	userTotal, err := e.st.UserAsh(cycle, principal)
	if err != nil {
		return nil, err
	}
	userTotal = new(big.Int).Add(userTotal, finalAsh)
	if err := e.st.SetUserAsh(cycle, principal, userTotal); err != nil {
		return nil, err
	}
	total, err := e.st.TotalAsh(cycle)
	if err != nil {
		return nil, err
	}
	total = new(big.Int).Add(total, finalAsh)
	if err := e.st.SetTotalAsh(cycle, total); err != nil {
		return nil, err
	}

	e.emitter.Emit(events.AshAccrued{
		Principal: principal,
		Cycle:     cycle,
		RawAsh:    rawAsh,
		FinalAsh:  finalAsh,
		UserTotal: userTotal,
		Total:     total,
	})
	return finalAsh, nil
}

// CurrentCycle derives the accrual bucket for a timestamp. Pure view.
func (e *Engine) CurrentCycle(now uint64) (uint64, error) {
	return cycleIndex(now, e.cfg.InitialTime, e.cfg.CycleDuration)
}

// UserAshAt returns the accrued ash for a principal in a cycle. Pure view.
func (e *Engine) UserAshAt(cycle uint64, principal [20]byte) (*big.Int, error) {
	return e.st.UserAsh(cycle, principal)
}

// TotalAshAt returns the global accrued ash for a cycle. Pure view.
func (e *Engine) TotalAshAt(cycle uint64) (*big.Int, error) {
	return e.st.TotalAsh(cycle)
}
