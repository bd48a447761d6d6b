package ember

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"

	"ashforge/core/events"
	"ashforge/merkleproof"
	nativecommon "ashforge/native/common"
)

var (
	adminAddr      = [20]byte{0x01}
	credentialAddr = [20]byte{0x02}
	sourceAddr     = [20]byte{0x03}
	alice          = [20]byte{0xa1}
	bob            = [20]byte{0xb0}
)

type mockState struct {
	words    map[[20]byte]MultiplierWord
	consumed map[[32]byte]bool
	weights  map[string]*big.Int
	userAsh  map[string]*big.Int
	totalAsh map[uint64]*big.Int
	roots    map[string][32]byte

	holder    [20]byte
	hasHolder bool
	renounced bool
	paused    map[string]bool
}

func newMockState() *mockState {
	return &mockState{
		words:    make(map[[20]byte]MultiplierWord),
		consumed: make(map[[32]byte]bool),
		weights:  make(map[string]*big.Int),
		userAsh:  make(map[string]*big.Int),
		totalAsh: make(map[uint64]*big.Int),
		roots:    make(map[string][32]byte),
		paused:   make(map[string]bool),
	}
}

func userAshKey(cycle uint64, principal [20]byte) string {
	return string(principal[:]) + "/" + big.NewInt(int64(cycle)).String()
}

func (m *mockState) MultiplierWord(principal [20]byte) (MultiplierWord, error) {
	return m.words[principal], nil
}
func (m *mockState) SetMultiplierWord(principal [20]byte, w MultiplierWord) error {
	m.words[principal] = w
	return nil
}
func (m *mockState) ProofLeafConsumed(leaf [32]byte) (bool, error) { return m.consumed[leaf], nil }
func (m *mockState) SetProofLeafConsumed(leaf [32]byte) error {
	m.consumed[leaf] = true
	return nil
}
func (m *mockState) TokenWeight(id *big.Int) (*big.Int, bool, error) {
	w, ok := m.weights[id.String()]
	return w, ok, nil
}
func (m *mockState) SetTokenWeight(id *big.Int, weight *big.Int) error {
	m.weights[id.String()] = new(big.Int).Set(weight)
	return nil
}
func (m *mockState) UserAsh(cycle uint64, principal [20]byte) (*big.Int, error) {
	if v, ok := m.userAsh[userAshKey(cycle, principal)]; ok {
		return new(big.Int).Set(v), nil
	}
	return big.NewInt(0), nil
}
func (m *mockState) SetUserAsh(cycle uint64, principal [20]byte, total *big.Int) error {
	m.userAsh[userAshKey(cycle, principal)] = new(big.Int).Set(total)
	return nil
}
func (m *mockState) TotalAsh(cycle uint64) (*big.Int, error) {
	if v, ok := m.totalAsh[cycle]; ok {
		return new(big.Int).Set(v), nil
	}
	return big.NewInt(0), nil
}
func (m *mockState) SetTotalAsh(cycle uint64, total *big.Int) error {
	m.totalAsh[cycle] = new(big.Int).Set(total)
	return nil
}
func (m *mockState) ProgramRoot(module string) ([32]byte, bool, error) {
	root, ok := m.roots[module]
	return root, ok, nil
}
func (m *mockState) SetProgramRoot(module string, root [32]byte) error {
	m.roots[module] = root
	return nil
}

func (m *mockState) AuthorityHolder() ([20]byte, bool, error) { return m.holder, m.hasHolder, nil }
func (m *mockState) SetAuthorityHolder(holder [20]byte) error {
	m.holder = holder
	m.hasHolder = true
	return nil
}
func (m *mockState) SetAuthorityRenounced() error {
	m.renounced = true
	return nil
}
func (m *mockState) AuthorityIsRenounced() (bool, error) { return m.renounced, nil }
func (m *mockState) IsPaused(module string) bool         { return m.paused[module] }

type burnCall struct {
	from [20]byte
	ids  []*big.Int
}

type mockBurner struct {
	burns []burnCall
	fail  error
}

func (b *mockBurner) BatchBurn(from [20]byte, ids []*big.Int, amounts []*big.Int) error {
	if b.fail != nil {
		return b.fail
	}
	b.burns = append(b.burns, burnCall{from: from, ids: ids})
	return nil
}

type testEnv struct {
	st     *mockState
	burner *mockBurner
	engine *Engine
	rec    *events.Recorder
}

func defaultConfig() Config {
	return Config{
		QuantityMultiplier: big.NewInt(2),
		CredentialToken:    credentialAddr,
		CredentialID:       big.NewInt(7),
		AshSource:          sourceAddr,
		InitialTime:        1000,
		CycleDuration:      100,
		MaxCycle:           9,
	}
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	st := newMockState()
	auth := nativecommon.NewAuthority(st)
	if err := auth.Bootstrap(adminAddr); err != nil {
		t.Fatalf("bootstrap authority: %v", err)
	}
	burner := &mockBurner{}
	engine := NewEngine(st, auth, merkleproof.SHA3Verifier{}, burner, cfg)
	engine.SetPauses(st)
	rec := &events.Recorder{}
	engine.SetEmitter(rec)
	return &testEnv{st: st, burner: burner, engine: engine, rec: rec}
}

// publishUnlocks builds the entitlement tree for the given numerators,
// registers its root, and returns the proof for each principal.
func publishUnlocks(t *testing.T, env *testEnv, entries map[[20]byte]*big.Int) map[[20]byte]merkleproof.Proof {
	t.Helper()
	leaves := make([][]byte, 0, len(entries))
	order := make([][20]byte, 0, len(entries))
	for principal, numerator := range entries {
		leaves = append(leaves, EncodeMultiplierUnlock(principal, numerator))
		order = append(order, principal)
	}
	tree, err := merkleproof.NewTree(leaves)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	if err := env.engine.SetProgramRoot(adminAddr, tree.Root()); err != nil {
		t.Fatalf("set root: %v", err)
	}
	proofs := make(map[[20]byte]merkleproof.Proof, len(entries))
	for i, principal := range order {
		proof, err := tree.Prove(leaves[i])
		if err != nil {
			t.Fatalf("prove: %v", err)
		}
		proofs[principal] = proof
	}
	return proofs
}

func TestUnlockByProof(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	numerator := big.NewInt(20000)
	proofs := publishUnlocks(t, env, map[[20]byte]*big.Int{
		alice: numerator,
		bob:   big.NewInt(15000),
	})

	if err := env.engine.UnlockByProof(alice, numerator, proofs[alice]); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	got, quantity, err := env.engine.Read(alice)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Cmp(numerator) != 0 {
		t.Fatalf("numerator = %s, want %s", got, numerator)
	}
	if quantity.Sign() != 0 {
		t.Fatalf("quantity = %s, want 0", quantity)
	}

	// The consumed fingerprint blocks a second unlock even though the word
	// check would also catch it.
	if err := env.engine.UnlockByProof(alice, numerator, proofs[alice]); !errors.Is(err, ErrProofLeafConsumed) {
		t.Fatalf("replay: got %v", err)
	}
}

func TestUnlockByProofValidation(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	if err := env.engine.UnlockByProof(alice, big.NewInt(100), merkleproof.Proof{}); !errors.Is(err, ErrRootUnset) {
		t.Fatalf("no root: got %v", err)
	}
	proofs := publishUnlocks(t, env, map[[20]byte]*big.Int{
		alice: big.NewInt(20000),
		bob:   big.NewInt(15000),
	})

	if err := env.engine.UnlockByProof(alice, nil, proofs[alice]); !errors.Is(err, ErrZeroUnlockValue) {
		t.Fatalf("nil numerator: got %v", err)
	}
	if err := env.engine.UnlockByProof(alice, big.NewInt(0), proofs[alice]); !errors.Is(err, ErrZeroUnlockValue) {
		t.Fatalf("zero numerator: got %v", err)
	}
	wide := new(big.Int).Lsh(big.NewInt(1), 129)
	if err := env.engine.UnlockByProof(alice, wide, proofs[alice]); !errors.Is(err, ErrValueTooWide) {
		t.Fatalf("wide numerator: got %v", err)
	}
	// bob's proof does not cover alice's entitlement row.
	if err := env.engine.UnlockByProof(alice, big.NewInt(15000), proofs[bob]); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("borrowed proof: got %v", err)
	}
	if err := env.engine.SetProgramRoot(adminAddr, [32]byte{1}); !errors.Is(err, ErrRootExists) {
		t.Fatalf("root redefinition: got %v", err)
	}
}

func TestUnlockOrderIndependence(t *testing.T) {
	// Numerator first, then credential.
	env := newTestEnv(t, defaultConfig())
	proofs := publishUnlocks(t, env, map[[20]byte]*big.Int{
		alice: big.NewInt(20000),
		bob:   big.NewInt(20000),
	})
	if err := env.engine.UnlockByProof(alice, big.NewInt(20000), proofs[alice]); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := env.engine.OnCredentialDeposit(credentialAddr, alice, big.NewInt(7), big.NewInt(1), nil); err != nil {
		t.Fatalf("credential after unlock: %v", err)
	}
	numerator, quantity, _ := env.engine.Read(alice)
	if numerator.Int64() != 20000 || quantity.Int64() != 2 {
		t.Fatalf("after both: numerator=%s quantity=%s", numerator, quantity)
	}

	// Credential first, then numerator.
	if err := env.engine.OnCredentialDeposit(credentialAddr, bob, big.NewInt(7), big.NewInt(1), nil); err != nil {
		t.Fatalf("credential: %v", err)
	}
	if err := env.engine.UnlockByProof(bob, big.NewInt(20000), proofs[bob]); err != nil {
		t.Fatalf("unlock after credential: %v", err)
	}
	numerator, quantity, _ = env.engine.Read(bob)
	if numerator.Int64() != 20000 || quantity.Int64() != 2 {
		t.Fatalf("after both: numerator=%s quantity=%s", numerator, quantity)
	}

	// Each sub-field accepts exactly one write.
	if err := env.engine.UnlockByProof(alice, big.NewInt(20000), proofs[alice]); !errors.Is(err, ErrProofLeafConsumed) {
		t.Fatalf("second numerator: got %v", err)
	}
	if err := env.engine.OnCredentialDeposit(credentialAddr, alice, big.NewInt(7), big.NewInt(1), nil); !errors.Is(err, ErrQuantityUnlocked) {
		t.Fatalf("second credential: got %v", err)
	}
}

func TestOnCredentialDepositValidation(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	wrongToken := [20]byte{0x99}
	if err := env.engine.OnCredentialDeposit(wrongToken, alice, big.NewInt(7), big.NewInt(1), nil); !errors.Is(err, ErrUnexpectedSource) {
		t.Fatalf("wrong contract: got %v", err)
	}
	if err := env.engine.OnCredentialDeposit(credentialAddr, alice, big.NewInt(8), big.NewInt(1), nil); !errors.Is(err, ErrWrongCredential) {
		t.Fatalf("wrong id: got %v", err)
	}
	if err := env.engine.OnCredentialDeposit(credentialAddr, alice, big.NewInt(7), big.NewInt(2), nil); !errors.Is(err, ErrWrongCredential) {
		t.Fatalf("wrong amount: got %v", err)
	}
	if err := env.engine.OnCredentialDeposit(credentialAddr, alice, big.NewInt(7), big.NewInt(1), []byte{0xff}); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("garbage payload: got %v", err)
	}
}

func TestCombinedCredentialUnlock(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	numerator := big.NewInt(20000)
	proofs := publishUnlocks(t, env, map[[20]byte]*big.Int{
		alice: numerator,
		bob:   big.NewInt(15000),
	})

	payload, err := rlp.EncodeToBytes(&UnlockPayload{
		Numerator:   numerator,
		ProofHashes: proofs[alice].Hashes,
		ProofIndex:  proofs[alice].Index,
	})
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	env.rec.Events = nil
	if err := env.engine.OnCredentialDeposit(credentialAddr, alice, big.NewInt(7), big.NewInt(1), payload); err != nil {
		t.Fatalf("combined deposit: %v", err)
	}

	gotNumerator, gotQuantity, _ := env.engine.Read(alice)
	if gotNumerator.Cmp(numerator) != 0 || gotQuantity.Int64() != 2 {
		t.Fatalf("after combined: numerator=%s quantity=%s", gotNumerator, gotQuantity)
	}

	// Quantity event first, then numerator, matching the sub-field write order.
	if len(env.rec.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(env.rec.Events))
	}
	first, ok := env.rec.Events[0].(events.MultiplierUpdated)
	if !ok || first.Field != "quantity" {
		t.Fatalf("first event = %+v, want quantity update", env.rec.Events[0])
	}
	second, ok := env.rec.Events[1].(events.MultiplierUpdated)
	if !ok || second.Field != "numerator" {
		t.Fatalf("second event = %+v, want numerator update", env.rec.Events[1])
	}

	// The embedded proof is consumed with the deposit.
	if err := env.engine.UnlockByProof(alice, numerator, proofs[alice]); !errors.Is(err, ErrProofLeafConsumed) {
		t.Fatalf("proof reuse: got %v", err)
	}
}

func TestCombinedCredentialUnlockIsAtomic(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	proofs := publishUnlocks(t, env, map[[20]byte]*big.Int{
		alice: big.NewInt(20000),
		bob:   big.NewInt(15000),
	})

	// A payload carrying a proof for the wrong row fails the whole deposit:
	// the quantity sub-field must not unlock either.
	payload, err := rlp.EncodeToBytes(&UnlockPayload{
		Numerator:   big.NewInt(15000),
		ProofHashes: proofs[bob].Hashes,
		ProofIndex:  proofs[bob].Index,
	})
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	if err := env.engine.OnCredentialDeposit(credentialAddr, alice, big.NewInt(7), big.NewInt(1), payload); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("bad embedded proof: got %v", err)
	}
	numerator, quantity, _ := env.engine.Read(alice)
	if numerator.Sign() != 0 || quantity.Sign() != 0 {
		t.Fatalf("failed combined deposit wrote numerator=%s quantity=%s", numerator, quantity)
	}
}

func TestSetTokenWeight(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	if err := env.engine.SetTokenWeight(bob, big.NewInt(1), big.NewInt(5)); !errors.Is(err, nativecommon.ErrUnauthorized) {
		t.Fatalf("non-admin: got %v", err)
	}
	if err := env.engine.SetTokenWeight(adminAddr, big.NewInt(1), big.NewInt(0)); !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("zero weight: got %v", err)
	}
	if err := env.engine.SetTokenWeight(adminAddr, nil, big.NewInt(5)); !errors.Is(err, ErrInvalidTokenID) {
		t.Fatalf("nil id: got %v", err)
	}
	if err := env.engine.SetTokenWeight(adminAddr, big.NewInt(1), big.NewInt(5)); err != nil {
		t.Fatalf("set weight: %v", err)
	}
	if err := env.engine.SetTokenWeight(adminAddr, big.NewInt(1), big.NewInt(9)); !errors.Is(err, ErrWeightExists) {
		t.Fatalf("weight redefinition: got %v", err)
	}
}

func TestDepositAsh(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	if err := env.engine.SetTokenWeight(adminAddr, big.NewInt(1), big.NewInt(5)); err != nil {
		t.Fatalf("set weight: %v", err)
	}
	if err := env.engine.SetTokenWeight(adminAddr, big.NewInt(2), big.NewInt(10)); err != nil {
		t.Fatalf("set weight: %v", err)
	}
	proofs := publishUnlocks(t, env, map[[20]byte]*big.Int{
		alice: big.NewInt(20000),
		bob:   big.NewInt(15000),
	})
	if err := env.engine.UnlockByProof(alice, big.NewInt(20000), proofs[alice]); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := env.engine.OnCredentialDeposit(credentialAddr, alice, big.NewInt(7), big.NewInt(1), nil); err != nil {
		t.Fatalf("credential: %v", err)
	}

	// raw = 2*5 + 1*10 = 20; final = floor(20 * 20000 * 2 / 10000) = 80.
	ids := []*big.Int{big.NewInt(1), big.NewInt(2)}
	quantities := []*big.Int{big.NewInt(2), big.NewInt(1)}
	finalAsh, err := env.engine.DepositAsh(sourceAddr, alice, ids, quantities, 1150)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if finalAsh.Int64() != 80 {
		t.Fatalf("finalAsh = %s, want 80", finalAsh)
	}
	if len(env.burner.burns) != 1 || env.burner.burns[0].from != alice {
		t.Fatalf("burns = %+v, want one burn from alice", env.burner.burns)
	}

	cycle, err := env.engine.CurrentCycle(1150)
	if err != nil {
		t.Fatalf("current cycle: %v", err)
	}
	if cycle != 1 {
		t.Fatalf("cycle = %d, want 1", cycle)
	}
	user, _ := env.engine.UserAshAt(cycle, alice)
	total, _ := env.engine.TotalAshAt(cycle)
	if user.Int64() != 80 || total.Int64() != 80 {
		t.Fatalf("meters user=%s total=%s, want 80/80", user, total)
	}

	// A second deposit in the same cycle accumulates; a deposit from a
	// principal with no multiplier passes through unscaled.
	if _, err := env.engine.DepositAsh(sourceAddr, bob, ids[:1], quantities[:1], 1160); err != nil {
		t.Fatalf("second deposit: %v", err)
	}
	total, _ = env.engine.TotalAshAt(cycle)
	if total.Int64() != 90 {
		t.Fatalf("total = %s, want 90", total)
	}
	user, _ = env.engine.UserAshAt(cycle, bob)
	if user.Int64() != 10 {
		t.Fatalf("bob user = %s, want 10", user)
	}
}

func TestDepositAshGates(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	if err := env.engine.SetTokenWeight(adminAddr, big.NewInt(1), big.NewInt(5)); err != nil {
		t.Fatalf("set weight: %v", err)
	}
	ids := []*big.Int{big.NewInt(1)}
	quantities := []*big.Int{big.NewInt(2)}

	if _, err := env.engine.DepositAsh(alice, alice, ids, quantities, 1150); !errors.Is(err, ErrUnexpectedSource) {
		t.Fatalf("wrong source: got %v", err)
	}
	if _, err := env.engine.DepositAsh(sourceAddr, alice, ids, quantities, 500); !errors.Is(err, ErrAccrualNotStarted) {
		t.Fatalf("before start: got %v", err)
	}
	// MaxCycle 9 ends at 1000 + 10*100 - 1.
	if _, err := env.engine.DepositAsh(sourceAddr, alice, ids, quantities, 2000); !errors.Is(err, ErrAccrualEnded) {
		t.Fatalf("after last cycle: got %v", err)
	}
	if _, err := env.engine.DepositAsh(sourceAddr, alice, ids, nil, 1150); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("length mismatch: got %v", err)
	}
	if _, err := env.engine.DepositAsh(sourceAddr, alice, nil, nil, 1150); !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("empty batch: got %v", err)
	}
	if _, err := env.engine.DepositAsh(sourceAddr, alice, ids, []*big.Int{big.NewInt(0)}, 1150); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("zero quantity: got %v", err)
	}
	if _, err := env.engine.DepositAsh(sourceAddr, alice, []*big.Int{big.NewInt(9)}, quantities, 1150); !errors.Is(err, ErrWeightUnset) {
		t.Fatalf("unknown token: got %v", err)
	}
	// A negative id must not read the weight registered for id 1.
	if _, err := env.engine.DepositAsh(sourceAddr, alice, []*big.Int{big.NewInt(-1)}, quantities, 1150); !errors.Is(err, ErrInvalidTokenID) {
		t.Fatalf("negative token id: got %v", err)
	}
	if _, err := env.engine.DepositAsh(sourceAddr, alice, []*big.Int{nil}, quantities, 1150); !errors.Is(err, ErrInvalidTokenID) {
		t.Fatalf("nil token id: got %v", err)
	}

	env.st.paused[moduleName] = true
	if _, err := env.engine.DepositAsh(sourceAddr, alice, ids, quantities, 1150); !errors.Is(err, nativecommon.ErrModulePaused) {
		t.Fatalf("paused: got %v", err)
	}
}

func TestDepositAshBurnFailureLeavesNoState(t *testing.T) {
	env := newTestEnv(t, defaultConfig())
	if err := env.engine.SetTokenWeight(adminAddr, big.NewInt(1), big.NewInt(5)); err != nil {
		t.Fatalf("set weight: %v", err)
	}
	ids := []*big.Int{big.NewInt(1)}
	quantities := []*big.Int{big.NewInt(2)}

	env.burner.fail = errors.New("burn rejected")
	if _, err := env.engine.DepositAsh(sourceAddr, alice, ids, quantities, 1150); !errors.Is(err, ErrBurnFailed) {
		t.Fatalf("failed burn: got %v", err)
	}
	total, _ := env.engine.TotalAshAt(1)
	if total.Sign() != 0 {
		t.Fatalf("failed burn accrued %s", total)
	}

	env.burner.fail = nil
	if _, err := env.engine.DepositAsh(sourceAddr, alice, ids, quantities, 1150); err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
}
