package events

import (
	"math/big"
	"testing"
)

func TestClaimPaidAttributes(t *testing.T) {
	evt := ClaimPaid{
		EpochID:   3,
		Leaf:      [32]byte{0xab},
		Recipient: [20]byte{0xcd},
		Amount:    big.NewInt(500),
	}
	if evt.EventType() != TypeClaimPaid {
		t.Fatalf("type = %s", evt.EventType())
	}
	rendered := evt.Event()
	if rendered.Attributes["epoch"] != "3" || rendered.Attributes["amount"] != "500" {
		t.Fatalf("attributes = %v", rendered.Attributes)
	}
	if rendered.Attributes["leaf"][:4] != "0xab" {
		t.Fatalf("leaf = %s", rendered.Attributes["leaf"])
	}
}

func TestReplayMarkedTransition(t *testing.T) {
	rendered := ReplayMarked{Leaf: [32]byte{1}}.Event()
	if rendered.Attributes["old"] != "false" || rendered.Attributes["new"] != "true" {
		t.Fatalf("transition attributes = %v", rendered.Attributes)
	}
}

func TestFormatAmountNil(t *testing.T) {
	rendered := SupplyIncreased{Delta: nil, Total: big.NewInt(7), Cap: nil}.Event()
	if rendered.Attributes["delta"] != "0" || rendered.Attributes["cap"] != "0" {
		t.Fatalf("nil amounts = %v", rendered.Attributes)
	}
	if rendered.Attributes["total"] != "7" {
		t.Fatalf("total = %s", rendered.Attributes["total"])
	}
}

func TestMultiEmitterFanOut(t *testing.T) {
	a := &Recorder{}
	b := &Recorder{}
	multi := MultiEmitter{a, nil, b}
	multi.Emit(AuthorityRenounced{Old: [20]byte{1}})
	if len(a.Events) != 1 || len(b.Events) != 1 {
		t.Fatalf("fan-out reached %d/%d emitters", len(a.Events), len(b.Events))
	}
}

func TestNoopEmitterAcceptsNil(t *testing.T) {
	NoopEmitter{}.Emit(nil)
	SlogEmitter{}.Emit(ClaimPaid{})
}
