package claims

import (
	"bytes"
	"encoding/binary"
	"math/big"
	"testing"
)

func TestEncodeWindowClaimLayout(t *testing.T) {
	recipient := [20]byte{0xaa, 0xbb}
	amount := big.NewInt(1_000_000)
	encoded := EncodeWindowClaim(7, recipient, amount)
	if len(encoded) != 60 {
		t.Fatalf("encoded length = %d, want 60", len(encoded))
	}
	if got := binary.BigEndian.Uint64(encoded[:8]); got != 7 {
		t.Fatalf("epoch field = %d, want 7", got)
	}
	if !bytes.Equal(encoded[8:28], recipient[:]) {
		t.Fatalf("recipient field mismatch")
	}
	if got := new(big.Int).SetBytes(encoded[28:]); got.Cmp(amount) != 0 {
		t.Fatalf("amount field = %s, want %s", got, amount)
	}
}

func TestEncodeWindowClaimDeterministic(t *testing.T) {
	recipient := [20]byte{1, 2, 3}
	a := EncodeWindowClaim(1, recipient, big.NewInt(50))
	b := EncodeWindowClaim(1, recipient, big.NewInt(50))
	if !bytes.Equal(a, b) {
		t.Fatalf("identical inputs produced different encodings")
	}
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("identical encodings produced different fingerprints")
	}
}

func TestEncodingIsFieldOrderSensitive(t *testing.T) {
	// Swapping which field holds a value must change the fingerprint, so a
	// claim published under one layout can never satisfy another.
	var r1, r2 [20]byte
	r1[19] = 5
	r2[19] = 9
	a := Fingerprint(EncodeWindowClaim(5, r2, big.NewInt(9)))
	b := Fingerprint(EncodeWindowClaim(9, r2, big.NewInt(5)))
	if a == b {
		t.Fatalf("distinct claims collided")
	}
	if Fingerprint(EncodeBitClaim(r1, big.NewInt(3))) == Fingerprint(EncodeBitClaim(r2, big.NewInt(3))) {
		t.Fatalf("distinct recipients collided in bit claim encoding")
	}
}

func TestWindowTemporalStatusInclusiveBounds(t *testing.T) {
	w := &Window{Root: [32]byte{1}, StartTime: 100, EndTime: 200}
	cases := []struct {
		now  uint64
		want error
	}{
		{99, ErrWindowNotOpen},
		{100, nil},
		{150, nil},
		{200, nil},
		{201, ErrWindowClosed},
	}
	for _, tc := range cases {
		if got := w.TemporalStatus(tc.now); got != tc.want {
			t.Fatalf("TemporalStatus(%d) = %v, want %v", tc.now, got, tc.want)
		}
	}
}

func TestValidateMask(t *testing.T) {
	claimed := big.NewInt(0b0101)
	if _, err := validateMask(claimed, nil, 8); err != ErrZeroMask {
		t.Fatalf("nil mask: got %v, want %v", err, ErrZeroMask)
	}
	if _, err := validateMask(claimed, big.NewInt(0), 8); err != ErrZeroMask {
		t.Fatalf("zero mask: got %v, want %v", err, ErrZeroMask)
	}
	if _, err := validateMask(claimed, big.NewInt(1<<8), 8); err != ErrMaskOutOfRange {
		t.Fatalf("wide mask: got %v, want %v", err, ErrMaskOutOfRange)
	}
	if _, err := validateMask(claimed, big.NewInt(0b0100), 8); err != ErrBitsOverlap {
		t.Fatalf("overlapping mask: got %v, want %v", err, ErrBitsOverlap)
	}
	merged, err := validateMask(claimed, big.NewInt(0b1010), 8)
	if err != nil {
		t.Fatalf("valid mask rejected: %v", err)
	}
	if merged.Int64() != 0b1111 {
		t.Fatalf("merged = %b, want 1111", merged.Int64())
	}
}

func TestPopCountAndMaskBits(t *testing.T) {
	mask := big.NewInt(0b1011)
	if got := popCount(mask); got != 3 {
		t.Fatalf("popCount = %d, want 3", got)
	}
	bits := maskBits(mask)
	want := []uint64{0, 1, 3}
	if len(bits) != len(want) {
		t.Fatalf("maskBits = %v, want %v", bits, want)
	}
	for i := range want {
		if bits[i] != want[i] {
			t.Fatalf("maskBits = %v, want %v", bits, want)
		}
	}
}
