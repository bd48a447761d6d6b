package gateway

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"ashforge/merkleproof"
)

var errMissingCaller = errors.New("gateway: missing effective caller")

// effectiveCaller resolves the caller identity forwarded by the trusted
// relay. The engines receive it as an ordinary parameter; no ambient caller
// state exists below this point.
func effectiveCaller(r *http.Request) ([20]byte, error) {
	var addr [20]byte
	raw := strings.TrimSpace(r.Header.Get("X-Effective-Caller"))
	if raw == "" {
		return addr, errMissingCaller
	}
	return parseAddress(raw)
}

func parseAddress(s string) ([20]byte, error) {
	var addr [20]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return addr, fmt.Errorf("gateway: invalid address: %w", err)
	}
	if len(raw) != 20 {
		return addr, fmt.Errorf("gateway: address must be 20 bytes")
	}
	copy(addr[:], raw)
	return addr, nil
}

func parseHash(s string) ([32]byte, error) {
	var h [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return h, fmt.Errorf("gateway: invalid hash: %w", err)
	}
	if len(raw) != 32 {
		return h, fmt.Errorf("gateway: hash must be 32 bytes")
	}
	copy(h[:], raw)
	return h, nil
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("gateway: invalid amount %q", s)
	}
	return v, nil
}

type proofPayload struct {
	Hashes []string `json:"hashes"`
	Index  uint64   `json:"index"`
}

func (p proofPayload) decode() (merkleproof.Proof, error) {
	hashes := make([][]byte, len(p.Hashes))
	for i, h := range p.Hashes {
		raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(h), "0x"))
		if err != nil {
			return merkleproof.Proof{}, fmt.Errorf("gateway: invalid proof hash: %w", err)
		}
		hashes[i] = raw
	}
	return merkleproof.Proof{Hashes: hashes, Index: p.Index}, nil
}

type claimPayload struct {
	EpochID   uint64       `json:"epochId"`
	Recipient string       `json:"recipient"`
	Amount    string       `json:"amount"`
	Proof     proofPayload `json:"proof"`
}

type bitClaimPayload struct {
	Recipient string       `json:"recipient"`
	Mask      string       `json:"mask"`
	Proof     proofPayload `json:"proof"`
}

type unlockPayload struct {
	Principal string       `json:"principal"`
	Numerator string       `json:"numerator"`
	Proof     proofPayload `json:"proof"`
}

type credentialPayload struct {
	Token   string `json:"token"`
	From    string `json:"from"`
	TokenID string `json:"tokenId"`
	Amount  string `json:"amount"`
	// Payload is the hex-encoded RLP unlock payload, optional.
	Payload string `json:"payload,omitempty"`
}

type depositPayload struct {
	Principal  string   `json:"principal"`
	IDs        []string `json:"ids"`
	Quantities []string `json:"quantities"`
}

type windowPayload struct {
	EpochID uint64 `json:"epochId"`
	Root    string `json:"root"`
	Start   uint64 `json:"start"`
	End     uint64 `json:"end"`
}

type weightPayload struct {
	TokenID string `json:"tokenId"`
	Weight  string `json:"weight"`
}

type pausePayload struct {
	Module string `json:"module"`
	Paused bool   `json:"paused"`
}

func decodeJSON(r *http.Request, out interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parseAmountList(values []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		parsed, err := parseAmount(v)
		if err != nil {
			return nil, err
		}
		out[i] = parsed
	}
	return out, nil
}
