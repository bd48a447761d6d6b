package claims

// Status is the discriminated outcome of a non-mutating claim precondition
// check. Callers are expected to consult CanClaim before submitting the
// mutating call to avoid wasted failed attempts.
type Status uint8

const (
	StatusOK Status = iota
	StatusInvalidRequest
	StatusWindowNotFound
	StatusWindowNotOpen
	StatusWindowClosed
	StatusAlreadyClaimed
	StatusInvalidProof
	StatusSupplyExceeded
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalidRequest:
		return "invalid_request"
	case StatusWindowNotFound:
		return "window_not_found"
	case StatusWindowNotOpen:
		return "window_not_open"
	case StatusWindowClosed:
		return "window_closed"
	case StatusAlreadyClaimed:
		return "already_claimed"
	case StatusInvalidProof:
		return "invalid_proof"
	case StatusSupplyExceeded:
		return "supply_exceeded"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Claimable reports whether the status permits a mutating claim.
func (s Status) Claimable() bool { return s == StatusOK }
