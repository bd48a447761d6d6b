package claims

// Window is the per-epoch claim record. It is created exactly once per epoch
// identifier and immutable thereafter.
type Window struct {
	Root      [32]byte
	StartTime uint64
	EndTime   uint64
}

// TemporalStatus reports whether now falls inside the window. Both bounds are
// inclusive.
func (w *Window) TemporalStatus(now uint64) error {
	if w == nil {
		return ErrWindowNotFound
	}
	if now < w.StartTime {
		return ErrWindowNotOpen
	}
	if now > w.EndTime {
		return ErrWindowClosed
	}
	return nil
}
