package types

// Event represents a structured state change recorded by the engine. The
// attribute map carries enough identifying data to reconstruct program state
// from the event log alone.
type Event struct {
	Type       string
	Attributes map[string]string
}
