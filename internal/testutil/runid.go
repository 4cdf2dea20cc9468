package testutil

// FixedRunID returns the same run ID every time, so every run of a
// scenario records under a name known in advance. It satisfies
// engine.RunIDGenerator.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a fixed generator. An empty id becomes
// "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed ID.
func (g *FixedRunID) Generate() string {
	return g.id
}
