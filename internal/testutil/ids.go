package testutil

// FixedIDGenerator returns the same id every time.
//
// Harness runs stamp their trace with a run id; a fixed id keeps golden
// traces byte-identical across runs.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator for id.
// If id is empty, NewID() returns "test-run-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedIDGenerator{id: id}
}

// NewID returns the fixed id.
func (g *FixedIDGenerator) NewID() string {
	return g.id
}
