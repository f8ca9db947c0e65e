package testutil

// DefaultSession is the session id used when a scenario does not name one.
const DefaultSession = "test-session-default"

// FixedSessionGenerator returns the same session id every time, so repeated
// runs of a scenario produce identical dispatch ids.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator returns a generator for id, or for DefaultSession
// when id is empty.
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = DefaultSession
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
