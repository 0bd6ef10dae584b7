package testutil

// FixedTokenGenerator gives every search the same log token, so that a
// scenario's log output is byte-identical across runs. It implements
// search.TokenGenerator and is safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator returns a generator of token, or of
// "test-search-default" when token is empty.
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-search-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed token.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}
