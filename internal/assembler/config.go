package assembler

// Config holds the tunables for the sentence assembler.
type Config struct {
	PunctGraceMs     int
	PauseFinalMs     int
	MinCharsForFinal int
	WeakEndWords     []string
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		PunctGraceMs:     900,
		PauseFinalMs:     2500,
		MinCharsForFinal: 24,
		WeakEndWords: []string{
			"doing", "going", "is", "are", "was", "were", "about", "with", "to", "for", "like",
		},
	}
}

func (c Config) weakEndSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.WeakEndWords))
	for _, w := range c.WeakEndWords {
		set[normalizeToken(w)] = struct{}{}
	}
	return set
}
