package corpus

import (
	"math/rand/v2"
	"strings"
)

const LowercaseAlphabet = "abcdefghijklmnopqrstuvwxyz"

// Generator produces random fixed-length passwords over an alphabet.
// Passwords are not guaranteed to be unique.
type Generator struct {
	alphabet []rune
	length   int
	rng      *rand.Rand
}

func NewGenerator(alphabet string, length int, rng *rand.Rand) *Generator {
	return &Generator{
		alphabet: []rune(alphabet),
		length:   length,
		rng:      rng,
	}
}

// NewSeeded returns a generator backed by a PCG source seeded with seed.
func NewSeeded(alphabet string, length int, seed uint64) *Generator {
	return NewGenerator(alphabet, length, rand.New(rand.NewPCG(seed, seed)))
}

func (g *Generator) Generate(count int) []string {
	out := make([]string, 0, max(count, 0))
	if len(g.alphabet) == 0 || g.length <= 0 {
		return out
	}
	for i := 0; i < count; i++ {
		out = append(out, g.next())
	}
	return out
}

func (g *Generator) next() string {
	sb := strings.Builder{}
	sb.Grow(g.length)
	for j := 0; j < g.length; j++ {
		sb.WriteRune(g.alphabet[g.rng.IntN(len(g.alphabet))])
	}
	return sb.String()
}
