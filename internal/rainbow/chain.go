package rainbow

import "iter"

// Link is one step of a chain: Plaintext hashes to Digest. Position 0 is the
// chain start; position i > 0 is the reduction of the digest at i-1.
type Link struct {
	Position  int
	Plaintext string
	Digest    Digest
}

func (t *Table) hash(plain string) Digest {
	return t.hasher.Sum([]byte(plain))
}

// BuildChain runs ChainLength reduce/hash steps from start and returns start
// with the final digest of the chain.
func (t *Table) BuildChain(start string) (string, Digest) {
	h := t.hash(start)
	for position := 0; position < t.params.ChainLength; position++ {
		h = t.hash(t.reducer.Reduce(h, position))
	}
	return start, h
}

// Walk replays the chain from start, yielding positions 0 through ChainLength.
func (t *Table) Walk(start string) iter.Seq[Link] {
	return func(yield func(Link) bool) {
		plain := start
		h := t.hash(plain)
		if !yield(Link{Position: 0, Plaintext: plain, Digest: h}) {
			return
		}
		for position := 0; position < t.params.ChainLength; position++ {
			plain = t.reducer.Reduce(h, position)
			h = t.hash(plain)
			if !yield(Link{Position: position + 1, Plaintext: plain, Digest: h}) {
				return
			}
		}
	}
}
