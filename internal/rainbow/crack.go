package rainbow

// Match is a confirmed lookup result. Plaintext hashes to the queried digest;
// it sits at Position of the chain that begins at ChainStart.
type Match struct {
	Plaintext  string `json:"plaintext"`
	ChainStart string `json:"chainStart"`
	Position   int    `json:"position"`
}

// Crack searches the table for a plaintext whose hash is target. Every chain
// position is tried, from the endpoint backwards; an index hit only counts
// once replaying the chain reproduces target.
func (t *Table) Crack(target Digest) (Match, bool) {
	if len(target) != t.hasher.Size() {
		return Match{}, false
	}
	for position := t.params.ChainLength; position >= 0; position-- {
		start, ok := t.index.Find(t.rollForward(target, position))
		if !ok {
			continue
		}
		if m, ok := t.confirm(start, target, position); ok {
			t.l.Debug().
				Str("target", target.String()).
				Str("chain-start", start).
				Int("position", m.Position).
				Msg("digest cracked")
			return m, true
		}
		t.l.Trace().
			Str("target", target.String()).
			Int("position", position).
			Msg("false alarm")
	}
	return Match{}, false
}

// CrackHex parses a hex digest and cracks it. A miss is not an error.
func (t *Table) CrackHex(s string) (Match, bool, error) {
	target, err := ParseDigest(s, t.hasher.Size())
	if err != nil {
		return Match{}, false, err
	}
	m, ok := t.Crack(target)
	return m, ok, nil
}

// rollForward treats d as the digest at position and returns the endpoint
// its chain would have.
func (t *Table) rollForward(d Digest, position int) Digest {
	for p := position; p < t.params.ChainLength; p++ {
		d = t.hash(t.reducer.Reduce(d, p))
	}
	return d
}

func (t *Table) confirm(start string, target Digest, upTo int) (Match, bool) {
	for link := range t.Walk(start) {
		if link.Position > upTo {
			break
		}
		if link.Digest.Equal(target) {
			return Match{Plaintext: link.Plaintext, ChainStart: start, Position: link.Position}, true
		}
	}
	return Match{}, false
}
