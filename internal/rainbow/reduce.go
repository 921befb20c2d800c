package rainbow

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const reductionModulusBits = 40

// reductionMask is 2^40-1; masking takes the value modulo 2^40.
var reductionMask = uint256.NewInt(1<<reductionModulusBits - 1)

// Reducer maps a digest and a chain position back into the plaintext space.
type Reducer struct {
	alphabet []rune
	length   int
}

func NewReducer(alphabet string, length int) (*Reducer, error) {
	symbols := []rune(alphabet)
	if len(symbols) == 0 {
		return nil, errors.Wrap(ErrConfiguration, "empty alphabet")
	}
	if length < 1 {
		return nil, errors.Wrapf(ErrConfiguration, "password length %d", length)
	}
	seen := make(map[rune]struct{}, len(symbols))
	for _, r := range symbols {
		if _, ok := seen[r]; ok {
			return nil, errors.Wrapf(ErrConfiguration, "duplicate alphabet symbol %q", r)
		}
		seen[r] = struct{}{}
	}
	return &Reducer{alphabet: symbols, length: length}, nil
}

// Reduce interprets d as a big-endian integer, adds position, takes the
// result modulo 2^40 and writes it in base len(alphabet), least significant
// digit first.
func (r *Reducer) Reduce(d Digest, position int) string {
	// Only the low 40 bits survive, so the trailing 32 bytes are enough.
	if len(d) > 32 {
		d = d[len(d)-32:]
	}
	v := new(uint256.Int).SetBytes(d)
	v.AddUint64(v, uint64(position))
	v.And(v, reductionMask)

	n := v.Uint64()
	base := uint64(len(r.alphabet))
	out := make([]rune, r.length)
	for i := range out {
		out[i] = r.alphabet[n%base]
		n /= base
	}
	return string(out)
}

func (r *Reducer) Length() int {
	return r.length
}

func (r *Reducer) Alphabet() string {
	return string(r.alphabet)
}
