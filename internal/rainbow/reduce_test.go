package rainbow

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func digestOf(tail ...byte) Digest {
	d := make(Digest, 16)
	copy(d[len(d)-len(tail):], tail)
	return d
}

func TestReduce_LeastSignificantDigitFirst(t *testing.T) {
	r, err := NewReducer(lowercase, 3)
	require.NoError(t, err)

	assert.Equal(t, "aaa", r.Reduce(digestOf(0), 0))
	assert.Equal(t, "baa", r.Reduce(digestOf(1), 0))
	// 28 = 2 + 1*26
	assert.Equal(t, "cba", r.Reduce(digestOf(1), 27))
}

func TestReduce_ModuloTwoPow40(t *testing.T) {
	r, err := NewReducer(lowercase, 6)
	require.NoError(t, err)

	// 2^40 + 5 reduces to 5.
	d := digestOf(0x01, 0, 0, 0, 0, 0x05)
	assert.Equal(t, r.Reduce(digestOf(0x05), 0), r.Reduce(d, 0))
	assert.Equal(t, "faaaaa", r.Reduce(d, 0))

	// 2^40 - 1 + 1 wraps to 0.
	max40 := digestOf(0xff, 0xff, 0xff, 0xff, 0xff)
	assert.Equal(t, "aaaaaa", r.Reduce(max40, 1))
}

func TestReduce_WideDigestUsesLowBits(t *testing.T) {
	r, err := NewReducer(lowercase, 6)
	require.NoError(t, err)

	wide := make(Digest, 64)
	for i := range wide {
		wide[i] = byte(i * 7)
	}
	narrow := append(Digest(nil), wide[len(wide)-16:]...)
	assert.Equal(t, r.Reduce(narrow, 3), r.Reduce(wide, 3))
}

func TestReduce_DeterministicAndValid(t *testing.T) {
	h := md5Hasher(t)
	for _, alphabet := range []string{lowercase, "01", "abcdefghijklmnopqrstuvwxyz0123456789", "αβγδ"} {
		for _, length := range []int{1, 6, 9} {
			r, err := NewReducer(alphabet, length)
			require.NoError(t, err)
			for position := 0; position < 50; position++ {
				d := Digest(h.Sum([]byte{byte(position), byte(length)}))
				out := r.Reduce(d, position)
				assert.Equal(t, out, r.Reduce(d, position))
				assert.Equal(t, length, utf8.RuneCountInString(out))
				for _, s := range out {
					assert.True(t, strings.ContainsRune(alphabet, s))
				}
			}
		}
	}
}

func TestReduce_PositionChangesOutput(t *testing.T) {
	r, err := NewReducer(lowercase, 6)
	require.NoError(t, err)
	d := Digest(md5Hasher(t).Sum([]byte("abcdef")))
	assert.NotEqual(t, r.Reduce(d, 0), r.Reduce(d, 1))
}

func TestNewReducer_Degenerate(t *testing.T) {
	cases := []struct {
		alphabet string
		length   int
	}{
		{"", 6},
		{lowercase, 0},
		{lowercase, -1},
		{"aba", 3},
	}
	for _, c := range cases {
		_, err := NewReducer(c.alphabet, c.length)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfiguration), "%q/%d", c.alphabet, c.length)
	}
}
