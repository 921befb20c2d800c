package rainbow

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/ykhdr/rainbow-table/internal/hashfunc"
)

const lowercase = "abcdefghijklmnopqrstuvwxyz"

func md5Hasher(t *testing.T) hashfunc.Hasher {
	t.Helper()
	h, err := hashfunc.Get("md5")
	require.NoError(t, err)
	return h
}

// tinyHasher keeps a single byte of md5 so that chains merge and index hits
// are mostly false alarms.
type tinyHasher struct {
	inner hashfunc.Hasher
}

func (h tinyHasher) Name() string { return "tiny" }
func (h tinyHasher) Size() int    { return 1 }
func (h tinyHasher) Sum(data []byte) []byte {
	return h.inner.Sum(data)[:1]
}

func newTestTable(t *testing.T, h hashfunc.Hasher, chainLength int, corpus ...string) *Table {
	t.Helper()
	table, err := NewTable(Params{
		Alphabet:       lowercase,
		PasswordLength: 6,
		ChainLength:    chainLength,
	}, h, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	if len(corpus) > 0 {
		require.NoError(t, table.Build(context.Background(), corpus, 4))
	}
	return table
}
