package rainbow

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ykhdr/rainbow-table/internal/corpus"
	"github.com/ykhdr/rainbow-table/internal/hashfunc"
)

func TestNewTable_Degenerate(t *testing.T) {
	h := md5Hasher(t)
	cases := []struct {
		name   string
		params Params
		hasher hashfunc.Hasher
	}{
		{"zero chain length", Params{Alphabet: lowercase, PasswordLength: 6, ChainLength: 0}, h},
		{"empty alphabet", Params{Alphabet: "", PasswordLength: 6, ChainLength: 10}, h},
		{"zero password length", Params{Alphabet: lowercase, PasswordLength: 0, ChainLength: 10}, h},
		{"no hasher", Params{Alphabet: lowercase, PasswordLength: 6, ChainLength: 10}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewTable(c.params, c.hasher)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
		})
	}
}

func TestBuildChain_SingleStep(t *testing.T) {
	h := md5Hasher(t)
	table := newTestTable(t, h, 1)
	r, err := NewReducer(lowercase, 6)
	require.NoError(t, err)

	start, endpoint := table.BuildChain("abcdef")
	assert.Equal(t, "abcdef", start)
	want := h.Sum([]byte(r.Reduce(h.Sum([]byte("abcdef")), 0)))
	assert.Equal(t, Digest(want), endpoint)
}

func TestWalk_MatchesBuildChain(t *testing.T) {
	h := md5Hasher(t)
	table := newTestTable(t, h, 25)
	var links []Link
	for link := range table.Walk("qwerty") {
		links = append(links, link)
	}
	require.Len(t, links, 26)
	assert.Equal(t, "qwerty", links[0].Plaintext)
	for i, link := range links {
		assert.Equal(t, i, link.Position)
		assert.Equal(t, Digest(h.Sum([]byte(link.Plaintext))), link.Digest)
	}
	_, endpoint := table.BuildChain("qwerty")
	assert.Equal(t, endpoint, links[25].Digest)
}

func TestBuild_ReplayInvariant(t *testing.T) {
	h := md5Hasher(t)
	passwords := corpus.NewSeeded(lowercase, 6, 7).Generate(200)
	table := newTestTable(t, h, 50, passwords...)

	assert.Equal(t, 200, table.Chains())
	n := 0
	for endpoint, start := range table.Index().All() {
		_, replayed := table.BuildChain(start)
		assert.Equal(t, endpoint, replayed, "chain from %s", start)
		n++
	}
	assert.Equal(t, table.Index().Len(), n)
}

func TestBuild_LaterCorpusEntryWinsCollisions(t *testing.T) {
	h := tinyHasher{inner: md5Hasher(t)}
	passwords := corpus.NewSeeded(lowercase, 6, 3).Generate(300)
	table := newTestTable(t, h, 5, passwords...)

	want := map[string]string{}
	for _, p := range passwords {
		_, endpoint := table.BuildChain(p)
		want[endpoint.String()] = p
	}
	require.Less(t, len(want), len(passwords), "tiny digests must collide")
	assert.Equal(t, len(want), table.Index().Len())
	for endpoint, start := range table.Index().All() {
		assert.Equal(t, want[endpoint.String()], start)
	}
}

func TestBuild_WorkerCountDoesNotMatter(t *testing.T) {
	h := tinyHasher{inner: md5Hasher(t)}
	passwords := corpus.NewSeeded(lowercase, 6, 11).Generate(97)
	collect := func(workers int) map[string]string {
		table := newTestTable(t, h, 3)
		require.NoError(t, table.Build(context.Background(), passwords, workers))
		out := map[string]string{}
		for endpoint, start := range table.Index().All() {
			out[endpoint.String()] = start
		}
		return out
	}
	single := collect(1)
	assert.Equal(t, single, collect(8))
	assert.Equal(t, single, collect(200))
	assert.Equal(t, single, collect(0))
}

func TestBuild_EmptyCorpus(t *testing.T) {
	table := newTestTable(t, md5Hasher(t), 10)
	require.NoError(t, table.Build(context.Background(), nil, 4))
	assert.Equal(t, 0, table.Index().Len())
	assert.Empty(t, table.Rows(0, 10))
}

func TestBuild_Canceled(t *testing.T) {
	table := newTestTable(t, md5Hasher(t), 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := table.Build(ctx, []string{"abcdef", "ghijkl"}, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, table.Index().Len())
}

func TestRows(t *testing.T) {
	h := md5Hasher(t)
	passwords := corpus.NewSeeded(lowercase, 6, 5).Generate(20)
	table := newTestTable(t, h, 8, passwords...)

	all := table.Rows(0, 100)
	require.Len(t, all, table.Index().Len())
	for i, row := range all {
		assert.Equal(t, Digest(h.Sum([]byte(row.Last))).String(), row.Digest)
		_, endpoint := table.BuildChain(row.Start)
		assert.Equal(t, endpoint.String(), row.Digest)
		if i > 0 {
			assert.True(t, all[i-1].Digest < row.Digest)
		}
	}

	page := table.Rows(5, 3)
	assert.Equal(t, all[5:8], page)
	assert.Empty(t, table.Rows(100, 3))
	assert.Empty(t, table.Rows(0, 0))
}

func TestPartition(t *testing.T) {
	spans := partition(10, 3)
	require.Len(t, spans, 3)
	assert.Equal(t, 0, spans[0].start)
	assert.Equal(t, 10, spans[2].end)
	for i := 1; i < len(spans); i++ {
		assert.Equal(t, spans[i-1].end, spans[i].start)
	}
	assert.Len(t, partition(2, 8), 2)
	assert.Nil(t, partition(0, 4))
}
