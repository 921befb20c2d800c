package rainbow

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/rainbow-table/internal/hashfunc"
	"golang.org/x/sync/errgroup"
)

type Params struct {
	Alphabet       string
	PasswordLength int
	ChainLength    int
}

// Entry is what the table keeps of a chain.
type Entry struct {
	Endpoint Digest
	Start    string
}

// Row is the presentation form of a chain.
type Row struct {
	Start  string `json:"start"`
	Last   string `json:"last"`
	Digest string `json:"digest"`
}

type Table struct {
	l       zerolog.Logger
	params  Params
	hasher  hashfunc.Hasher
	reducer *Reducer
	index   *Index
	chains  int
}

type Option func(*Table)

func WithLogger(l zerolog.Logger) Option {
	return func(t *Table) {
		t.l = l
	}
}

func NewTable(params Params, hasher hashfunc.Hasher, opts ...Option) (*Table, error) {
	if params.ChainLength < 1 {
		return nil, errors.Wrapf(ErrConfiguration, "chain length %d", params.ChainLength)
	}
	if hasher == nil {
		return nil, errors.Wrap(ErrConfiguration, "no hash function")
	}
	reducer, err := NewReducer(params.Alphabet, params.PasswordLength)
	if err != nil {
		return nil, err
	}
	t := &Table{
		params:  params,
		hasher:  hasher,
		reducer: reducer,
		index:   NewIndex(),
		l: log.With().
			Str("domain", "rainbow").
			Str("hash", hasher.Name()).
			Logger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Table) Params() Params {
	return t.params
}

func (t *Table) Hasher() hashfunc.Hasher {
	return t.hasher
}

func (t *Table) Index() *Index {
	return t.index
}

// Endpoints is the number of distinct chain endpoints in the index.
func (t *Table) Endpoints() int {
	return t.index.Len()
}

// Chains is the number of chains built so far, including those whose
// endpoint was later overwritten.
func (t *Table) Chains() int {
	return t.chains
}

// Build computes a chain for every plaintext in corpus and stores the
// endpoints. Chains are computed by up to workers goroutines; results are
// inserted in corpus order so that on endpoint collisions the later
// plaintext wins. Build must not run concurrently with lookups.
func (t *Table) Build(ctx context.Context, corpus []string, workers int) error {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	parts := partition(len(corpus), workers)
	results := make([][]Entry, len(parts))

	t.l.Debug().
		Int("chains", len(corpus)).
		Int("chain-length", t.params.ChainLength).
		Int("workers", len(parts)).
		Msg("building chains")

	g, gCtx := errgroup.WithContext(ctx)
	for i, p := range parts {
		g.Go(func() error {
			out := make([]Entry, 0, p.end-p.start)
			for _, plain := range corpus[p.start:p.end] {
				if err := gCtx.Err(); err != nil {
					return err
				}
				start, endpoint := t.BuildChain(plain)
				out = append(out, Entry{Endpoint: endpoint, Start: start})
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "build chains")
	}

	for _, entries := range results {
		for _, e := range entries {
			t.index.Insert(e.Endpoint, e.Start)
		}
	}
	t.chains += len(corpus)
	t.l.Info().
		Int("chains", t.chains).
		Int("endpoints", t.index.Len()).
		Msg("rainbow table built")
	return nil
}

// Rows returns up to limit presentation rows in endpoint order, skipping the
// first offset. Last is recomputed by replaying each chain.
func (t *Table) Rows(offset, limit int) []Row {
	var rows []Row
	if limit <= 0 {
		return rows
	}
	i := 0
	for endpoint, start := range t.index.All() {
		if i < offset {
			i++
			continue
		}
		rows = append(rows, Row{
			Start:  start,
			Last:   t.lastPlaintext(start),
			Digest: endpoint.String(),
		})
		if len(rows) == limit {
			break
		}
	}
	return rows
}

func (t *Table) lastPlaintext(start string) string {
	var last string
	for link := range t.Walk(start) {
		last = link.Plaintext
	}
	return last
}

type span struct {
	start, end int
}

func partition(n, parts int) []span {
	if n == 0 {
		return nil
	}
	parts = min(parts, n)
	spans := make([]span, 0, parts)
	for i := 0; i < parts; i++ {
		spans = append(spans, span{start: n * i / parts, end: n * (i + 1) / parts})
	}
	return spans
}
