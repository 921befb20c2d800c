package rainbow

import (
	"iter"

	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/memdb"
)

// Index maps chain endpoints to the plaintext the chain started from.
// It is a skiplist ordered by digest bytes and is safe for concurrent use.
type Index struct {
	db *memdb.DB
}

func NewIndex() *Index {
	return &Index{db: memdb.New(comparer.DefaultComparer, 0)}
}

// Insert stores start under endpoint. An existing entry for the same
// endpoint is overwritten.
func (x *Index) Insert(endpoint Digest, start string) {
	// memdb.Put only fails on a released db.
	_ = x.db.Put(endpoint, []byte(start))
}

func (x *Index) Find(endpoint Digest) (string, bool) {
	v, err := x.db.Get(endpoint)
	if err != nil {
		return "", false
	}
	return string(v), true
}

func (x *Index) Len() int {
	return x.db.Len()
}

// All yields entries in ascending endpoint order. Every call starts a new
// traversal.
func (x *Index) All() iter.Seq2[Digest, string] {
	return func(yield func(Digest, string) bool) {
		it := x.db.NewIterator(nil)
		defer it.Release()
		for it.Next() {
			key := append(Digest(nil), it.Key()...)
			if !yield(key, string(it.Value())) {
				return
			}
		}
	}
}
