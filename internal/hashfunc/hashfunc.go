package hashfunc

import (
	"crypto/md5"
	"crypto/sha1"
	"sort"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/md4"
	"golang.org/x/crypto/ripemd160"

	sha256 "github.com/minio/sha256-simd"
)

const DefaultName = "md5"

var ErrUnknownHash = errors.New("unknown hash algorithm")

// Hasher is a deterministic one-way function producing digests of Size bytes.
type Hasher interface {
	Name() string
	Size() int
	Sum(data []byte) []byte
}

type hasher struct {
	name string
	size int
	sum  func([]byte) []byte
}

func (h *hasher) Name() string {
	return h.name
}

func (h *hasher) Size() int {
	return h.size
}

func (h *hasher) Sum(data []byte) []byte {
	return h.sum(data)
}

var registry = map[string]Hasher{}

func register(name string, size int, sum func([]byte) []byte) {
	registry[name] = &hasher{name: name, size: size, sum: sum}
}

func init() {
	register("md5", md5.Size, func(b []byte) []byte {
		s := md5.Sum(b)
		return s[:]
	})
	register("sha1", sha1.Size, func(b []byte) []byte {
		s := sha1.Sum(b)
		return s[:]
	})
	register("sha256", sha256.Size, func(b []byte) []byte {
		s := sha256.Sum256(b)
		return s[:]
	})
	register("blake3", 32, func(b []byte) []byte {
		s := blake3.Sum256(b)
		return s[:]
	})
	register("xxh3", 16, func(b []byte) []byte {
		s := xxh3.Hash128(b).Bytes()
		return s[:]
	})
	register("md4", md4.Size, func(b []byte) []byte {
		h := md4.New()
		h.Write(b)
		return h.Sum(nil)
	})
	register("ripemd160", ripemd160.Size, func(b []byte) []byte {
		h := ripemd160.New()
		h.Write(b)
		return h.Sum(nil)
	})
}

func Get(name string) (Hasher, error) {
	if h, ok := registry[name]; ok {
		return h, nil
	}
	return nil, errors.Wrapf(ErrUnknownHash, "%q", name)
}

// Names lists the registered algorithms in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
