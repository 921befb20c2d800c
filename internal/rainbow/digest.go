package rainbow

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// Digest is a raw hash value. Digests order byte-wise, which is the same
// order as their lower-case hex form.
type Digest []byte

func (d Digest) String() string {
	return hex.EncodeToString(d)
}

func (d Digest) Equal(o Digest) bool {
	return bytes.Equal(d, o)
}

func (d Digest) Compare(o Digest) int {
	return bytes.Compare(d, o)
}

// ParseDigest decodes a hex digest of exactly size bytes.
func ParseDigest(s string, size int) (Digest, error) {
	s = strings.TrimSpace(s)
	if len(s) != 2*size {
		return nil, errors.Wrapf(ErrInvalidDigestFormat, "expected %d hex characters, got %d", 2*size, len(s))
	}
	d, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidDigestFormat, err.Error())
	}
	return d, nil
}
