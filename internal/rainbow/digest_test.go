package rainbow

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDigest(t *testing.T) {
	d, err := ParseDigest(" E80B5017098950FC58AAD83C8C14978E\n", 16)
	require.NoError(t, err)
	assert.Equal(t, "e80b5017098950fc58aad83c8c14978e", d.String())
}

func TestParseDigest_Invalid(t *testing.T) {
	for _, s := range []string{
		"",
		"e80b5017098950fc58aad83c8c14978",
		"e80b5017098950fc58aad83c8c14978e00",
		"z80b5017098950fc58aad83c8c14978e",
		"not a digest",
	} {
		_, err := ParseDigest(s, 16)
		require.Error(t, err, s)
		assert.True(t, errors.Is(err, ErrInvalidDigestFormat), s)
	}
}
