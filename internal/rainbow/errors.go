package rainbow

import "github.com/pkg/errors"

var (
	ErrInvalidDigestFormat = errors.New("invalid digest format")
	ErrConfiguration       = errors.New("invalid table configuration")
)
