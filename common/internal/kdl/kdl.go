package kdl

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sblinch/kdl-go"
)

// Unmarshal decodes the document at kdlPath on top of defaultCfg, so nodes
// missing from the document keep their default values.
func Unmarshal[T any](kdlPath string, defaultCfg T) (T, error) {
	var nilT T
	data, err := os.ReadFile(kdlPath)
	if err != nil {
		return nilT, errors.Wrap(err, "read config file")
	}
	return UnmarshalBytes(data, defaultCfg)
}

func UnmarshalBytes[T any](data []byte, defaultCfg T) (T, error) {
	var nilT T
	if err := kdl.Unmarshal(data, &defaultCfg); err != nil {
		return nilT, errors.Wrap(err, "decode kdl")
	}
	return defaultCfg, nil
}
