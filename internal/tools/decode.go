package tools

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// decodeArgs copies validated arguments into a typed struct using its json tags.
func decodeArgs[T any](args map[string]any) (*T, error) {
	var out T

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create argument decoder: %w", err)
	}

	if err := decoder.Decode(args); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	return &out, nil
}
