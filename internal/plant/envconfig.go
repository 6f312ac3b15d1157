package plant

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvConfigSource is a static ConfigSource backed by a fixed map. It is the
// development and test implementation; production deployments use
// PGConfigSource against the site's configuration database.
type EnvConfigSource struct {
	values map[string]string
}

// NewEnvConfigSource creates a ConfigSource over the given values.
func NewEnvConfigSource(values map[string]string) *EnvConfigSource {
	return &EnvConfigSource{values: values}
}

// EnvConfigFromEnviron builds an EnvConfigSource from process environment
// variables. A key "field_instructions_path" is read from
// PLANTGATE_CFG_FIELD_INSTRUCTIONS_PATH, and so on.
func EnvConfigFromEnviron() *EnvConfigSource {
	const prefix = "PLANTGATE_CFG_"
	values := make(map[string]string)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, prefix))
		values[key] = value
	}
	return &EnvConfigSource{values: values}
}

func (s *EnvConfigSource) GetValues(_ context.Context, keys []string) ([]string, error) {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		value, ok := s.values[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingKey, key)
		}
		out = append(out, value)
	}
	return out, nil
}
