package plant

import (
	"context"
	"database/sql"
	"fmt"
)

// PGConfigSource resolves configuration keys from a Postgres plant_config
// table (one row per key). Production sites keep gateway configuration
// beside the historian database.
type PGConfigSource struct {
	db *sql.DB
}

// NewPGConfigSource creates a ConfigSource backed by the given connection
// pool. The pool is owned by the caller.
func NewPGConfigSource(db *sql.DB) *PGConfigSource {
	return &PGConfigSource{db: db}
}

func (s *PGConfigSource) GetValues(ctx context.Context, keys []string) ([]string, error) {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		var value string
		err := s.db.QueryRowContext(ctx,
			`SELECT value FROM plant_config WHERE key = $1`, key,
		).Scan(&value)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %q", ErrMissingKey, key)
		}
		if err != nil {
			return nil, fmt.Errorf("PGConfigSource.GetValues %q: %w", key, err)
		}
		out = append(out, value)
	}
	return out, nil
}
