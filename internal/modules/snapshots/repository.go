// Package snapshots caches computed calculation responses keyed by a hash
// of their inputs, so repeated runs over an unchanged portfolio skip the
// full pipeline. Entries are msgpack-encoded rows in the cache database and
// are safe to drop at any time.
package snapshots

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/halcyon-energy/halcyon/internal/domain"
	"github.com/halcyon-energy/halcyon/internal/modules/portfolio"
)

// Repository stores calculation snapshots in the cache database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a snapshot repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "snapshots").Logger(),
	}
}

// InitSchema creates the snapshots table if it does not exist.
func (r *Repository) InitSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			key        TEXT PRIMARY KEY,
			data       BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}
	return nil
}

// Key derives the cache key for a portfolio and calculation config. Any
// change to either input changes the key.
func Key(p *domain.Portfolio, cfg portfolio.CalcConfig) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("failed to hash portfolio: %w", err)
	}
	if err := enc.Encode(cfg); err != nil {
		return "", fmt.Errorf("failed to hash config: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Put stores a calculation response under the given key.
func (r *Repository) Put(key string, response *portfolio.Response) error {
	data, err := msgpack.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = r.db.Exec(
		"INSERT OR REPLACE INTO snapshots (key, data, created_at) VALUES (?, ?, ?)",
		key, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", key, err)
	}

	r.log.Debug().Str("key", key).Int("bytes", len(data)).Msg("snapshot stored")
	return nil
}

// Get loads a snapshot by key. Returns nil on a cache miss (not an error);
// undecodable rows are treated as misses and deleted.
func (r *Repository) Get(key string) (*portfolio.Response, error) {
	var data []byte
	err := r.db.QueryRow("SELECT data FROM snapshots WHERE key = ?", key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}

	var response portfolio.Response
	if err := msgpack.Unmarshal(data, &response); err != nil {
		r.log.Warn().Str("key", key).Err(err).Msg("dropping undecodable snapshot")
		_, _ = r.db.Exec("DELETE FROM snapshots WHERE key = ?", key)
		return nil, nil
	}
	return &response, nil
}

// Purge deletes snapshots older than the given age and returns the count.
func (r *Repository) Purge(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := r.db.Exec("DELETE FROM snapshots WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge snapshots: %w", err)
	}
	return res.RowsAffected()
}
