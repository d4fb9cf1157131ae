package portfolio

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/halcyon-energy/halcyon/internal/domain"
)

// Repository persists portfolios as JSON documents. One row per portfolio,
// keyed by name, with the full asset map serialized into the data column.
// The document format is the same shape the HTTP API accepts, so rows can be
// imported and exported without translation.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a portfolio repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "portfolio").Logger(),
	}
}

// InitSchema creates the portfolios table if it does not exist.
func (r *Repository) InitSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS portfolios (
			name       TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create portfolios table: %w", err)
	}
	return nil
}

// Save inserts or replaces a portfolio document.
func (r *Repository) Save(name string, portfolio *domain.Portfolio) error {
	data, err := json.Marshal(portfolio)
	if err != nil {
		return fmt.Errorf("failed to serialize portfolio %s: %w", name, err)
	}

	_, err = r.db.Exec(
		"INSERT OR REPLACE INTO portfolios (name, data, updated_at) VALUES (?, ?, ?)",
		name, string(data), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save portfolio %s: %w", name, err)
	}

	r.log.Debug().Str("name", name).Int("bytes", len(data)).Msg("portfolio saved")
	return nil
}

// Get loads a portfolio by name. Returns nil if not found (not an error).
func (r *Repository) Get(name string) (*domain.Portfolio, error) {
	var data string
	err := r.db.QueryRow("SELECT data FROM portfolios WHERE name = ?", name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio %s: %w", name, err)
	}

	var portfolio domain.Portfolio
	if err := json.Unmarshal([]byte(data), &portfolio); err != nil {
		return nil, fmt.Errorf("failed to parse portfolio %s: %w", name, err)
	}
	return &portfolio, nil
}

// List returns the names of all stored portfolios.
func (r *Repository) List() ([]string, error) {
	rows, err := r.db.Query("SELECT name FROM portfolios ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a portfolio by name.
func (r *Repository) Delete(name string) error {
	_, err := r.db.Exec("DELETE FROM portfolios WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio %s: %w", name, err)
	}
	return nil
}
