package pricing

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/halcyon-energy/halcyon/internal/database"
)

// Repository persists merchant price curves and implements Source against
// the prices database. Curves are keyed by profile (technology), product
// type ("green", "Energy", "0.5h".."4h" for storage spreads), state and
// period label.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a price curve repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "pricing").Logger(),
	}
}

// InitSchema creates the merchant_prices table when absent.
func (r *Repository) InitSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS merchant_prices (
			profile      TEXT NOT NULL,
			product_type TEXT NOT NULL,
			state        TEXT NOT NULL,
			period       TEXT NOT NULL,
			price        REAL NOT NULL,
			PRIMARY KEY (profile, product_type, state, period)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create merchant_prices schema: %w", err)
	}
	return nil
}

// Price implements Source. Missing rows report (0, false) so the pricing
// service can resolve through its default tables.
func (r *Repository) Price(profile, productType, state, periodLabel string) (float64, bool) {
	var price float64
	err := r.db.QueryRow(`
		SELECT price FROM merchant_prices
		WHERE profile = ? AND product_type = ? AND state = ? AND period = ?
	`, profile, productType, state, periodLabel).Scan(&price)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			r.log.Error().Err(err).
				Str("profile", profile).
				Str("product", productType).
				Msg("price lookup failed, falling back to defaults")
		}
		return 0, false
	}
	return price, true
}

// Upsert stores one price curve point.
func (r *Repository) Upsert(profile, productType, state, periodLabel string, price float64) error {
	_, err := r.db.Exec(`
		INSERT INTO merchant_prices (profile, product_type, state, period, price)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (profile, product_type, state, period) DO UPDATE SET price = excluded.price
	`, profile, productType, state, periodLabel, price)
	if err != nil {
		return fmt.Errorf("failed to upsert price: %w", err)
	}
	return nil
}

// CurvePoint is one row of a price curve for batch storage.
type CurvePoint struct {
	Profile     string
	ProductType string
	State       string
	Period      string
	Price       float64
}

// UpsertBatch stores a whole curve upload in one transaction, so a failure
// partway through leaves the stored curve untouched.
func (r *Repository) UpsertBatch(points []CurvePoint) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO merchant_prices (profile, product_type, state, period, price)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (profile, product_type, state, period) DO UPDATE SET price = excluded.price
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare price upsert: %w", err)
		}
		defer stmt.Close()

		for _, p := range points {
			if _, err := stmt.Exec(p.Profile, p.ProductType, p.State, p.Period, p.Price); err != nil {
				return fmt.Errorf("failed to upsert price for %s/%s/%s/%s: %w",
					p.Profile, p.ProductType, p.State, p.Period, err)
			}
		}
		return nil
	})
}

// CurveForProfile returns all stored points for one profile and state,
// keyed by "productType|period". Used by the price export endpoint.
func (r *Repository) CurveForProfile(profile, state string) (map[string]float64, error) {
	rows, err := r.db.Query(`
		SELECT product_type, period, price FROM merchant_prices
		WHERE profile = ? AND state = ?
		ORDER BY period, product_type
	`, profile, state)
	if err != nil {
		return nil, fmt.Errorf("failed to query price curve: %w", err)
	}
	defer rows.Close()

	curve := make(map[string]float64)
	for rows.Next() {
		var productType, period string
		var price float64
		if err := rows.Scan(&productType, &period, &price); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		curve[productType+"|"+period] = price
	}
	return curve, rows.Err()
}
