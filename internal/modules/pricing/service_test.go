package pricing

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/halcyon-energy/halcyon/internal/domain"
)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func flatConstants() domain.Constants {
	c := domain.DefaultConstants()
	c.Escalation = 0
	return c
}

func mustParse(t *testing.T, label string) domain.TimePeriod {
	t.Helper()
	// Inline parse to avoid an import cycle with the intervals package:
	// the pricing tests only need annual periods.
	return domain.TimePeriod{Label: label, Year: 2025, Adjustment: 1.0}
}

func TestMerchantPrice_DefaultsWhenSourceMissing(t *testing.T) {
	svc := NewService(nil, testLogger())
	period := mustParse(t, "2025")

	assert.Equal(t, 35.0, svc.MerchantPrice(domain.TechnologySolar, "green", "NSW", period, flatConstants()))
	assert.Equal(t, 65.0, svc.MerchantPrice(domain.TechnologySolar, "Energy", "NSW", period, flatConstants()))
	assert.Equal(t, 35.0, svc.MerchantPrice(domain.TechnologyWind, "green", "VIC", period, flatConstants()))
}

func TestMerchantPrice_ZeroFromSourceTreatedAsMissing(t *testing.T) {
	source := SourceFunc(func(profile, productType, state, periodLabel string) (float64, bool) {
		return 0, true
	})
	svc := NewService(source, testLogger())

	price := svc.MerchantPrice(domain.TechnologySolar, "Energy", "NSW", mustParse(t, "2025"), flatConstants())
	assert.Equal(t, 65.0, price)
}

func TestMerchantPrice_SourceOverridesDefaults(t *testing.T) {
	source := SourceFunc(func(profile, productType, state, periodLabel string) (float64, bool) {
		if profile == "solar" && productType == "Energy" && state == "NSW" {
			return 72.5, true
		}
		return 0, false
	})
	svc := NewService(source, testLogger())

	price := svc.MerchantPrice(domain.TechnologySolar, "Energy", "NSW", mustParse(t, "2025"), flatConstants())
	assert.Equal(t, 72.5, price)
}

func TestMerchantPrice_Escalation(t *testing.T) {
	svc := NewService(nil, testLogger())
	constants := domain.DefaultConstants() // 2.5%/yr from 2025

	period := domain.TimePeriod{Label: "2027", Year: 2027, Adjustment: 1.0}
	price := svc.MerchantPrice(domain.TechnologySolar, "Energy", "NSW", period, constants)
	assert.InDelta(t, 65.0*1.025*1.025, price, 1e-9)
}

func TestStorageSpread_Interpolation(t *testing.T) {
	svc := NewService(nil, testLogger())
	period := mustParse(t, "2025")
	constants := flatConstants()

	tests := []struct {
		duration float64
		want     float64
	}{
		{0.25, 160}, // clamps below
		{0.5, 160},
		{0.75, 170}, // midway 0.5h..1h
		{1, 180},
		{1.5, 190}, // midway 1h..2h
		{2, 200},
		{3, 210}, // midway 2h..4h
		{4, 220},
		{6, 220}, // clamps above
	}
	for _, tt := range tests {
		got := svc.StorageSpread("NSW", tt.duration, period, constants)
		assert.InDelta(t, tt.want, got, 1e-9, "duration %.2fh", tt.duration)
	}
}

func TestEscalate_BeforeReferenceYearDeflates(t *testing.T) {
	constants := domain.DefaultConstants()
	price := Escalate(100, 2024, constants)
	assert.InDelta(t, 100/1.025, price, 1e-9)
}

func setupPriceDB(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db, testLogger())
	require.NoError(t, repo.InitSchema())
	return repo
}

func TestRepository_RoundTrip(t *testing.T) {
	repo := setupPriceDB(t)

	require.NoError(t, repo.Upsert("solar", "Energy", "NSW", "2025", 68.0))
	require.NoError(t, repo.Upsert("solar", "Energy", "NSW", "2025", 71.0)) // upsert replaces

	price, ok := repo.Price("solar", "Energy", "NSW", "2025")
	assert.True(t, ok)
	assert.Equal(t, 71.0, price)

	_, ok = repo.Price("solar", "Energy", "QLD", "2025")
	assert.False(t, ok)
}

func TestRepository_UpsertBatchIsAtomic(t *testing.T) {
	repo := setupPriceDB(t)

	points := []CurvePoint{
		{Profile: "solar", ProductType: "green", State: "NSW", Period: "2025", Price: 34},
		{Profile: "solar", ProductType: "green", State: "NSW", Period: "2026", Price: 35},
		{Profile: "solar", ProductType: "Energy", State: "NSW", Period: "2025", Price: 66},
	}
	require.NoError(t, repo.UpsertBatch(points))

	for _, p := range points {
		price, ok := repo.Price(p.Profile, p.ProductType, p.State, p.Period)
		assert.True(t, ok)
		assert.Equal(t, p.Price, price)
	}

	// A second batch replaces overlapping points in place.
	require.NoError(t, repo.UpsertBatch([]CurvePoint{
		{Profile: "solar", ProductType: "green", State: "NSW", Period: "2025", Price: 36},
	}))
	price, ok := repo.Price("solar", "green", "NSW", "2025")
	assert.True(t, ok)
	assert.Equal(t, 36.0, price)
}

func TestRepository_FeedsServiceSpread(t *testing.T) {
	repo := setupPriceDB(t)
	require.NoError(t, repo.Upsert("storage", "1h", "NSW", "2025", 200))
	require.NoError(t, repo.Upsert("storage", "2h", "NSW", "2025", 240))

	svc := NewService(repo, testLogger())
	spread := svc.StorageSpread("NSW", 1.5, mustParse(t, "2025"), flatConstants())
	assert.InDelta(t, 220, spread, 1e-9)
}
