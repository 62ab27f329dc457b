package adapters

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dividend_backend/internal/feature/history/domain"
	"dividend_backend/internal/feature/projection/domain/entity"
	"dividend_backend/internal/shared/calendar"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	// every pooled connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&SnapshotModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

// newSnapshot builds a one-position snapshot for testing.
func newSnapshot(date string, value, annual int64) entity.Snapshot {
	return entity.Snapshot{
		Date:                calendar.MustParse(date),
		TotalValue:          decimal.NewFromInt(value),
		TotalCost:           decimal.NewNullDecimal(decimal.NewFromInt(value / 2)),
		TotalAnnualDividend: decimal.NewFromInt(annual),
		Yield:               decimal.NewNullDecimal(decimal.NewFromInt(annual).Div(decimal.NewFromInt(value)).Round(6)),
		Positions: []entity.PositionMetric{
			{
				Ticker:         "KO",
				Shares:         decimal.NewFromInt(100),
				Price:          decimal.NewNullDecimal(decimal.NewFromInt(value / 100)),
				MarketValue:    decimal.NewNullDecimal(decimal.NewFromInt(value)),
				AnnualDividend: decimal.NewFromInt(annual),
				Frequency:      "quarterly",
			},
		},
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestNewSnapshotGormRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewSnapshotGormRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestSnapshotGorm_SaveAndLoadRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSnapshotGormRepository(db)
	ctx := context.Background()

	s := newSnapshot("2025-01-08", 102000, 3400)
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Load(ctx, s.Date)
	require.NoError(t, err)
	assert.JSONEq(t, mustJSON(t, s), mustJSON(t, got))
}

func TestSnapshotGorm_SaveIsIdempotentPerDate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSnapshotGormRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newSnapshot("2025-01-08", 100000, 3000)))
	second := newSnapshot("2025-01-08", 102000, 3400)
	require.NoError(t, repo.Save(ctx, second))

	var count int64
	require.NoError(t, db.Model(&SnapshotModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "same date must leave exactly one row")

	got, err := repo.Load(ctx, second.Date)
	require.NoError(t, err)
	assert.True(t, got.TotalValue.Equal(decimal.NewFromInt(102000)), "second save wins")
}

func TestSnapshotGorm_LoadMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSnapshotGormRepository(db)

	_, err := repo.Load(context.Background(), calendar.MustParse("2025-01-01"))
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestSnapshotGorm_LoadMalformedPositions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSnapshotGormRepository(db)

	require.NoError(t, db.Create(&SnapshotModel{
		Date:                "2025-01-02",
		TotalValue:          decimal.NewFromInt(1),
		TotalAnnualDividend: decimal.Zero,
		Positions:           "{broken",
	}).Error)

	_, err := repo.Load(context.Background(), calendar.MustParse("2025-01-02"))
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)
}

func TestSnapshotGorm_DatesAscending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSnapshotGormRepository(db)
	ctx := context.Background()

	for _, d := range []string{"2025-01-08", "2024-12-31", "2025-01-01"} {
		require.NoError(t, repo.Save(ctx, newSnapshot(d, 100000, 3000)))
	}

	dates, err := repo.Dates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []calendar.Date{
		calendar.MustParse("2024-12-31"),
		calendar.MustParse("2025-01-01"),
		calendar.MustParse("2025-01-08"),
	}, dates)
}

func TestSnapshotGorm_SaveWithoutDate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSnapshotGormRepository(db)

	err := repo.Save(context.Background(), entity.Snapshot{})
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
