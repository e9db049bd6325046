package portfolio

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func TestGetDailyReturnsRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	repo := NewRepository(testPool(t))
	ctx := context.Background()

	accountID := "test-account"
	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	returns := []float64{0.012, -0.004, 0.021}

	for i, r := range returns {
		require.NoError(t, repo.SaveDailyReturn(ctx, accountID, base.AddDate(0, 0, i), r))
	}

	series, err := repo.GetDailyReturns(ctx, accountID, base, base.AddDate(0, 0, len(returns)))
	require.NoError(t, err)

	require.Equal(t, len(returns), series.Len())
	for i, r := range returns {
		assert.InDelta(t, r, series.At(i).Value, 1e-12)
	}
}

func TestGetDailyReturnsEmptyRange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	repo := NewRepository(testPool(t))

	series, err := repo.GetDailyReturns(context.Background(), "no-such-account",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, series.IsEmpty())
}
