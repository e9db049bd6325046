package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonhee/folio/internal/timeseries"
)

// Repository loads stored portfolio return history
// ⭐ SSOT: 포트폴리오 수익률 조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new portfolio repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetDailyReturns retrieves the daily return series for an account over a period
func (r *Repository) GetDailyReturns(ctx context.Context, accountID string, startDate, endDate time.Time) (*timeseries.Series, error) {
	query := `
		SELECT date, daily_return
		FROM portfolio.daily_snapshots
		WHERE account_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, accountID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily returns: %w", err)
	}
	defer rows.Close()

	series := timeseries.New()
	for rows.Next() {
		var date time.Time
		var ret float64
		if err := rows.Scan(&date, &ret); err != nil {
			return nil, fmt.Errorf("failed to scan daily return: %w", err)
		}
		if err := series.Append(date, ret); err != nil {
			return nil, fmt.Errorf("invalid snapshot ordering: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily returns: %w", err)
	}

	return series, nil
}

// SaveDailyReturn upserts one day's return for an account
func (r *Repository) SaveDailyReturn(ctx context.Context, accountID string, date time.Time, dailyReturn float64) error {
	query := `
		INSERT INTO portfolio.daily_snapshots (account_id, date, daily_return)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, date)
		DO UPDATE SET daily_return = EXCLUDED.daily_return
	`

	_, err := r.pool.Exec(ctx, query, accountID, timeseries.Truncate(date), dailyReturn)
	if err != nil {
		return fmt.Errorf("failed to save daily return: %w", err)
	}

	return nil
}
