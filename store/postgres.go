package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Postgres implements Store on top of a sqlx connection pool.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an established sqlx pool.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// GetUserByTelegramID resolves a Telegram chat identity to its user row.
func (p *Postgres) GetUserByTelegramID(ctx context.Context, telegramID int64) (User, error) {
	const query = `
		SELECT id, display_name, email, external_chat_id
		FROM users
		WHERE external_chat_id = $1`

	var u User
	if err := p.db.GetContext(ctx, &u, query, telegramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user by telegram id: %w", err)
	}
	return u, nil
}

// CreateUser inserts a new user row and returns its generated id.
func (p *Postgres) CreateUser(ctx context.Context, u User) (int64, error) {
	const query = `
		INSERT INTO users (display_name, email, external_chat_id)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id int64
	if err := p.db.QueryRowxContext(ctx, query, u.DisplayName, u.Email, u.TelegramID).Scan(&id); err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// GetMonthEarn fetches the earning record for one user and month, if any.
func (p *Postgres) GetMonthEarn(ctx context.Context, userID int64, year int, month time.Month) (MonthEarn, error) {
	const query = `
		SELECT id, user_id, period_start, total_earn, legacy_total
		FROM month_data
		WHERE user_id = $1 AND period_start = $2`

	var me MonthEarn
	if err := p.db.GetContext(ctx, &me, query, userID, PeriodStart(year, month)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return MonthEarn{}, ErrNotFound
		}
		return MonthEarn{}, fmt.Errorf("get month earn: %w", err)
	}
	return me, nil
}

// InsertMonthEarn creates the earning record for a month with the legacy
// running total zeroed, returning the generated id.
func (p *Postgres) InsertMonthEarn(ctx context.Context, userID int64, year int, month time.Month, amount float64) (int64, error) {
	const query = `
		INSERT INTO month_data (user_id, period_start, total_earn, legacy_total)
		VALUES ($1, $2, $3, 0.00)
		RETURNING id`

	var id int64
	if err := p.db.QueryRowxContext(ctx, query, userID, PeriodStart(year, month), amount).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert month earn: %w", err)
	}
	return id, nil
}

// UpdateMonthEarnAmount overwrites the amount of an existing earning record.
// Last write wins, no merge.
func (p *Postgres) UpdateMonthEarnAmount(ctx context.Context, id int64, amount float64) error {
	const query = `UPDATE month_data SET total_earn = $1 WHERE id = $2`

	if _, err := p.db.ExecContext(ctx, query, amount, id); err != nil {
		return fmt.Errorf("update month earn: %w", err)
	}
	return nil
}

// InsertRecurrentPayment appends a payment row, returning the generated id.
func (p *Postgres) InsertRecurrentPayment(ctx context.Context, rp RecurrentPayment) (int64, error) {
	const query = `
		INSERT INTO recurrent_payments (user_id, name, amount, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int64
	if err := p.db.QueryRowxContext(ctx, query, rp.UserID, rp.Name, rp.Amount, rp.Comment).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert recurrent payment: %w", err)
	}
	return id, nil
}

var _ Store = (*Postgres)(nil)
