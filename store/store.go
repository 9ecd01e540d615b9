// Package store defines the persistence contract for Flizix financial
// records and its Postgres implementation.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("store: record not found")

// User is a registered Telegram identity. Users are created once and never
// edited; external_chat_id is the sole identity join for financial records.
type User struct {
	ID          int64  `db:"id"`
	DisplayName string `db:"display_name"`
	Email       string `db:"email"`
	TelegramID  int64  `db:"external_chat_id"`
}

// MonthEarn is the income total for one user and one calendar month.
// PeriodStart is always the first day of the month. LegacyTotal is a
// zero-initialized column kept for schema compatibility.
type MonthEarn struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	PeriodStart time.Time `db:"period_start"`
	TotalEarn   float64   `db:"total_earn"`
	LegacyTotal float64   `db:"legacy_total"`
}

// RecurrentPayment is an append-only record of a payment the user makes
// regularly. Duplicate names are allowed.
type RecurrentPayment struct {
	ID      int64          `db:"id"`
	UserID  int64          `db:"user_id"`
	Name    string         `db:"name"`
	Amount  float64        `db:"amount"`
	Comment sql.NullString `db:"comment"`
}

// Store is the narrow read/write contract used by command handlers.
type Store interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (User, error)
	CreateUser(ctx context.Context, u User) (int64, error)

	GetMonthEarn(ctx context.Context, userID int64, year int, month time.Month) (MonthEarn, error)
	InsertMonthEarn(ctx context.Context, userID int64, year int, month time.Month, amount float64) (int64, error)
	UpdateMonthEarnAmount(ctx context.Context, id int64, amount float64) error

	InsertRecurrentPayment(ctx context.Context, p RecurrentPayment) (int64, error)
}

// PeriodStart returns the canonical first-of-month date for a record key.
func PeriodStart(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}
