package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourname/sleepreport/internal"
)

const pgUniqueViolation = "23505"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id       TEXT PRIMARY KEY,
	login    TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL DEFAULT '',
	token    TEXT NOT NULL UNIQUE,
	name     TEXT NOT NULL DEFAULT '',
	role     TEXT NOT NULL DEFAULT 'user'
);
CREATE TABLE IF NOT EXISTS sleep_logs (
	id         TEXT PRIMARY KEY,
	login      TEXT NOT NULL,
	date       DATE NOT NULL,
	sleep_time TEXT NOT NULL,
	wake_time  TEXT NOT NULL,
	wellbeing  TEXT NOT NULL DEFAULT '',
	comment    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (login, date)
);`

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		logger.Errorf("failed to apply postgres schema: %v", err)
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// --- RecordStore ---
func (p *PostgresStorage) SaveRecord(ctx context.Context, rec *internal.SleepRecord) error {
	date, err := time.Parse("2006-01-02", rec.Date)
	if err != nil {
		return fmt.Errorf("record date: %w", err)
	}
	_, err = p.pool.Exec(ctx, `INSERT INTO sleep_logs (id, login, date, sleep_time, wake_time, wellbeing, comment, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.User, date, rec.SleepTime, rec.WakeTime, string(rec.Wellbeing), rec.Comment, rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateEntry
		}
		p.logger.Errorf("failed to insert sleep record: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) FetchRecords(ctx context.Context, filter RecordFilter) ([]internal.SleepRecord, error) {
	query := `SELECT id, login, date, sleep_time, wake_time, wellbeing, comment, created_at FROM sleep_logs WHERE ($1 = '' OR login = $1)`
	args := []any{filter.User}
	if filter.Date != "" {
		date, err := time.Parse("2006-01-02", filter.Date)
		if err != nil {
			return nil, fmt.Errorf("filter date: %w", err)
		}
		query += ` AND date = $2`
		args = append(args, date)
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Errorf("failed to query sleep records: %v", err)
		return nil, err
	}
	defer rows.Close()

	recs := []internal.SleepRecord{}
	for rows.Next() {
		var r internal.SleepRecord
		var date time.Time
		var wellbeing string
		if err := rows.Scan(&r.ID, &r.User, &date, &r.SleepTime, &r.WakeTime, &wellbeing, &r.Comment, &r.CreatedAt); err != nil {
			p.logger.Errorf("failed to scan sleep record: %v", err)
			return nil, err
		}
		r.Date = date.Format("2006-01-02")
		r.Wellbeing = internal.WellbeingScore(wellbeing)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (p *PostgresStorage) HasEntry(ctx context.Context, user, date string) (bool, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false, fmt.Errorf("entry date: %w", err)
	}
	var exists bool
	err = p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sleep_logs WHERE login = $1 AND date = $2)`, user, d).Scan(&exists)
	if err != nil {
		p.logger.Errorf("failed to check today's entry: %v", err)
		return false, err
	}
	return exists, nil
}

// --- UserRepository ---
func (p *PostgresStorage) GetUserByToken(ctx context.Context, token string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, login, password, token, name, role FROM users WHERE token = $1`, token)
	return p.scanUser(row)
}

func (p *PostgresStorage) GetUserByLogin(ctx context.Context, login string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, login, password, token, name, role FROM users WHERE login = $1`, login)
	return p.scanUser(row)
}

func (p *PostgresStorage) scanUser(row pgx.Row) (*internal.User, error) {
	var u internal.User
	if err := row.Scan(&u.ID, &u.Login, &u.Password, &u.Token, &u.Name, &u.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Errorf("failed to scan user: %v", err)
		return nil, err
	}
	return &u, nil
}

// --- Compile-time assertions ---
var _ Store = (*PostgresStorage)(nil)
