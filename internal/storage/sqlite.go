package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourname/sleepreport/internal"
	_ "modernc.org/sqlite"
)

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id       TEXT PRIMARY KEY,
		login    TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL DEFAULT '',
		token    TEXT NOT NULL UNIQUE,
		name     TEXT NOT NULL DEFAULT '',
		role     TEXT NOT NULL DEFAULT 'user'
	)`,
	`CREATE TABLE IF NOT EXISTS sleep_logs (
		id         TEXT PRIMARY KEY,
		login      TEXT NOT NULL,
		date       TEXT NOT NULL,
		sleep_time TEXT NOT NULL,
		wake_time  TEXT NOT NULL,
		wellbeing  TEXT NOT NULL DEFAULT '',
		comment    TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		UNIQUE (login, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sleep_logs_date ON sleep_logs(date)`,
}

// SQLiteStorage keeps records in a local SQLite file. path ":memory:" gives a
// throwaway database.
type SQLiteStorage struct {
	db     *sql.DB
	logger internal.Logger
}

// OpenSQLite opens the database, enables WAL for file databases and runs migrations.
func OpenSQLite(path string, logger internal.Logger) (*SQLiteStorage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	for i, stmt := range sqliteMigrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// AddUser inserts or replaces a user. Used for seeding; users are otherwise
// managed outside this service.
func (s *SQLiteStorage) AddUser(ctx context.Context, u *internal.User) error {
	role := u.Role
	if role == "" {
		role = internal.RoleUser
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO users (id, login, password, token, name, role) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Login, u.Password, u.Token, u.Name, role)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// --- RecordStore ---
func (s *SQLiteStorage) SaveRecord(ctx context.Context, rec *internal.SleepRecord) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO sleep_logs (id, login, date, sleep_time, wake_time, wellbeing, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.User, rec.Date, rec.SleepTime, rec.WakeTime, string(rec.Wellbeing), rec.Comment,
		rec.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: sleep_logs.login, sleep_logs.date") {
			return ErrDuplicateEntry
		}
		s.logger.Errorf("failed to insert sleep record: %v", err)
		return fmt.Errorf("inserting sleep record: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) FetchRecords(ctx context.Context, filter RecordFilter) ([]internal.SleepRecord, error) {
	query := `SELECT id, login, date, sleep_time, wake_time, wellbeing, comment, created_at
		FROM sleep_logs WHERE (? = '' OR login = ?) AND (? = '' OR date = ?)`
	rows, err := s.db.QueryContext(ctx, query, filter.User, filter.User, filter.Date, filter.Date)
	if err != nil {
		s.logger.Errorf("failed to query sleep records: %v", err)
		return nil, fmt.Errorf("listing sleep records: %w", err)
	}
	defer rows.Close()

	recs := []internal.SleepRecord{}
	for rows.Next() {
		var r internal.SleepRecord
		var wellbeing, createdAt string
		if err := rows.Scan(&r.ID, &r.User, &r.Date, &r.SleepTime, &r.WakeTime, &wellbeing, &r.Comment, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning sleep record: %w", err)
		}
		r.Wellbeing = internal.WellbeingScore(wellbeing)
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			r.CreatedAt = t
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (s *SQLiteStorage) HasEntry(ctx context.Context, user, date string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sleep_logs WHERE login = ? AND date = ?`, user, date).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking entry: %w", err)
	}
	return n > 0, nil
}

// --- UserRepository ---
func (s *SQLiteStorage) GetUserByToken(ctx context.Context, token string) (*internal.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, login, password, token, name, role FROM users WHERE token = ?`, token)
	return scanSQLiteUser(row)
}

func (s *SQLiteStorage) GetUserByLogin(ctx context.Context, login string) (*internal.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, login, password, token, name, role FROM users WHERE login = ?`, login)
	return scanSQLiteUser(row)
}

func scanSQLiteUser(row *sql.Row) (*internal.User, error) {
	var u internal.User
	if err := row.Scan(&u.ID, &u.Login, &u.Password, &u.Token, &u.Name, &u.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

// --- Compile-time assertions ---
var _ Store = (*SQLiteStorage)(nil)
