package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lettertrack/models"
	"lettertrack/storage/migrations"
	"lettertrack/utils"

	_ "modernc.org/sqlite"
)

// SQLStorage keeps letters in a SQLite table. It backs the JSON API.
type SQLStorage struct {
	db *sql.DB
}

// OpenSQLite opens the database at path and applies the embedded migrations
func OpenSQLite(path string) (*SQLStorage, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; the app serves a single user.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLStorage{db: db}, nil
}

// Close closes the SQLite handle
func (s *SQLStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const letterColumns = `id, letter_number, sender_name, subject, date_sent, expected_reply_date, section_number, received`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLetter(row rowScanner) (*models.Letter, error) {
	var (
		letter   models.Letter
		sent     string
		due      string
		received int
	)
	if err := row.Scan(
		&letter.ID,
		&letter.LetterNumber,
		&letter.SenderName,
		&letter.Subject,
		&sent,
		&due,
		&letter.SectionNumber,
		&received,
	); err != nil {
		return nil, err
	}

	var err error
	if letter.DateSent, err = time.Parse(utils.DateLayout, sent); err != nil {
		return nil, fmt.Errorf("letter %s: date_sent: %w", letter.ID, err)
	}
	if letter.ExpectedReplyDate, err = time.Parse(utils.DateLayout, due); err != nil {
		return nil, fmt.Errorf("letter %s: expected_reply_date: %w", letter.ID, err)
	}
	letter.Received = received != 0
	return &letter, nil
}

// ListAll returns every letter ordered by expected reply date then id
func (s *SQLStorage) ListAll(ctx context.Context) ([]models.Letter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+letterColumns+` FROM letters ORDER BY expected_reply_date ASC, id ASC`)
	if err != nil {
		return nil, utils.StorageError("Failed to load letters", err)
	}
	defer rows.Close()

	letters := []models.Letter{}
	for rows.Next() {
		letter, err := scanLetter(rows)
		if err != nil {
			return nil, utils.StorageError("Failed to load letters", err)
		}
		letters = append(letters, *letter)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.StorageError("Failed to load letters", err)
	}

	return letters, nil
}

// Create validates input and inserts a new letter
func (s *SQLStorage) Create(ctx context.Context, in models.NewLetter) (*models.Letter, error) {
	letter, err := prepareLetter(in)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO letters (
		   id,
		   letter_number,
		   sender_name,
		   subject,
		   date_sent,
		   expected_reply_date,
		   section_number,
		   received,
		   created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		letter.ID,
		letter.LetterNumber,
		letter.SenderName,
		letter.Subject,
		utils.FormatDate(letter.DateSent),
		utils.FormatDate(letter.ExpectedReplyDate),
		letter.SectionNumber,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return nil, utils.StorageError("Failed to save letter", err)
	}

	return letter, nil
}

// MarkReceived sets received on one letter inside a transaction
func (s *SQLStorage) MarkReceived(ctx context.Context, id string) (*models.Letter, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, utils.StorageError("Failed to update letter", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE letters SET received = 1 WHERE id = ?`, id)
	if err != nil {
		return nil, utils.StorageError("Failed to update letter", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, utils.StorageError("Failed to update letter", err)
	}
	if n == 0 {
		return nil, notFound(id)
	}

	letter, err := scanLetter(tx.QueryRowContext(ctx, `SELECT `+letterColumns+` FROM letters WHERE id = ?`, id))
	if err != nil {
		return nil, utils.StorageError("Failed to update letter", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, utils.StorageError("Failed to update letter", err)
	}

	return letter, nil
}
