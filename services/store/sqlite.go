package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"sjsage522/encarworker/internal/crawler"
	"sjsage522/encarworker/pkg/errors"
)

// TableName is the table holding known listings
const TableName = "encar_searches"

const createTableSQL = `CREATE TABLE IF NOT EXISTS ` + TableName + ` (
	link TEXT NOT NULL,
	car_id TEXT NOT NULL,
	title TEXT,
	details TEXT,
	year TEXT,
	km TEXT,
	price TEXT,
	added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	seen INTEGER DEFAULT 0,
	PRIMARY KEY (link, car_id)
)`

// SQLiteStore implements KnownStore on a SQLite file. The database is
// opened and closed for every operation.
type SQLiteStore struct {
	path string
}

// NewSQLiteStore creates a store backed by the file at path
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Path returns the database file
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", s.path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Init creates the parent directory and the table
func (s *SQLiteStore) Init(ctx context.Context) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.NewStorage("", "create database directory", err)
		}
	}

	db, err := s.open()
	if err != nil {
		return errors.NewStorage("", "open database", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		return errors.NewStorage("", "enable WAL", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return errors.NewStorage("", "create table", err)
	}
	return nil
}

// exists reports whether the database file and table are present, so reads
// never create an empty database as a side effect
func (s *SQLiteStore) exists(ctx context.Context, db *sql.DB) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, TableName,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// Existing returns the car ids recorded for link
func (s *SQLiteStore) Existing(ctx context.Context, link string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return ids, nil
	}

	db, err := s.open()
	if err != nil {
		return ids, errors.NewStorage(link, "open database", err)
	}
	defer db.Close()

	ok, err := s.exists(ctx, db)
	if err != nil {
		return ids, errors.NewStorage(link, "inspect schema", err)
	}
	if !ok {
		return ids, nil
	}

	rows, err := db.QueryContext(ctx, `SELECT car_id FROM `+TableName+` WHERE link = ?`, link)
	if err != nil {
		return ids, errors.NewStorage(link, "query known ids", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return make(map[string]struct{}), errors.NewStorage(link, "scan known id", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return make(map[string]struct{}), errors.NewStorage(link, "read known ids", err)
	}

	return ids, nil
}

// Add inserts listings under link in one transaction. Known ids are ignored.
func (s *SQLiteStore) Add(ctx context.Context, link string, listings []crawler.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	db, err := s.open()
	if err != nil {
		return errors.NewStorage(link, "open database", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorage(link, "begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO `+TableName+`
		(link, car_id, title, details, year, km, price)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.NewStorage(link, "prepare insert", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		if _, err := stmt.ExecContext(ctx, link, l.ID, l.Title, l.Details, l.Year, l.Mileage, l.Price); err != nil {
			return errors.NewStorage(link, "insert "+l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStorage(link, "commit", err)
	}
	return nil
}

// Stats returns the number of known ids per link
func (s *SQLiteStore) Stats(ctx context.Context) (map[string]int, error) {
	stats := make(map[string]int)

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return stats, nil
	}

	db, err := s.open()
	if err != nil {
		return stats, errors.NewStorage("", "open database", err)
	}
	defer db.Close()

	ok, err := s.exists(ctx, db)
	if err != nil || !ok {
		if err != nil {
			err = errors.NewStorage("", "inspect schema", err)
		}
		return stats, err
	}

	rows, err := db.QueryContext(ctx, `SELECT link, COUNT(*) FROM `+TableName+` GROUP BY link`)
	if err != nil {
		return stats, errors.NewStorage("", "query stats", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			link  string
			count int
		)
		if err := rows.Scan(&link, &count); err != nil {
			return stats, errors.NewStorage("", "scan stats", err)
		}
		stats[link] = count
	}
	return stats, rows.Err()
}
