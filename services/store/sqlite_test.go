package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/encarworker/internal/crawler"
)

const (
	linkA = "https://www.encar.com/dc/dc_carsearchlist.do?carType=kor"
	linkB = "https://www.encar.com/dc/dc_carsearchlist.do?carType=for"
)

var _ KnownStore = (*SQLiteStore)(nil)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "user_data", "cars.db"))
	require.NoError(t, s.Init(context.Background()))
	return s
}

func TestInitIdempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Init(context.Background()))

	_, err := os.Stat(s.Path())
	assert.NoError(t, err)
}

func TestExistingUninitialized(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cars.db")
	s := NewSQLiteStore(path)

	ids, err := s.Existing(ctx, linkA)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	// No file is created by a read
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// An empty file without the table behaves the same
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	ids, err = s.Existing(ctx, linkA)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAddIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	listings := []crawler.Listing{
		{ID: "101", Title: "쏘나타", Year: "19/05", Mileage: "35,000km", Price: "1,890"},
		{ID: "102", Title: "K5"},
	}

	require.NoError(t, s.Add(ctx, linkA, listings))
	once, err := s.Existing(ctx, linkA)
	require.NoError(t, err)

	require.NoError(t, s.Add(ctx, linkA, listings))
	twice, err := s.Existing(ctx, linkA)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, map[string]struct{}{"101": {}, "102": {}}, twice)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{linkA: 2}, stats)
}

func TestAddKeepsFirstSighting(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Add(ctx, linkA, []crawler.Listing{{ID: "101", Price: "1,890"}}))
	require.NoError(t, s.Add(ctx, linkA, []crawler.Listing{{ID: "101", Price: "1,500"}}))

	db, err := sql.Open("sqlite3", s.Path())
	require.NoError(t, err)
	defer db.Close()

	var price string
	require.NoError(t, db.QueryRow(`SELECT price FROM encar_searches WHERE link = ? AND car_id = ?`, linkA, "101").Scan(&price))
	assert.Equal(t, "1,890", price)
}

func TestLinksArePartitioned(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Add(ctx, linkA, []crawler.Listing{{ID: "101"}}))
	require.NoError(t, s.Add(ctx, linkB, []crawler.Listing{{ID: "101"}, {ID: "300"}}))

	a, err := s.Existing(ctx, linkA)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"101": {}}, a)

	b, err := s.Existing(ctx, linkB)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"101": {}, "300": {}}, b)

	none, err := s.Existing(ctx, "https://www.encar.com/other")
	require.NoError(t, err)
	assert.Empty(t, none)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{linkA: 1, linkB: 2}, stats)
}

func TestLegacySchemaStillReadable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cars.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE encar_searches (
		link TEXT NOT NULL, car_id TEXT NOT NULL, title TEXT, details TEXT,
		year TEXT, km TEXT, price TEXT,
		added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP, seen INTEGER DEFAULT 0,
		PRIMARY KEY (car_id))`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s := NewSQLiteStore(path)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Add(ctx, linkA, []crawler.Listing{{ID: "101"}}))
	require.NoError(t, s.Add(ctx, linkB, []crawler.Listing{{ID: "101"}}))

	ids, err := s.Existing(ctx, linkA)
	require.NoError(t, err)
	assert.Contains(t, ids, "101")

	// The legacy key keeps the first link only
	ids, err = s.Existing(ctx, linkB)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAddEmpty(t *testing.T) {
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "cars.db"))
	assert.NoError(t, s.Add(context.Background(), linkA, nil))
}

func TestAddWithoutInit(t *testing.T) {
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "cars.db"))
	err := s.Add(context.Background(), linkA, []crawler.Listing{{ID: "1"}})
	assert.Error(t, err)
}
