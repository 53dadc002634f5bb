package database

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "nested", "docgen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	assert.ErrorContains(t, err, `unsupported database driver "mysql"`)

	_, err = Open(DriverSQLite, "")
	assert.Error(t, err)

	_, err = Open("postgres", "")
	assert.Error(t, err)
}

func TestSaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created := time.Date(2024, 5, 1, 9, 30, 0, 123, time.FixedZone("CEST", 2*3600))
	a := &Analysis{
		SessionID:       "2024-05-01T07-30-abcdefabcdef",
		FileKey:         "abc123",
		FileName:        "Shop",
		CreatedAt:       created,
		ColorCount:      4,
		TypographyCount: 2,
		SpacingCount:    3,
		RadiusCount:     1,
		Tokens:          json.RawMessage(`{"colors":[]}`),
		Sources:         map[string]string{"analysis": "model", "designkit": "default"},
	}
	require.NoError(t, db.Save(ctx, a))
	assert.NotZero(t, a.ID)

	got, err := db.Get(ctx, a.SessionID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "Shop", got.FileName)
	assert.Equal(t, 4, got.ColorCount)
	assert.JSONEq(t, `{"colors":[]}`, string(got.Tokens))
	assert.Equal(t, a.Sources, got.Sources)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, time.UTC, got.CreatedAt.Location())
}

func TestSaveReplacesSameSession(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := &Analysis{SessionID: "s1", FileKey: "k", ColorCount: 1}
	require.NoError(t, db.Save(ctx, first))

	second := &Analysis{SessionID: "s1", FileKey: "k", ColorCount: 9}
	require.NoError(t, db.Save(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	got, err := db.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 9, got.ColorCount)
	assert.Empty(t, got.Sources)
	assert.JSONEq(t, `{}`, string(got.Tokens))

	all, err := db.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveValidation(t *testing.T) {
	db := setupTestDB(t)
	assert.Error(t, db.Save(context.Background(), nil))
	assert.Error(t, db.Save(context.Background(), &Analysis{SessionID: "  "}))
}

func TestGetNotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"b", "a", "c"} {
		require.NoError(t, db.Save(ctx, &Analysis{SessionID: id, FileKey: "k", CreatedAt: base.Add(time.Duration(i) * time.Hour)}))
	}

	got, err := db.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].SessionID, got[1].SessionID, got[2].SessionID})

	limited, err := db.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	empty, err := setupTestDB(t).List(ctx, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestListOrdersAcrossOffsets(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tokyo := time.Date(2024, 1, 1, 10, 0, 0, 0, time.FixedZone("JST", 9*3600))  // 01:00Z
	newYork := time.Date(2024, 1, 1, 3, 0, 0, 0, time.FixedZone("EST", -5*3600)) // 08:00Z
	require.NoError(t, db.Save(ctx, &Analysis{SessionID: "tokyo", FileKey: "k", CreatedAt: tokyo}))
	require.NoError(t, db.Save(ctx, &Analysis{SessionID: "new-york", FileKey: "k", CreatedAt: newYork}))

	got, err := db.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new-york", got[0].SessionID, "ordering follows the instant, not the wall clock")
	assert.True(t, newYork.Equal(got[0].CreatedAt))

	assert.Equal(t, "2024-01-01T01:00:00.000000000Z", formatTime(tokyo))
	assert.Less(t, formatTime(tokyo), formatTime(newYork))
}

func TestConcurrentSaves(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, db.Save(ctx, &Analysis{SessionID: "s" + string(rune('a'+i)), FileKey: "k"}))
		}(i)
	}
	wg.Wait()

	got, err := db.List(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := &DB{driver: DriverSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

type countingRepo struct {
	Repository
	gets int
}

func (r *countingRepo) Get(ctx context.Context, sessionID string) (*Analysis, error) {
	r.gets++
	return r.Repository.Get(ctx, sessionID)
}

func TestCachedRepository(t *testing.T) {
	ctx := context.Background()
	inner := &countingRepo{Repository: setupTestDB(t)}
	repo, err := NewCachedRepository(inner, 2)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, &Analysis{SessionID: "s1", FileKey: "k", FileName: "One"}))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "One", got.FileName)
	assert.Equal(t, 0, inner.gets, "saved analyses are served from the cache")

	got.FileName = "mutated"
	again, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "One", again.FileName, "callers receive copies")

	require.NoError(t, repo.Save(ctx, &Analysis{SessionID: "s2", FileKey: "k"}))
	require.NoError(t, repo.Save(ctx, &Analysis{SessionID: "s3", FileKey: "k"}))
	assert.Equal(t, 2, repo.Len())

	_, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets, "evicted entries are read through")

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestNewCachedRepositoryNil(t *testing.T) {
	_, err := NewCachedRepository(nil, 1)
	assert.Error(t, err)
}
