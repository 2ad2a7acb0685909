package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/toolforge/internal/domain"
	"github.com/soyeahso/toolforge/internal/logging"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	log := logging.New(nil, "silent")
	db, err := Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// --- DB/Migration tests ---

func TestOpen_InMemory(t *testing.T) {
	db := testDB(t)
	assert.NotNil(t, db)
	assert.NotNil(t, db.SQL())
}

func TestMigrations_Applied(t *testing.T) {
	db := testDB(t)

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)

	// Running migrate again should be a no-op
	err := db.migrate()
	require.NoError(t, err)

	var count int
	err = db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestSchema_TablesExist(t *testing.T) {
	db := testDB(t)

	var name string
	err := db.sql.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='tool_revisions'",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "tool_revisions", name)
}

// --- Revision store tests ---

func TestRevisionStore_RecordAndList(t *testing.T) {
	db := testDB(t)
	rs := NewRevisionStore(db)

	rs.Record("add", domain.RevisionCreate, "func add() {}")
	rs.Record("add", domain.RevisionUpdate, "func add() int { return 1 }")
	rs.Record("add", domain.RevisionDelete, "")

	revs, err := rs.ListByName("add", 10)
	require.NoError(t, err)
	require.Len(t, revs, 3)
	assert.Equal(t, domain.RevisionDelete, revs[0].Op)
	assert.Empty(t, revs[0].Code)
	for _, rev := range revs {
		assert.Equal(t, "add", rev.Name)
		assert.NotEmpty(t, rev.ID)
		assert.False(t, rev.CreatedAt.IsZero())
	}
}

func TestRevisionStore_ListByName_Scoped(t *testing.T) {
	db := testDB(t)
	rs := NewRevisionStore(db)

	rs.Record("add", domain.RevisionCreate, "func add() {}")
	rs.Record("greet", domain.RevisionCreate, "func greet() {}")

	revs, err := rs.ListByName("greet", 10)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.Equal(t, "greet", revs[0].Name)
}

func TestRevisionStore_ListByName_Empty(t *testing.T) {
	db := testDB(t)
	rs := NewRevisionStore(db)

	revs, err := rs.ListByName("missing", 10)
	require.NoError(t, err)
	assert.Empty(t, revs)
}

func TestRevisionStore_ListRecent(t *testing.T) {
	db := testDB(t)
	rs := NewRevisionStore(db)

	rs.Record("add", domain.RevisionCreate, "func add() {}")
	rs.Record("greet", domain.RevisionCreate, "func greet() {}")

	revs, err := rs.ListRecent(10)
	require.NoError(t, err)
	assert.Len(t, revs, 2)
}

func TestRevisionStore_LimitApplied(t *testing.T) {
	db := testDB(t)
	rs := NewRevisionStore(db)

	for range 5 {
		rs.Record("add", domain.RevisionUpdate, "func add() {}")
	}

	revs, err := rs.ListByName("add", 2)
	require.NoError(t, err)
	assert.Len(t, revs, 2)
}
