package migrations

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	sqlDb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDb.Close() })
	return sqlDb
}

func TestRunAppliesAllMigrations(t *testing.T) {
	sqlDb := openSQLite(t)
	manager := NewMigrationManager(sqlDb, DialectSQLite, nil)

	require.NoError(t, manager.Run())

	version, err := manager.GetCurrentVersion()
	require.NoError(t, err)
	require.Equal(t, len(GetMigrations()), version)

	pending, err := manager.Pending()
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestRunIsIdempotent(t *testing.T) {
	sqlDb := openSQLite(t)
	manager := NewMigrationManager(sqlDb, DialectSQLite, nil)

	require.NoError(t, manager.Run())
	require.NoError(t, manager.Run())

	var count int
	require.NoError(t, sqlDb.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	require.Equal(t, len(GetMigrations()), count)
}

func TestPendingBeforeRun(t *testing.T) {
	sqlDb := openSQLite(t)
	manager := NewMigrationManager(sqlDb, DialectSQLite, nil)

	pending, err := manager.Pending()
	require.NoError(t, err)
	require.Len(t, pending, len(GetMigrations()))
	require.Equal(t, 1, pending[0].Version)
}

func TestVersionUniquePerScope(t *testing.T) {
	sqlDb := openSQLite(t)
	require.NoError(t, NewMigrationManager(sqlDb, DialectSQLite, nil).Run())

	insertContent := `INSERT INTO content_record (id, kind, payload, length, text_length, checksum, created_at)
		VALUES (?, 'full', x'61', 1, 1, 0, CURRENT_TIMESTAMP)`
	insertRevision := `INSERT INTO revision (id, article_id, language, version, content_record_id, enabled, created_at, created_by)
		VALUES (?, 'a1', 'en', 1, ?, 1, CURRENT_TIMESTAMP, 'tester')`

	_, err := sqlDb.Exec(insertContent, "c1")
	require.NoError(t, err)
	_, err = sqlDb.Exec(insertContent, "c2")
	require.NoError(t, err)

	_, err = sqlDb.Exec(insertRevision, "r1", "c1")
	require.NoError(t, err)
	_, err = sqlDb.Exec(insertRevision, "r2", "c2")
	require.Error(t, err)
}
