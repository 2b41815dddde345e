package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	modeldb "github.com/ether/articlestore/lib/models/db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const postgresDSNEnv = "ARTICLESTORE_TEST_POSTGRES_DSN"

func CreateRandomContentRecord(faker *gofakeit.Faker) modeldb.ContentRecordDB {
	text := faker.Paragraph(2, 3, 8, " ")
	return modeldb.ContentRecordDB{
		ID:         uuid.NewString(),
		Kind:       "full",
		Payload:    []byte(text),
		Length:     len(text),
		TextLength: len(text),
		Checksum:   faker.Int64(),
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
}

func CreateRandomRevision(articleID, language string, version int) modeldb.RevisionDB {
	return modeldb.RevisionDB{
		ID:        uuid.NewString(),
		ArticleID: articleID,
		Language:  language,
		Version:   version,
		Enabled:   true,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		CreatedBy: "tester",
	}
}

// storeMatrix returns every DataStore implementation available in the
// current environment. Postgres joins only when a DSN is exported.
func storeMatrix(t *testing.T) map[string]DataStore {
	t.Helper()

	stores := map[string]DataStore{
		"memory": NewMemoryDataStore(),
	}

	sqliteStore, err := NewSQLiteDB(filepath.Join(t.TempDir(), "articles.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })
	stores["sqlite"] = sqliteStore

	if dsn := os.Getenv(postgresDSNEnv); dsn != "" {
		pgStore, err := NewPostgresDBFromDSN(dsn, PostgresOptions{}, nil)
		require.NoError(t, err)
		t.Cleanup(func() { pgStore.Close() })
		stores["postgres"] = pgStore
	}

	return stores
}
