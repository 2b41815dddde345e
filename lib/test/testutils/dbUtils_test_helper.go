package testutils

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/ether/articlestore/lib"
	"github.com/ether/articlestore/lib/api"
	"github.com/ether/articlestore/lib/db"
	"github.com/ether/articlestore/lib/models/revision"
	revisionManager "github.com/ether/articlestore/lib/revision"
	"github.com/ether/articlestore/lib/settings"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PostgresDSNEnv enables the Postgres runs when it holds a connection string.
// Tests must use fresh scopes (see RandomScope) since the database is shared
// between runs.
const PostgresDSNEnv = "ARTICLESTORE_TEST_POSTGRES_DSN"

var postgresTestLock sync.Mutex

type TestDataStore struct {
	DS        db.DataStore
	Logger    *zap.SugaredLogger
	Manager   *revisionManager.Manager
	Metrics   *revisionManager.Metrics
	Validator *validator.Validate
	App       *fiber.App
	Settings  *settings.Settings
}

func (t *TestDataStore) ToInitStore() *lib.InitStore {
	return &lib.InitStore{
		C:                 t.App,
		RetrievedSettings: t.Settings,
		Store:             t.DS,
		RevisionManager:   t.Manager,
		Metrics:           t.Metrics,
		Validator:         t.Validator,
		Logger:            t.Logger,
	}
}

type TestRunConfig struct {
	Name string
	// Options overrides the manager defaults when set.
	Options *revisionManager.Options
	Test    func(t *testing.T, tsStore TestDataStore)
}

type TestDBHandler struct {
	t     *testing.T
	tests []TestRunConfig
}

func NewTestDBHandler(t *testing.T) *TestDBHandler {
	return &TestDBHandler{t: t}
}

func (test *TestDBHandler) AddTests(testConfs ...TestRunConfig) {
	test.tests = append(test.tests, testConfs...)
}

func (test *TestDBHandler) StartTestDBHandler() {
	datastores := map[string]func(t *testing.T) db.DataStore{
		"Memory": func(t *testing.T) db.DataStore {
			return db.NewMemoryDataStore()
		},
		"SQLite": func(t *testing.T) db.DataStore {
			sqliteDB, err := db.NewSQLiteDB(filepath.Join(t.TempDir(), "articles.db"), nil)
			if err != nil {
				t.Fatalf("Failed to create SQLite DataStore: %v", err)
			}
			return sqliteDB
		},
	}
	if dsn := os.Getenv(PostgresDSNEnv); dsn != "" {
		datastores["Postgres"] = func(t *testing.T) db.DataStore {
			postgresDB, err := db.NewPostgresDBFromDSN(dsn, db.PostgresOptions{}, nil)
			if err != nil {
				t.Fatalf("Failed to create Postgres DataStore: %v", err)
			}
			return postgresDB
		}
	}

	for dsName, newDS := range datastores {
		test.t.Run(dsName, func(t *testing.T) {
			t.Parallel()

			for _, testConf := range test.tests {
				test.TestRun(t, testConf, newDS, dsName)
			}
		})
	}
}

func (test *TestDBHandler) TestRun(
	t *testing.T,
	testRun TestRunConfig,
	newDS func(t *testing.T) db.DataStore,
	dsName string,
) {
	t.Run(testRun.Name, func(t *testing.T) {
		if dsName == "Postgres" {
			postgresTestLock.Lock()
			defer postgresTestLock.Unlock()
		}

		ds := newDS(t)
		t.Cleanup(func() { ds.Close() })

		options := revisionManager.DefaultOptions()
		if testRun.Options != nil {
			options = *testRun.Options
		}

		loggerPart := zap.NewNop().Sugar()
		metrics := revisionManager.NewMetrics()
		retrievedSettings, err := settings.ReadConfig(`{"dbType": "memory"}`)
		if err != nil {
			t.Fatalf("Failed to read default settings: %v", err)
		}

		testRun.Test(t, TestDataStore{
			DS:        ds,
			Logger:    loggerPart,
			Manager:   revisionManager.NewManager(ds, options, metrics, loggerPart),
			Metrics:   metrics,
			Validator: validator.New(validator.WithRequiredStructEnabled()),
			App:       api.NewApp(),
			Settings:  retrievedSettings,
		})
	})
}

// RandomScope returns a scope no other test uses.
func RandomScope() revision.Scope {
	return revision.Scope{
		ArticleID: gofakeit.UUID(),
		Language:  gofakeit.RandomString([]string{"en", "de", "fr", "pt-BR"}),
	}
}
