package migrations

import (
	"database/sql"
)

// GetMigrations returns all available migrations
func GetMigrations() []Migration {
	return []Migration{
		migration001InitialSchema(),
		migration002EnabledIndex(),
	}
}

// migration001InitialSchema creates the content record and revision tables
func migration001InitialSchema() Migration {
	return Migration{
		Version:     1,
		Description: "Initial schema - content records and revisions",
		Up: func(db *sql.DB, dialect Dialect) error {
			var queries []string

			switch dialect {
			case DialectPostgres:
				queries = getPostgresInitialSchema()
			default:
				queries = getSQLiteInitialSchema()
			}

			for _, query := range queries {
				if _, err := db.Exec(query); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func getSQLiteInitialSchema() []string {
	return []string{
		// CONTENT RECORDS
		`CREATE TABLE IF NOT EXISTS content_record (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK (kind IN ('full', 'diff')),
			payload BLOB NOT NULL,
			length INTEGER NOT NULL,
			base_id TEXT REFERENCES content_record(id),
			text_length INTEGER NOT NULL,
			checksum INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,

		// REVISIONS
		`CREATE TABLE IF NOT EXISTS revision (
			id TEXT PRIMARY KEY,
			article_id TEXT NOT NULL,
			language TEXT NOT NULL,
			version INTEGER NOT NULL CHECK (version >= 1),
			content_record_id TEXT NOT NULL UNIQUE REFERENCES content_record(id),
			enabled BOOLEAN NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP,
			created_by TEXT NOT NULL,
			updated_by TEXT,
			UNIQUE (article_id, language, version)
		)`,
	}
}

func getPostgresInitialSchema() []string {
	return []string{
		// CONTENT RECORDS
		`CREATE TABLE IF NOT EXISTS content_record (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK (kind IN ('full', 'diff')),
			payload BYTEA NOT NULL,
			length INTEGER NOT NULL,
			base_id TEXT REFERENCES content_record(id),
			text_length INTEGER NOT NULL,
			checksum BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,

		// REVISIONS
		`CREATE TABLE IF NOT EXISTS revision (
			id TEXT PRIMARY KEY,
			article_id TEXT NOT NULL,
			language TEXT NOT NULL,
			version INTEGER NOT NULL CHECK (version >= 1),
			content_record_id TEXT NOT NULL UNIQUE REFERENCES content_record(id),
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ,
			created_by TEXT NOT NULL,
			updated_by TEXT,
			UNIQUE (article_id, language, version)
		)`,
	}
}
