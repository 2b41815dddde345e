package migrations

import (
	"database/sql"
)

// migration002EnabledIndex speeds up the max-enabled-version lookup that
// every actual-revision read starts with.
func migration002EnabledIndex() Migration {
	return Migration{
		Version:     2,
		Description: "Index revisions by scope and enabled flag",
		Up: func(db *sql.DB, dialect Dialect) error {
			query := `CREATE INDEX IF NOT EXISTS idx_revision_scope_enabled
				ON revision (article_id, language, enabled, version)`

			if _, err := db.Exec(query); err != nil {
				return err
			}
			return nil
		},
	}
}
