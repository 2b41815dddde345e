package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ether/articlestore/lib/db/migrations"
	"github.com/ether/articlestore/lib/models/db"
	"github.com/ether/articlestore/lib/models/revision"
)

// sqlStore holds the queries shared by the SQLite and Postgres stores. The
// dialects differ only in placeholder format and in how a unique constraint
// violation is reported by the driver.
type sqlStore struct {
	sqlDB             *sql.DB
	builder           sq.StatementBuilderType
	isUniqueViolation func(err error) bool
	migrations        *migrations.MigrationManager
}

func scopeCondition(prefix string, scope revision.Scope) sq.Eq {
	return sq.Eq{
		prefix + "article_id": scope.ArticleID,
		prefix + "language":   scope.Language,
	}
}

// ============== CONTENT RECORD METHODS ==============

// payloadOf keeps an empty payload from being bound as NULL.
func payloadOf(record db.ContentRecordDB) []byte {
	if record.Payload == nil {
		return []byte{}
	}
	return record.Payload
}

func (d sqlStore) insertContentRecord(runner sq.BaseRunner, record db.ContentRecordDB) error {
	resultedSQL, args, err := d.builder.
		Insert("content_record").
		Columns(contentRecordColumns...).
		Values(record.ID, record.Kind, payloadOf(record), len(record.Payload), record.BaseID,
			record.TextLength, record.Checksum, record.CreatedAt).
		ToSql()

	if err != nil {
		return err
	}

	_, err = runner.Exec(resultedSQL, args...)
	return err
}

func (d sqlStore) SaveContentRecord(record db.ContentRecordDB) error {
	return d.insertContentRecord(d.sqlDB, record)
}

func (d sqlStore) GetContentRecord(id string) (*db.ContentRecordDB, error) {
	resultedSQL, args, err := d.builder.
		Select(contentRecordColumns...).
		From("content_record").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, err
	}

	record, err := ReadToContentRecordDB(d.sqlDB.QueryRow(resultedSQL, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContentRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning content record: %w", err)
	}
	return record, nil
}

func (d sqlStore) GetContentRecords(ids []string) (*[]db.ContentRecordDB, error) {
	if len(ids) == 0 {
		return &[]db.ContentRecordDB{}, nil
	}

	resultedSQL, args, err := d.builder.
		Select(contentRecordColumns...).
		From("content_record").
		Where(sq.Eq{"id": ids}).
		ToSql()

	if err != nil {
		return nil, err
	}

	query, err := d.sqlDB.Query(resultedSQL, args...)
	if err != nil {
		return nil, err
	}
	defer query.Close()

	records := make([]db.ContentRecordDB, 0, len(ids))
	for query.Next() {
		record, err := ReadToContentRecordDB(query)
		if err != nil {
			return nil, fmt.Errorf("error scanning content record: %w", err)
		}
		records = append(records, *record)
	}

	return &records, query.Err()
}

func (d sqlStore) ReplaceContentRecordPayload(record db.ContentRecordDB) error {
	resultedSQL, args, err := d.builder.
		Update("content_record").
		Set("kind", record.Kind).
		Set("payload", payloadOf(record)).
		Set("length", len(record.Payload)).
		Set("base_id", record.BaseID).
		Set("text_length", record.TextLength).
		Set("checksum", record.Checksum).
		Where(sq.Eq{"id": record.ID}).
		ToSql()

	if err != nil {
		return err
	}

	result, err := d.sqlDB.Exec(resultedSQL, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrContentRecordNotFound
	}
	return nil
}

// ============== REVISION METHODS ==============

func (d sqlStore) SaveRevisionWithContent(rev db.RevisionDB, record db.ContentRecordDB) error {
	tx, err := d.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := d.insertContentRecord(tx, record); err != nil {
		return fmt.Errorf("error inserting content record: %w", err)
	}

	resultedSQL, args, err := d.builder.
		Insert("revision").
		Columns(revisionColumns...).
		Values(rev.ID, rev.ArticleID, rev.Language, rev.Version, record.ID, rev.Enabled,
			rev.CreatedAt, rev.UpdatedAt, rev.CreatedBy, rev.UpdatedBy).
		ToSql()

	if err != nil {
		return err
	}

	if _, err := tx.Exec(resultedSQL, args...); err != nil {
		if d.isUniqueViolation(err) {
			return fmt.Errorf("%w: version %d", ErrVersionConflict, rev.Version)
		}
		return fmt.Errorf("error inserting revision: %w", err)
	}

	return tx.Commit()
}

func (d sqlStore) GetRevisionByVersion(scope revision.Scope, version int) (*db.RevisionDB, error) {
	resultedSQL, args, err := d.builder.
		Select(revisionColumns...).
		From("revision").
		Where(scopeCondition("", scope)).
		Where(sq.Eq{"version": version}).
		ToSql()

	if err != nil {
		return nil, err
	}

	rev, err := ReadToRevisionDB(d.sqlDB.QueryRow(resultedSQL, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRevisionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning revision: %w", err)
	}
	return rev, nil
}

func (d sqlStore) joinedSelect() sq.SelectBuilder {
	columns := append(prefixed("r", revisionColumns), prefixed("c", contentRecordColumns)...)
	return d.builder.
		Select(columns...).
		From("revision r").
		Join("content_record c ON c.id = r.content_record_id")
}

func (d sqlStore) GetRevisionWithContent(scope revision.Scope, version int) (*db.RevisionWithContentDB, error) {
	resultedSQL, args, err := d.joinedSelect().
		Where(scopeCondition("r.", scope)).
		Where(sq.Eq{"r.version": version}).
		ToSql()

	if err != nil {
		return nil, err
	}

	row, err := ReadToRevisionWithContentDB(d.sqlDB.QueryRow(resultedSQL, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRevisionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning revision: %w", err)
	}
	return row, nil
}

func (d sqlStore) CountRevisions(scope revision.Scope) (int, error) {
	resultedSQL, args, err := d.builder.
		Select("COUNT(*)").
		From("revision").
		Where(scopeCondition("", scope)).
		ToSql()

	if err != nil {
		return 0, err
	}

	var count int
	if err := d.sqlDB.QueryRow(resultedSQL, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (d sqlStore) SetRevisionEnabled(
	scope revision.Scope,
	version int,
	enabled bool,
	actor string,
	updatedAt time.Time,
) (int64, error) {
	resultedSQL, args, err := d.builder.
		Update("revision").
		Set("enabled", enabled).
		Set("updated_at", updatedAt).
		Set("updated_by", actor).
		Where(scopeCondition("", scope)).
		Where(sq.Eq{"version": version}).
		ToSql()

	if err != nil {
		return 0, err
	}

	result, err := d.sqlDB.Exec(resultedSQL, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (d sqlStore) GetMaxEnabledVersions(scopes []revision.Scope) (map[revision.Scope]int, error) {
	maxVersions := make(map[revision.Scope]int)
	if len(scopes) == 0 {
		return maxVersions, nil
	}

	anyScope := sq.Or{}
	for _, scope := range scopes {
		anyScope = append(anyScope, scopeCondition("", scope))
	}

	resultedSQL, args, err := d.builder.
		Select("article_id", "language", "MAX(version)").
		From("revision").
		Where(sq.Eq{"enabled": true}).
		Where(anyScope).
		GroupBy("article_id", "language").
		ToSql()

	if err != nil {
		return nil, err
	}

	query, err := d.sqlDB.Query(resultedSQL, args...)
	if err != nil {
		return nil, err
	}
	defer query.Close()

	for query.Next() {
		var scope revision.Scope
		var maxVersion int
		if err := query.Scan(&scope.ArticleID, &scope.Language, &maxVersion); err != nil {
			return nil, err
		}
		maxVersions[scope] = maxVersion
	}

	return maxVersions, query.Err()
}

func (d sqlStore) GetRevisionsSince(floors map[revision.Scope]int) (*[]db.RevisionWithContentDB, error) {
	if len(floors) == 0 {
		return &[]db.RevisionWithContentDB{}, nil
	}

	anyScope := sq.Or{}
	for scope, floor := range floors {
		anyScope = append(anyScope, sq.And{
			scopeCondition("r.", scope),
			sq.GtOrEq{"r.version": floor},
		})
	}

	resultedSQL, args, err := d.joinedSelect().
		Where(anyScope).
		OrderBy("r.article_id ASC", "r.language ASC", "r.version DESC").
		ToSql()

	if err != nil {
		return nil, err
	}

	query, err := d.sqlDB.Query(resultedSQL, args...)
	if err != nil {
		return nil, err
	}
	defer query.Close()

	var rows []db.RevisionWithContentDB
	for query.Next() {
		row, err := ReadToRevisionWithContentDB(query)
		if err != nil {
			return nil, fmt.Errorf("error scanning revision: %w", err)
		}
		rows = append(rows, *row)
	}

	return &rows, query.Err()
}

// ============== LIFECYCLE ==============

// SchemaVersion reports the highest migration recorded in the database.
func (d sqlStore) SchemaVersion() (int, error) {
	return d.migrations.GetCurrentVersion()
}

func (d sqlStore) Ping() error {
	return d.sqlDB.Ping()
}

func (d sqlStore) Close() error {
	return d.sqlDB.Close()
}
