package db

import (
	"database/sql"

	"github.com/ether/articlestore/lib/models/db"
)

type Reader interface {
	Scan(dest ...any) error
}

var contentRecordColumns = []string{
	"id", "kind", "payload", "length", "base_id", "text_length", "checksum", "created_at",
}

var revisionColumns = []string{
	"id", "article_id", "language", "version", "content_record_id", "enabled",
	"created_at", "updated_at", "created_by", "updated_by",
}

func prefixed(prefix string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = prefix + "." + c
	}
	return out
}

type contentRecordScan struct {
	record db.ContentRecordDB
	baseID sql.NullString
}

func (c *contentRecordScan) targets() []any {
	return []any{
		&c.record.ID, &c.record.Kind, &c.record.Payload, &c.record.Length,
		&c.baseID, &c.record.TextLength, &c.record.Checksum, &c.record.CreatedAt,
	}
}

func (c *contentRecordScan) result() db.ContentRecordDB {
	if c.baseID.Valid {
		baseID := c.baseID.String
		c.record.BaseID = &baseID
	}
	return c.record
}

type revisionScan struct {
	revision  db.RevisionDB
	updatedAt sql.NullTime
	updatedBy sql.NullString
}

func (r *revisionScan) targets() []any {
	return []any{
		&r.revision.ID, &r.revision.ArticleID, &r.revision.Language, &r.revision.Version,
		&r.revision.ContentRecordID, &r.revision.Enabled, &r.revision.CreatedAt,
		&r.updatedAt, &r.revision.CreatedBy, &r.updatedBy,
	}
}

func (r *revisionScan) result() db.RevisionDB {
	if r.updatedAt.Valid {
		updatedAt := r.updatedAt.Time
		r.revision.UpdatedAt = &updatedAt
	}
	if r.updatedBy.Valid {
		updatedBy := r.updatedBy.String
		r.revision.UpdatedBy = &updatedBy
	}
	return r.revision
}

func ReadToContentRecordDB(reader Reader) (*db.ContentRecordDB, error) {
	var scan contentRecordScan
	if err := reader.Scan(scan.targets()...); err != nil {
		return nil, err
	}
	record := scan.result()
	return &record, nil
}

func ReadToRevisionDB(reader Reader) (*db.RevisionDB, error) {
	var scan revisionScan
	if err := reader.Scan(scan.targets()...); err != nil {
		return nil, err
	}
	revision := scan.result()
	return &revision, nil
}

// ReadToRevisionWithContentDB expects the revision columns followed by the
// content record columns.
func ReadToRevisionWithContentDB(reader Reader) (*db.RevisionWithContentDB, error) {
	var revScan revisionScan
	var contentScan contentRecordScan
	targets := append(revScan.targets(), contentScan.targets()...)
	if err := reader.Scan(targets...); err != nil {
		return nil, err
	}
	return &db.RevisionWithContentDB{
		Revision: revScan.result(),
		Content:  contentScan.result(),
	}, nil
}
