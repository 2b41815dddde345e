package db

import (
	"time"

	"github.com/ether/articlestore/lib/models/db"
	"github.com/ether/articlestore/lib/models/revision"
)

type ContentRecordMethods interface {
	SaveContentRecord(record db.ContentRecordDB) error
	GetContentRecord(id string) (*db.ContentRecordDB, error)
	// GetContentRecords skips unknown ids; the order of the result is unspecified.
	GetContentRecords(ids []string) (*[]db.ContentRecordDB, error)
	ReplaceContentRecordPayload(record db.ContentRecordDB) error
}

type RevisionMethods interface {
	// SaveRevisionWithContent inserts the content record and the revision
	// pointing to it atomically. ErrVersionConflict is returned when the
	// scope already holds the revision's version.
	SaveRevisionWithContent(revision db.RevisionDB, record db.ContentRecordDB) error
	GetRevisionByVersion(scope revision.Scope, version int) (*db.RevisionDB, error)
	GetRevisionWithContent(scope revision.Scope, version int) (*db.RevisionWithContentDB, error)
	CountRevisions(scope revision.Scope) (int, error)
	SetRevisionEnabled(scope revision.Scope, version int, enabled bool, actor string, updatedAt time.Time) (int64, error)
	// GetMaxEnabledVersions omits scopes without any enabled revision.
	GetMaxEnabledVersions(scopes []revision.Scope) (map[revision.Scope]int, error)
	// GetRevisionsSince returns, per scope, every revision with a version at
	// or above the floor, ordered by scope and then version descending.
	GetRevisionsSince(floors map[revision.Scope]int) (*[]db.RevisionWithContentDB, error)
}

type DataStore interface {
	ContentRecordMethods
	RevisionMethods
	Ping() error
	Close() error
}
