package revision

import (
	"errors"
	"fmt"
	"time"

	"github.com/ether/articlestore/lib/content"
	"github.com/ether/articlestore/lib/db"
	"github.com/ether/articlestore/lib/exception"
	"github.com/ether/articlestore/lib/models/revision"
	"github.com/google/uuid"
)

// VersionStore owns the per scope version sequence.
type VersionStore struct {
	db db.RevisionMethods
}

func NewVersionStore(store db.RevisionMethods) *VersionStore {
	return &VersionStore{db: store}
}

func (v *VersionStore) Count(scope revision.Scope) (int, error) {
	count, err := v.db.CountRevisions(scope)
	if err != nil {
		return 0, fmt.Errorf("error counting revisions of %s: %w", scope.Key(), err)
	}
	return count, nil
}

// NextVersionNumber is only a proposal: a concurrent writer may take the same
// number, in which case Create reports db.ErrVersionConflict.
func (v *VersionStore) NextVersionNumber(scope revision.Scope) (int, error) {
	count, err := v.Count(scope)
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

// Create inserts the content record and an enabled revision pointing to it
// in one transaction.
func (v *VersionStore) Create(
	scope revision.Scope,
	draft revision.ContentDraft,
	version int,
	actor string,
) (*revision.Revision, *revision.ContentRecord, error) {
	if version < 1 {
		return nil, nil, exception.NewFailedToInsertError(fmt.Sprintf("invalid version %d", version), nil)
	}
	if !draft.Kind.Valid() {
		return nil, nil, exception.NewFailedToInsertError(fmt.Sprintf("invalid content kind %q", draft.Kind), nil)
	}

	now := time.Now().UTC()
	record := content.NewRecord(draft, now)
	rev := revision.Revision{
		ID:              uuid.NewString(),
		Scope:           scope,
		Version:         version,
		ContentRecordID: record.ID,
		Enabled:         true,
		CreatedAt:       now,
		CreatedBy:       actor,
	}

	err := v.db.SaveRevisionWithContent(revision.RevisionToDB(rev), revision.ContentRecordToDB(record))
	if errors.Is(err, db.ErrVersionConflict) {
		return nil, nil, err
	}
	if err != nil {
		return nil, nil, exception.NewFailedToInsertError("failed to insert revision", err)
	}
	return &rev, &record, nil
}

func (v *VersionStore) GetByVersion(scope revision.Scope, version int) (*revision.Revision, error) {
	stored, err := v.db.GetRevisionByVersion(scope, version)
	if errors.Is(err, db.ErrRevisionNotFound) {
		return nil, exception.NewRevisionNotFoundError(scope.Key(), version, err)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading revision %s@%d: %w", scope.Key(), version, err)
	}
	rev := revision.RevisionFromDB(*stored)
	return &rev, nil
}

func (v *VersionStore) GetWithContent(scope revision.Scope, version int) (*revision.ResolvedRevision, error) {
	stored, err := v.db.GetRevisionWithContent(scope, version)
	if errors.Is(err, db.ErrRevisionNotFound) {
		return nil, exception.NewRevisionNotFoundError(scope.Key(), version, err)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading revision %s@%d: %w", scope.Key(), version, err)
	}
	resolved := revision.ResolvedFromDB(*stored)
	return &resolved, nil
}

// SetEnabled returns the number of updated rows; zero means the revision does
// not exist. Setting the current value again still counts as an update.
func (v *VersionStore) SetEnabled(scope revision.Scope, version int, enabled bool, actor string) (int64, error) {
	affected, err := v.db.SetRevisionEnabled(scope, version, enabled, actor, time.Now().UTC())
	if err != nil {
		return 0, exception.NewFailedToUpdateError("failed to update revision", err)
	}
	return affected, nil
}

func (v *VersionStore) MaxEnabledVersions(scopes []revision.Scope) (map[revision.Scope]int, error) {
	maxVersions, err := v.db.GetMaxEnabledVersions(scopes)
	if err != nil {
		return nil, fmt.Errorf("error loading enabled versions: %w", err)
	}
	return maxVersions, nil
}

func (v *VersionStore) RevisionsSince(floors map[revision.Scope]int) ([]revision.ResolvedRevision, error) {
	rows, err := v.db.GetRevisionsSince(floors)
	if err != nil {
		return nil, fmt.Errorf("error loading revisions: %w", err)
	}

	resolved := make([]revision.ResolvedRevision, 0, len(*rows))
	for _, row := range *rows {
		resolved = append(resolved, revision.ResolvedFromDB(row))
	}
	return resolved, nil
}
