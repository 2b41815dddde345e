package db

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ether/articlestore/lib/models/db"
	"github.com/ether/articlestore/lib/models/revision"
)

type MemoryDataStore struct {
	mu            sync.RWMutex
	contentStore  map[string]db.ContentRecordDB
	revisionStore map[revision.Scope]map[int]db.RevisionDB
}

func NewMemoryDataStore() *MemoryDataStore {
	return &MemoryDataStore{
		contentStore:  make(map[string]db.ContentRecordDB),
		revisionStore: make(map[revision.Scope]map[int]db.RevisionDB),
	}
}

func copyRecord(record db.ContentRecordDB) db.ContentRecordDB {
	record.ID = strings.Clone(record.ID)
	record.Payload = append([]byte(nil), record.Payload...)
	record.Length = len(record.Payload)
	if record.BaseID != nil {
		baseID := *record.BaseID
		record.BaseID = &baseID
	}
	return record
}

// cloneRevision detaches the strings of rev from caller owned memory.
func cloneRevision(rev db.RevisionDB) db.RevisionDB {
	rev.ID = strings.Clone(rev.ID)
	rev.ArticleID = strings.Clone(rev.ArticleID)
	rev.Language = strings.Clone(rev.Language)
	rev.ContentRecordID = strings.Clone(rev.ContentRecordID)
	rev.CreatedBy = strings.Clone(rev.CreatedBy)
	if rev.UpdatedBy != nil {
		updatedBy := strings.Clone(*rev.UpdatedBy)
		rev.UpdatedBy = &updatedBy
	}
	return rev
}

// ============== CONTENT RECORD METHODS ==============

func (m *MemoryDataStore) SaveContentRecord(record db.ContentRecordDB) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.contentStore[record.ID]; ok {
		return fmt.Errorf("content record %s already exists", record.ID)
	}
	m.contentStore[record.ID] = copyRecord(record)
	return nil
}

func (m *MemoryDataStore) GetContentRecord(id string) (*db.ContentRecordDB, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.contentStore[id]
	if !ok {
		return nil, ErrContentRecordNotFound
	}
	record = copyRecord(record)
	return &record, nil
}

func (m *MemoryDataStore) GetContentRecords(ids []string) (*[]db.ContentRecordDB, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]db.ContentRecordDB, 0, len(ids))
	for _, id := range ids {
		if record, ok := m.contentStore[id]; ok {
			records = append(records, copyRecord(record))
		}
	}
	return &records, nil
}

func (m *MemoryDataStore) ReplaceContentRecordPayload(record db.ContentRecordDB) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.contentStore[record.ID]
	if !ok {
		return ErrContentRecordNotFound
	}
	replaced := copyRecord(record)
	replaced.CreatedAt = existing.CreatedAt
	m.contentStore[record.ID] = replaced
	return nil
}

// ============== REVISION METHODS ==============

func (m *MemoryDataStore) SaveRevisionWithContent(rev db.RevisionDB, record db.ContentRecordDB) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rev = cloneRevision(rev)
	scope := revision.Scope{ArticleID: rev.ArticleID, Language: rev.Language}
	if _, ok := m.revisionStore[scope][rev.Version]; ok {
		return fmt.Errorf("%w: version %d", ErrVersionConflict, rev.Version)
	}
	if _, ok := m.contentStore[record.ID]; ok {
		return fmt.Errorf("content record %s already exists", record.ID)
	}

	m.contentStore[record.ID] = copyRecord(record)
	if m.revisionStore[scope] == nil {
		m.revisionStore[scope] = make(map[int]db.RevisionDB)
	}
	rev.ContentRecordID = strings.Clone(record.ID)
	m.revisionStore[scope][rev.Version] = rev
	return nil
}

func (m *MemoryDataStore) GetRevisionByVersion(scope revision.Scope, version int) (*db.RevisionDB, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rev, ok := m.revisionStore[scope][version]
	if !ok {
		return nil, ErrRevisionNotFound
	}
	return &rev, nil
}

func (m *MemoryDataStore) GetRevisionWithContent(scope revision.Scope, version int) (*db.RevisionWithContentDB, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rev, ok := m.revisionStore[scope][version]
	if !ok {
		return nil, ErrRevisionNotFound
	}
	return &db.RevisionWithContentDB{
		Revision: rev,
		Content:  copyRecord(m.contentStore[rev.ContentRecordID]),
	}, nil
}

func (m *MemoryDataStore) CountRevisions(scope revision.Scope) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.revisionStore[scope]), nil
}

func (m *MemoryDataStore) SetRevisionEnabled(
	scope revision.Scope,
	version int,
	enabled bool,
	actor string,
	updatedAt time.Time,
) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rev, ok := m.revisionStore[scope][version]
	if !ok {
		return 0, nil
	}
	updatedBy := strings.Clone(actor)
	rev.Enabled = enabled
	rev.UpdatedAt = &updatedAt
	rev.UpdatedBy = &updatedBy
	m.revisionStore[scope][version] = rev
	return 1, nil
}

func (m *MemoryDataStore) GetMaxEnabledVersions(scopes []revision.Scope) (map[revision.Scope]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	maxVersions := make(map[revision.Scope]int)
	for _, scope := range scopes {
		for version, rev := range m.revisionStore[scope] {
			if rev.Enabled && version > maxVersions[scope] {
				maxVersions[scope] = version
			}
		}
	}
	return maxVersions, nil
}

func (m *MemoryDataStore) GetRevisionsSince(floors map[revision.Scope]int) (*[]db.RevisionWithContentDB, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([]db.RevisionWithContentDB, 0)
	for scope, floor := range floors {
		for version, rev := range m.revisionStore[scope] {
			if version < floor {
				continue
			}
			rows = append(rows, db.RevisionWithContentDB{
				Revision: rev,
				Content:  copyRecord(m.contentStore[rev.ContentRecordID]),
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].Revision, rows[j].Revision
		if a.ArticleID != b.ArticleID {
			return a.ArticleID < b.ArticleID
		}
		if a.Language != b.Language {
			return a.Language < b.Language
		}
		return a.Version > b.Version
	})
	return &rows, nil
}

// ============== LIFECYCLE ==============

func (m *MemoryDataStore) Ping() error {
	return nil
}

func (m *MemoryDataStore) Close() error {
	return nil
}

var _ DataStore = (*MemoryDataStore)(nil)
