package content

import (
	"errors"
	"fmt"
	"time"

	"github.com/ether/articlestore/lib/db"
	"github.com/ether/articlestore/lib/exception"
	"github.com/ether/articlestore/lib/models/revision"
	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// Store persists content records. Records are immutable once written;
// ReplacePayload is the only way to change one.
type Store struct {
	db db.ContentRecordMethods
}

func NewStore(store db.ContentRecordMethods) *Store {
	return &Store{db: store}
}

// describe fills in what a full payload already determines: its text length
// and checksum. Full records have no base.
func describe(draft revision.ContentDraft) revision.ContentDraft {
	if draft.Kind == revision.ContentKindFull {
		draft.BaseID = nil
		draft.TextLength = len(draft.Payload)
		draft.Checksum = xxh3.Hash(draft.Payload)
	}
	return draft
}

// NewRecord builds an unsaved record with a fresh id from draft.
func NewRecord(draft revision.ContentDraft, createdAt time.Time) revision.ContentRecord {
	draft = describe(draft)
	return revision.ContentRecord{
		ID:         uuid.NewString(),
		Kind:       draft.Kind,
		Payload:    draft.Payload,
		Length:     len(draft.Payload),
		BaseID:     draft.BaseID,
		TextLength: draft.TextLength,
		Checksum:   draft.Checksum,
		CreatedAt:  createdAt,
	}
}

func (s *Store) Insert(draft revision.ContentDraft) (*revision.ContentRecord, error) {
	if !draft.Kind.Valid() {
		return nil, exception.NewFailedToInsertError(fmt.Sprintf("invalid content kind %q", draft.Kind), nil)
	}

	record := NewRecord(draft, time.Now().UTC())

	if err := s.db.SaveContentRecord(revision.ContentRecordToDB(record)); err != nil {
		return nil, exception.NewFailedToInsertError("failed to insert content record", err)
	}
	return &record, nil
}

func (s *Store) Get(id string) (*revision.ContentRecord, error) {
	stored, err := s.db.GetContentRecord(id)
	if errors.Is(err, db.ErrContentRecordNotFound) {
		return nil, exception.NewContentRecordNotFoundError(id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading content record %s: %w", id, err)
	}

	record := revision.ContentRecordFromDB(*stored)
	return &record, nil
}

// GetMany loads a batch of records. Unknown ids are skipped and the order of
// the result is unspecified.
func (s *Store) GetMany(ids []string) ([]revision.ContentRecord, error) {
	stored, err := s.db.GetContentRecords(ids)
	if err != nil {
		return nil, fmt.Errorf("error loading content records: %w", err)
	}

	records := make([]revision.ContentRecord, 0, len(*stored))
	for _, record := range *stored {
		records = append(records, revision.ContentRecordFromDB(record))
	}
	return records, nil
}

// ReplacePayload overwrites the payload, kind, base and text metadata of an
// existing record. Identity and creation time are kept.
func (s *Store) ReplacePayload(id string, draft revision.ContentDraft) (*revision.ContentRecord, error) {
	if !draft.Kind.Valid() {
		return nil, exception.NewFailedToUpdateError(fmt.Sprintf("invalid content kind %q", draft.Kind), nil)
	}

	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	draft = describe(draft)
	existing.Kind = draft.Kind
	existing.Payload = draft.Payload
	existing.Length = len(draft.Payload)
	existing.BaseID = draft.BaseID
	existing.TextLength = draft.TextLength
	existing.Checksum = draft.Checksum

	err = s.db.ReplaceContentRecordPayload(revision.ContentRecordToDB(*existing))
	if errors.Is(err, db.ErrContentRecordNotFound) {
		return nil, exception.NewContentRecordNotFoundError(id, err)
	}
	if err != nil {
		return nil, exception.NewFailedToUpdateError("failed to replace content record payload", err)
	}
	return existing, nil
}
