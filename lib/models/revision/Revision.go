package revision

import (
	"time"
)

type ContentKind string

const (
	ContentKindFull ContentKind = "full"
	ContentKindDiff ContentKind = "diff"
)

func (k ContentKind) Valid() bool {
	return k == ContentKindFull || k == ContentKindDiff
}

// Scope is an article/language pair. Each scope owns its own version sequence.
type Scope struct {
	ArticleID string `json:"articleId" validate:"required,max=128"`
	Language  string `json:"language" validate:"required,max=35"`
}

func (s Scope) Key() string {
	return s.ArticleID + ":" + s.Language
}

// ContentRecord is a stored payload: either the full text or a compressed
// delta against BaseID.
type ContentRecord struct {
	ID         string      `json:"id"`
	Kind       ContentKind `json:"kind"`
	Payload    []byte      `json:"-"`
	Length     int         `json:"length"`
	BaseID     *string     `json:"baseId,omitempty"`
	TextLength int         `json:"textLength"`
	Checksum   uint64      `json:"checksum,string"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// ContentDraft is a content record that has not been persisted yet.
type ContentDraft struct {
	Kind       ContentKind
	Payload    []byte
	BaseID     *string
	TextLength int
	Checksum   uint64
}

type Revision struct {
	ID              string     `json:"id"`
	Scope           Scope      `json:"scope"`
	Version         int        `json:"version"`
	ContentRecordID string     `json:"contentRecordId"`
	Enabled         bool       `json:"enabled"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
	CreatedBy       string     `json:"createdBy"`
	UpdatedBy       *string    `json:"updatedBy,omitempty"`
}

// ResolvedRevision is a revision joined with the content record it points to.
type ResolvedRevision struct {
	Revision Revision
	Content  ContentRecord
}

// RevisionText is a resolved revision whose text has been reconstructed.
type RevisionText struct {
	Revision Revision      `json:"revision"`
	Content  ContentRecord `json:"content"`
	Text     string        `json:"text"`
}
