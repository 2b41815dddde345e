package db

import "time"

type RevisionDB struct {
	ID              string
	ArticleID       string
	Language        string
	Version         int
	ContentRecordID string
	Enabled         bool
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	CreatedBy       string
	UpdatedBy       *string
}

// RevisionWithContentDB is a revision row joined with its content record.
type RevisionWithContentDB struct {
	Revision RevisionDB
	Content  ContentRecordDB
}
