package revision

import (
	"github.com/ether/articlestore/lib/models/db"
)

func ContentRecordFromDB(record db.ContentRecordDB) ContentRecord {
	return ContentRecord{
		ID:         record.ID,
		Kind:       ContentKind(record.Kind),
		Payload:    record.Payload,
		Length:     record.Length,
		BaseID:     record.BaseID,
		TextLength: record.TextLength,
		Checksum:   uint64(record.Checksum),
		CreatedAt:  record.CreatedAt,
	}
}

func ContentRecordToDB(record ContentRecord) db.ContentRecordDB {
	return db.ContentRecordDB{
		ID:         record.ID,
		Kind:       string(record.Kind),
		Payload:    record.Payload,
		Length:     len(record.Payload),
		BaseID:     record.BaseID,
		TextLength: record.TextLength,
		Checksum:   int64(record.Checksum),
		CreatedAt:  record.CreatedAt,
	}
}

func RevisionFromDB(revision db.RevisionDB) Revision {
	return Revision{
		ID: revision.ID,
		Scope: Scope{
			ArticleID: revision.ArticleID,
			Language:  revision.Language,
		},
		Version:         revision.Version,
		ContentRecordID: revision.ContentRecordID,
		Enabled:         revision.Enabled,
		CreatedAt:       revision.CreatedAt,
		UpdatedAt:       revision.UpdatedAt,
		CreatedBy:       revision.CreatedBy,
		UpdatedBy:       revision.UpdatedBy,
	}
}

func RevisionToDB(revision Revision) db.RevisionDB {
	return db.RevisionDB{
		ID:              revision.ID,
		ArticleID:       revision.Scope.ArticleID,
		Language:        revision.Scope.Language,
		Version:         revision.Version,
		ContentRecordID: revision.ContentRecordID,
		Enabled:         revision.Enabled,
		CreatedAt:       revision.CreatedAt,
		UpdatedAt:       revision.UpdatedAt,
		CreatedBy:       revision.CreatedBy,
		UpdatedBy:       revision.UpdatedBy,
	}
}

func ResolvedFromDB(row db.RevisionWithContentDB) ResolvedRevision {
	return ResolvedRevision{
		Revision: RevisionFromDB(row.Revision),
		Content:  ContentRecordFromDB(row.Content),
	}
}
