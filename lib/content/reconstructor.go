package content

import (
	"fmt"
	"unicode/utf8"

	"github.com/ether/articlestore/lib/delta"
	"github.com/ether/articlestore/lib/exception"
	"github.com/ether/articlestore/lib/models/revision"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
)

// NotMaterializedPlaceholder is returned by Reconstruct for a diff record
// whose text has not been resolved yet.
const NotMaterializedPlaceholder = "[content not materialized]"

// Checksum is the hash stored alongside every content record.
func Checksum(text string) uint64 {
	return xxh3.HashString(text)
}

type recordLoader interface {
	Get(id string) (*revision.ContentRecord, error)
	GetMany(ids []string) ([]revision.ContentRecord, error)
}

// Reconstructor turns content records back into text.
type Reconstructor struct {
	records recordLoader
	logger  *zap.SugaredLogger
}

func NewReconstructor(records *Store, logger *zap.SugaredLogger) *Reconstructor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Reconstructor{records: records, logger: logger}
}

// Reconstruct decodes a full record directly. A diff record is only looked
// up in resolved; when it is missing the placeholder is returned.
func (r *Reconstructor) Reconstruct(record revision.ContentRecord, resolved map[string]string) (string, error) {
	switch record.Kind {
	case revision.ContentKindFull:
		return decodeFull(record)
	case revision.ContentKindDiff:
		if text, ok := resolved[record.ID]; ok {
			return text, nil
		}
		return NotMaterializedPlaceholder, nil
	default:
		return "", exception.NewProcessingError(fmt.Sprintf("content record %s has unknown kind %q", record.ID, record.Kind), nil)
	}
}

// Materialize returns the text of record, walking back along BaseID until it
// reaches a full record or a text already present in resolved, then applying
// the patches forward. Ancestors are taken from known when present and loaded
// from the store otherwise. Every text produced on the way is added to
// resolved, so a caller sharing one map across a batch decodes each record at
// most once.
func (r *Reconstructor) Materialize(
	record revision.ContentRecord,
	known map[string]revision.ContentRecord,
	resolved map[string]string,
) (string, error) {
	if resolved == nil {
		resolved = make(map[string]string)
	}
	if text, ok := resolved[record.ID]; ok {
		return text, nil
	}

	var chain []revision.ContentRecord
	visited := make(map[string]struct{})
	current := record
	var baseText string

	for {
		if _, seen := visited[current.ID]; seen {
			return "", exception.NewProcessingError(fmt.Sprintf("content record %s has a cyclic base chain", record.ID), nil)
		}
		visited[current.ID] = struct{}{}

		if current.Kind == revision.ContentKindFull {
			text, err := decodeFull(current)
			if err != nil {
				return "", err
			}
			if err := verify(current, text); err != nil {
				return "", err
			}
			resolved[current.ID] = text
			baseText = text
			break
		}
		if current.Kind != revision.ContentKindDiff {
			return "", exception.NewProcessingError(fmt.Sprintf("content record %s has unknown kind %q", current.ID, current.Kind), nil)
		}

		chain = append(chain, current)
		if current.BaseID == nil {
			return "", exception.NewProcessingError(fmt.Sprintf("diff record %s has no base", current.ID), nil)
		}

		baseID := *current.BaseID
		if text, ok := resolved[baseID]; ok {
			baseText = text
			break
		}

		next, ok := known[baseID]
		if !ok {
			loaded, err := r.records.Get(baseID)
			if err != nil {
				return "", err
			}
			next = *loaded
		}
		current = next
	}

	for i := len(chain) - 1; i >= 0; i-- {
		link := chain[i]
		text, err := delta.DecodePatch(link.Payload, []byte(baseText), link.TextLength)
		if err != nil {
			return "", exception.NewProcessingError(fmt.Sprintf("failed to apply diff record %s", link.ID), err)
		}
		if err := verify(link, text); err != nil {
			return "", err
		}
		resolved[link.ID] = text
		baseText = text
	}

	if len(chain) > 0 {
		r.logger.Debugw("Materialized content chain", "contentRecordId", record.ID, "depth", len(chain))
	}
	return baseText, nil
}

// MaterializeAll returns the text of every record in the batch, keyed by
// record id. Records of the batch serve as each other's bases. Bases outside
// the batch are loaded one chain level per query before any patch is applied.
func (r *Reconstructor) MaterializeAll(records []revision.ContentRecord) (map[string]string, error) {
	known := make(map[string]revision.ContentRecord, len(records))
	for _, record := range records {
		known[record.ID] = record
	}
	if err := r.prefetchBases(known); err != nil {
		return nil, err
	}

	resolved := make(map[string]string, len(records))
	texts := make(map[string]string, len(records))
	for _, record := range records {
		text, err := r.Materialize(record, known, resolved)
		if err != nil {
			return nil, err
		}
		texts[record.ID] = text
	}
	return texts, nil
}

// prefetchBases adds the missing ancestors of the diff records in known.
// Ids the store does not return are left for Materialize to report.
func (r *Reconstructor) prefetchBases(known map[string]revision.ContentRecord) error {
	requested := make(map[string]struct{})
	for {
		var missing []string
		for _, record := range known {
			if record.Kind != revision.ContentKindDiff || record.BaseID == nil {
				continue
			}
			baseID := *record.BaseID
			if _, ok := known[baseID]; ok {
				continue
			}
			if _, ok := requested[baseID]; ok {
				continue
			}
			requested[baseID] = struct{}{}
			missing = append(missing, baseID)
		}
		if len(missing) == 0 {
			return nil
		}

		loaded, err := r.records.GetMany(missing)
		if err != nil {
			return err
		}
		for _, record := range loaded {
			known[record.ID] = record
		}
	}
}

func decodeFull(record revision.ContentRecord) (string, error) {
	if !utf8.Valid(record.Payload) {
		return "", exception.NewProcessingError(fmt.Sprintf("content record %s is not valid UTF-8", record.ID), nil)
	}
	return string(record.Payload), nil
}

func verify(record revision.ContentRecord, text string) error {
	if len(text) != record.TextLength {
		return exception.NewProcessingError(
			fmt.Sprintf("content record %s: text length %d, expected %d", record.ID, len(text), record.TextLength), nil)
	}
	if Checksum(text) != record.Checksum {
		return exception.NewProcessingError(fmt.Sprintf("content record %s: checksum mismatch", record.ID), nil)
	}
	return nil
}
