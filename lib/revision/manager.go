package revision

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ether/articlestore/lib/content"
	"github.com/ether/articlestore/lib/db"
	"github.com/ether/articlestore/lib/delta"
	"github.com/ether/articlestore/lib/exception"
	"github.com/ether/articlestore/lib/models/revision"
	"go.uber.org/zap"
)

const (
	DefaultKeyframeInterval  = 100
	DefaultMaxCreateAttempts = 5
)

type Options struct {
	// KeyframeInterval forces a full record on every version divisible by it.
	// Zero or less disables keyframes.
	KeyframeInterval  int
	MaxCreateAttempts int
	ActualPolicy      ActualPolicy
}

func DefaultOptions() Options {
	return Options{
		KeyframeInterval:  DefaultKeyframeInterval,
		MaxCreateAttempts: DefaultMaxCreateAttempts,
		ActualPolicy:      ActualPolicyIncludeRolledBack,
	}
}

// Manager runs the write and read flows over content records and revisions.
type Manager struct {
	versions      *VersionStore
	resolver      *Resolver
	contents      *content.Store
	reconstructor *content.Reconstructor
	options       Options
	metrics       *Metrics
	logger        *zap.SugaredLogger
}

func NewManager(store db.DataStore, options Options, metrics *Metrics, logger *zap.SugaredLogger) *Manager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	if options.MaxCreateAttempts < 1 {
		options.MaxCreateAttempts = DefaultMaxCreateAttempts
	}

	versions := NewVersionStore(store)
	contents := content.NewStore(store)
	return &Manager{
		versions:      versions,
		resolver:      NewResolver(versions, options.ActualPolicy),
		contents:      contents,
		reconstructor: content.NewReconstructor(contents, logger),
		options:       options,
		metrics:       metrics,
		logger:        logger,
	}
}

// CreateRevision appends text as the next version of scope. A lost race for
// the version number is retried from scratch, since the base of the delta
// changes with it.
func (m *Manager) CreateRevision(scope revision.Scope, text string, actor string) (*revision.ResolvedRevision, error) {
	if !utf8.ValidString(text) {
		return nil, exception.NewProcessingError("revision text is not valid UTF-8", nil)
	}

	var lastConflict error
	for attempt := 1; attempt <= m.options.MaxCreateAttempts; attempt++ {
		version, draft, err := m.prepareDraft(scope, text)
		if err != nil {
			return nil, err
		}

		rev, record, err := m.versions.Create(scope, draft, version, actor)
		if errors.Is(err, db.ErrVersionConflict) {
			lastConflict = err
			m.logger.Debugw("Version taken by concurrent writer, retrying",
				"scope", scope.Key(), "version", version, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		m.metrics.revisionsCreated.WithLabelValues(string(record.Kind)).Inc()
		if record.Kind == revision.ContentKindDiff {
			m.metrics.deltaBytes.Observe(float64(record.Length))
		}
		m.logger.Infow("Created revision",
			"scope", scope.Key(),
			"version", rev.Version,
			"kind", record.Kind,
			"payloadBytes", record.Length,
			"actor", actor,
		)
		return &revision.ResolvedRevision{Revision: *rev, Content: *record}, nil
	}

	return nil, exception.NewAlreadyExistsError(
		fmt.Sprintf("could not allocate a version for %s after %d attempts", scope.Key(), m.options.MaxCreateAttempts),
		lastConflict,
	)
}

func fullDraft(text string) revision.ContentDraft {
	return revision.ContentDraft{
		Kind:       revision.ContentKindFull,
		Payload:    []byte(text),
		TextLength: len(text),
		Checksum:   content.Checksum(text),
	}
}

func (m *Manager) isKeyframe(version int) bool {
	return version == 1 || (m.options.KeyframeInterval > 0 && version%m.options.KeyframeInterval == 0)
}

func (m *Manager) prepareDraft(scope revision.Scope, text string) (int, revision.ContentDraft, error) {
	version, err := m.versions.NextVersionNumber(scope)
	if err != nil {
		return 0, revision.ContentDraft{}, err
	}
	if m.isKeyframe(version) || text == "" {
		return version, fullDraft(text), nil
	}

	base, err := m.versions.GetWithContent(scope, version-1)
	if err != nil {
		return 0, revision.ContentDraft{}, err
	}
	baseText, err := m.textOf(*base)
	if err != nil {
		return 0, revision.ContentDraft{}, err
	}
	if baseText == "" {
		return version, fullDraft(text), nil
	}

	payload, err := delta.EncodeDelta([]byte(text), []byte(baseText))
	if err != nil {
		return 0, revision.ContentDraft{}, exception.NewProcessingError("failed to encode delta", err)
	}
	if len(payload) >= len(text) {
		return version, fullDraft(text), nil
	}

	baseID := base.Content.ID
	return version, revision.ContentDraft{
		Kind:       revision.ContentKindDiff,
		Payload:    payload,
		BaseID:     &baseID,
		TextLength: len(text),
		Checksum:   content.Checksum(text),
	}, nil
}

// textOf reconstructs a single revision. A diff chain starts at the last
// keyframe at the latest, so that window is fetched in one query; anything
// older is loaded record by record.
func (m *Manager) textOf(resolved revision.ResolvedRevision) (string, error) {
	if resolved.Content.Kind == revision.ContentKindFull {
		return m.reconstructor.Reconstruct(resolved.Content, nil)
	}

	var known map[string]revision.ContentRecord
	if m.options.KeyframeInterval > 0 {
		version := resolved.Revision.Version
		floor := version - version%m.options.KeyframeInterval
		if floor < 1 {
			floor = 1
		}
		window, err := m.versions.RevisionsSince(map[revision.Scope]int{resolved.Revision.Scope: floor})
		if err != nil {
			return "", err
		}
		known = knownRecords(window)
	}

	return m.materialize(resolved.Content, known, nil)
}

func (m *Manager) materialize(
	record revision.ContentRecord,
	known map[string]revision.ContentRecord,
	resolved map[string]string,
) (string, error) {
	start := time.Now()
	text, err := m.reconstructor.Materialize(record, known, resolved)
	m.metrics.materializeDuration.Observe(time.Since(start).Seconds())
	return text, err
}

func knownRecords(rows []revision.ResolvedRevision) map[string]revision.ContentRecord {
	known := make(map[string]revision.ContentRecord, len(rows))
	for _, row := range rows {
		known[row.Content.ID] = row.Content
	}
	return known
}

// withTexts materializes every row as one batch.
func (m *Manager) withTexts(rows []revision.ResolvedRevision) ([]revision.RevisionText, error) {
	records := make([]revision.ContentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Content)
	}

	start := time.Now()
	byID, err := m.reconstructor.MaterializeAll(records)
	m.metrics.materializeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	texts := make([]revision.RevisionText, 0, len(rows))
	for _, row := range rows {
		texts = append(texts, revision.RevisionText{Revision: row.Revision, Content: row.Content, Text: byID[row.Content.ID]})
	}
	return texts, nil
}

// GetRevision returns the text of an enabled revision. Disabled revisions are
// reported as not found.
func (m *Manager) GetRevision(scope revision.Scope, version int) (*revision.RevisionText, error) {
	resolved, err := m.resolver.ResolveOne(scope, version)
	if err != nil {
		return nil, err
	}
	if !resolved.Revision.Enabled {
		return nil, exception.NewRevisionNotFoundError(scope.Key(), version, nil)
	}

	text, err := m.textOf(*resolved)
	if err != nil {
		return nil, err
	}
	return &revision.RevisionText{Revision: resolved.Revision, Content: resolved.Content, Text: text}, nil
}

func (m *Manager) ListActualRevisions(scopes []revision.Scope) ([]revision.RevisionText, error) {
	actual, err := m.resolver.ResolveActual(scopes)
	if err != nil {
		return nil, err
	}
	return m.withTexts(actual)
}

// GetHistory returns every revision of scope from floor on, disabled ones
// included, highest version first.
func (m *Manager) GetHistory(scope revision.Scope, floor int) ([]revision.RevisionText, error) {
	rows, err := m.resolver.History(scope, floor)
	if err != nil {
		return nil, err
	}
	return m.withTexts(rows)
}

func (m *Manager) SetRevisionEnabled(scope revision.Scope, version int, enabled bool, actor string) (*revision.Revision, error) {
	affected, err := m.versions.SetEnabled(scope, version, enabled, actor)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, exception.NewRevisionNotFoundError(scope.Key(), version, nil)
	}

	m.logger.Infow("Changed revision state",
		"scope", scope.Key(), "version", version, "enabled", enabled, "actor", actor)
	return m.versions.GetByVersion(scope, version)
}

// MaterializeRevision rewrites the content record of a diff revision as full
// text. Later diffs keep pointing at the same record id and its text does not
// change, so they stay valid.
func (m *Manager) MaterializeRevision(scope revision.Scope, version int, actor string) (*revision.ContentRecord, error) {
	resolved, err := m.resolver.ResolveOne(scope, version)
	if err != nil {
		return nil, err
	}
	if resolved.Content.Kind == revision.ContentKindFull {
		return &resolved.Content, nil
	}

	text, err := m.textOf(*resolved)
	if err != nil {
		return nil, err
	}

	record, err := m.contents.ReplacePayload(resolved.Content.ID, fullDraft(text))
	if err != nil {
		return nil, err
	}

	m.logger.Infow("Materialized revision",
		"scope", scope.Key(), "version", version, "contentRecordId", record.ID, "actor", actor)
	return record, nil
}
