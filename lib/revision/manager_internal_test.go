package revision

import (
	"fmt"
	"testing"

	"github.com/ether/articlestore/lib/content"
	"github.com/ether/articlestore/lib/db"
	"github.com/ether/articlestore/lib/exception"
	modeldb "github.com/ether/articlestore/lib/models/db"
	"github.com/ether/articlestore/lib/models/revision"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// racingStore loses the version race a fixed number of times before saving.
type racingStore struct {
	*db.MemoryDataStore
	conflicts int
	attempts  int
}

func (r *racingStore) SaveRevisionWithContent(rev modeldb.RevisionDB, record modeldb.ContentRecordDB) error {
	r.attempts++
	if r.conflicts > 0 {
		r.conflicts--
		return fmt.Errorf("%w: version %d", db.ErrVersionConflict, rev.Version)
	}
	return r.MemoryDataStore.SaveRevisionWithContent(rev, record)
}

func TestCreateRevisionRetriesVersionConflicts(t *testing.T) {
	store := &racingStore{MemoryDataStore: db.NewMemoryDataStore(), conflicts: 2}
	manager := NewManager(store, DefaultOptions(), nil, nil)

	created, err := manager.CreateRevision(revision.Scope{ArticleID: "a1", Language: "en"}, "hello", "author")
	require.NoError(t, err)
	assert.Equal(t, 1, created.Revision.Version)
	assert.Equal(t, 3, store.attempts)
}

func TestCreateRevisionGivesUpAfterMaxAttempts(t *testing.T) {
	store := &racingStore{MemoryDataStore: db.NewMemoryDataStore(), conflicts: 100}
	options := DefaultOptions()
	options.MaxCreateAttempts = 3
	manager := NewManager(store, options, nil, nil)

	_, err := manager.CreateRevision(revision.Scope{ArticleID: "a1", Language: "en"}, "hello", "author")
	require.Error(t, err)
	assert.Equal(t, exception.KindAlreadyExists, exception.KindOf(err))
	assert.ErrorIs(t, err, db.ErrVersionConflict)
	assert.Equal(t, 3, store.attempts)
}

func TestCreateRevisionRecordsMetrics(t *testing.T) {
	metrics := NewMetrics()
	manager := NewManager(db.NewMemoryDataStore(), DefaultOptions(), metrics, nil)
	scope := revision.Scope{ArticleID: "a1", Language: "en"}

	base := ""
	for i := 0; i < 40; i++ {
		base += fmt.Sprintf("line %d of a reasonably long article body\n", i)
	}
	_, err := manager.CreateRevision(scope, base, "author")
	require.NoError(t, err)
	_, err = manager.CreateRevision(scope, base+"one more line\n", "author")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.revisionsCreated.WithLabelValues("full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.revisionsCreated.WithLabelValues("diff")))
}

func TestIsKeyframe(t *testing.T) {
	manager := &Manager{options: Options{KeyframeInterval: 10}}
	assert.True(t, manager.isKeyframe(1))
	assert.False(t, manager.isKeyframe(2))
	assert.True(t, manager.isKeyframe(10))
	assert.True(t, manager.isKeyframe(20))

	disabled := &Manager{options: Options{KeyframeInterval: 0}}
	assert.True(t, disabled.isKeyframe(1))
	assert.False(t, disabled.isKeyframe(100))
}

func TestParseActualPolicy(t *testing.T) {
	policy, err := ParseActualPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ActualPolicyIncludeRolledBack, policy)

	policy, err = ParseActualPolicy("latestEnabled")
	require.NoError(t, err)
	assert.Equal(t, ActualPolicyLatestEnabled, policy)

	_, err = ParseActualPolicy("everything")
	assert.Error(t, err)
}

func TestSortByVersionDesc(t *testing.T) {
	row := func(article string, version int) revision.ResolvedRevision {
		return revision.ResolvedRevision{Revision: revision.Revision{
			Scope:   revision.Scope{ArticleID: article, Language: "en"},
			Version: version,
		}}
	}
	rows := []revision.ResolvedRevision{row("b", 2), row("a", 1), row("b", 5), row("a", 5)}
	sortByVersionDesc(rows)

	var got []string
	for _, r := range rows {
		got = append(got, fmt.Sprintf("%s@%d", r.Revision.Scope.ArticleID, r.Revision.Version))
	}
	assert.Equal(t, []string{"a@5", "b@5", "b@2", "a@1"}, got)
}

func TestVersionStoreCreateDerivesFullTextMetadata(t *testing.T) {
	versions := NewVersionStore(db.NewMemoryDataStore())
	scope := revision.Scope{ArticleID: "a1", Language: "en"}

	_, record, err := versions.Create(scope, revision.ContentDraft{
		Kind:    revision.ContentKindFull,
		Payload: []byte("hello"),
	}, 1, "author")
	require.NoError(t, err)
	assert.Equal(t, 5, record.TextLength)
	assert.Equal(t, content.Checksum("hello"), record.Checksum)

	stored, err := versions.GetWithContent(scope, 1)
	require.NoError(t, err)
	assert.Equal(t, record.Checksum, stored.Content.Checksum)

	text, err := content.NewReconstructor(content.NewStore(db.NewMemoryDataStore()), nil).Materialize(stored.Content, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}
