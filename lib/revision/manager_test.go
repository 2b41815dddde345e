package revision_test

import (
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/ether/articlestore/lib/exception"
	"github.com/ether/articlestore/lib/models/revision"
	revisionManager "github.com/ether/articlestore/lib/revision"
	"github.com/ether/articlestore/lib/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func versionsOf(texts []revision.RevisionText) []int {
	versions := make([]int, 0, len(texts))
	for _, text := range texts {
		versions = append(versions, text.Revision.Version)
	}
	return versions
}

// growingTexts returns count texts, each one sentence longer than the last.
// The first is about 2 KB so that appending a sentence encodes to a delta
// well below the size of the text.
func growingTexts(seed uint64, count int) []string {
	faker := gofakeit.New(seed)
	var first strings.Builder
	for first.Len() < 2048 {
		first.WriteString(faker.Sentence(12))
		first.WriteString("\n")
	}
	texts := []string{first.String()}
	for len(texts) < count {
		texts = append(texts, texts[len(texts)-1]+"\n"+faker.Sentence(8))
	}
	return texts
}

func createAll(t *testing.T, manager *revisionManager.Manager, scope revision.Scope, texts ...string) []revision.ResolvedRevision {
	t.Helper()
	created := make([]revision.ResolvedRevision, 0, len(texts))
	for _, text := range texts {
		rev, err := manager.CreateRevision(scope, text, "author")
		require.NoError(t, err)
		created = append(created, *rev)
	}
	return created
}

func TestRevisionManager(t *testing.T) {
	testDb := testutils.NewTestDBHandler(t)
	latestEnabled := revisionManager.DefaultOptions()
	latestEnabled.ActualPolicy = revisionManager.ActualPolicyLatestEnabled
	keyframeEveryThird := revisionManager.DefaultOptions()
	keyframeEveryThird.KeyframeInterval = 3
	manyAttempts := revisionManager.DefaultOptions()
	manyAttempts.MaxCreateAttempts = 25

	testDb.AddTests(
		testutils.TestRunConfig{Name: "First revision is full and enabled", Test: testFirstRevision},
		testutils.TestRunConfig{Name: "Second revision reconstructs", Test: testSecondRevision},
		testutils.TestRunConfig{Name: "Small edit is stored as diff", Test: testSmallEditIsDiff},
		testutils.TestRunConfig{Name: "Diff chain links each revision to its predecessor", Test: testDiffChain},
		testutils.TestRunConfig{Name: "Disabling older revision keeps newest actual", Test: testScenarioC},
		testutils.TestRunConfig{Name: "Rollback keeps disabled newer revision", Test: testScenarioDIncludeRolledBack},
		testutils.TestRunConfig{Name: "Rollback with latest enabled policy", Options: &latestEnabled, Test: testScenarioDLatestEnabled},
		testutils.TestRunConfig{Name: "Scope without enabled revision is not actual", Test: testNoEnabledRevision},
		testutils.TestRunConfig{Name: "Actual set across scopes", Test: testActualAcrossScopes},
		testutils.TestRunConfig{Name: "Toggling is idempotent", Test: testIdempotentToggle},
		testutils.TestRunConfig{Name: "Toggling unknown revision", Test: testToggleUnknown},
		testutils.TestRunConfig{Name: "Disabled revision is hidden from readers", Test: testDisabledRevisionHidden},
		testutils.TestRunConfig{Name: "History includes disabled revisions", Test: testHistory},
		testutils.TestRunConfig{Name: "Keyframes", Options: &keyframeEveryThird, Test: testKeyframes},
		testutils.TestRunConfig{Name: "Empty text", Test: testEmptyText},
		testutils.TestRunConfig{Name: "Materialize diff revision", Test: testMaterializeRevision},
		testutils.TestRunConfig{Name: "Concurrent writers get contiguous versions", Options: &manyAttempts, Test: testConcurrentWriters},
		testutils.TestRunConfig{Name: "Invalid UTF-8 is rejected", Test: testInvalidUTF8},
	)
	testDb.StartTestDBHandler()
}

func testFirstRevision(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	created, err := ds.Manager.CreateRevision(scope, "hello", "author")
	require.NoError(t, err)

	assert.Equal(t, 1, created.Revision.Version)
	assert.True(t, created.Revision.Enabled)
	assert.Equal(t, "author", created.Revision.CreatedBy)
	assert.Equal(t, revision.ContentKindFull, created.Content.Kind)
	assert.Nil(t, created.Content.BaseID)
	assert.Equal(t, created.Content.ID, created.Revision.ContentRecordID)
}

func testSecondRevision(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	created := createAll(t, ds.Manager, scope, "hello", "hello world")

	// A delta of a text this short is larger than the text itself, so the
	// second revision falls back to a full record.
	assert.Equal(t, revision.ContentKindFull, created[1].Content.Kind)
	assert.Nil(t, created[1].Content.BaseID)

	got, err := ds.Manager.GetRevision(scope, 2)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Text)
	assert.Equal(t, 2, got.Revision.Version)

	first, err := ds.Manager.GetRevision(scope, 1)
	require.NoError(t, err)
	assert.Equal(t, "hello", first.Text)
}

func testSmallEditIsDiff(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	texts := growingTexts(1, 2)
	created := createAll(t, ds.Manager, scope, texts...)

	diff := created[1].Content
	require.Equal(t, revision.ContentKindDiff, diff.Kind)
	require.NotNil(t, diff.BaseID)
	assert.Equal(t, created[0].Content.ID, *diff.BaseID)
	assert.Equal(t, len(texts[1]), diff.TextLength)
	assert.Less(t, diff.Length, len(texts[1]))

	got, err := ds.Manager.GetRevision(scope, 2)
	require.NoError(t, err)
	assert.Equal(t, texts[1], got.Text)
}

func testDiffChain(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	texts := growingTexts(6, 6)
	created := createAll(t, ds.Manager, scope, texts...)

	for i := 1; i < len(created); i++ {
		record := created[i].Content
		require.Equal(t, revision.ContentKindDiff, record.Kind, "version %d", i+1)
		require.NotNil(t, record.BaseID)
		assert.Equal(t, created[i-1].Content.ID, *record.BaseID)
	}

	// Versions 1 to 3 are outside the window and are only reached via bases.
	history, err := ds.Manager.GetHistory(scope, 4)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, row := range history {
		assert.Equal(t, texts[5-i], row.Text)
	}

	actual, err := ds.Manager.ListActualRevisions([]revision.Scope{scope})
	require.NoError(t, err)
	require.Len(t, actual, 1)
	assert.Equal(t, texts[5], actual[0].Text)
}

func testScenarioC(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	createAll(t, ds.Manager, scope, "hello", "hello world")

	_, err := ds.Manager.SetRevisionEnabled(scope, 1, false, "editor")
	require.NoError(t, err)

	actual, err := ds.Manager.ListActualRevisions([]revision.Scope{scope})
	require.NoError(t, err)
	require.Equal(t, []int{2}, versionsOf(actual))
	assert.Equal(t, "hello world", actual[0].Text)
}

func rollBack(t *testing.T, ds testutils.TestDataStore, scope revision.Scope) {
	t.Helper()
	createAll(t, ds.Manager, scope, "hello", "hello world")
	_, err := ds.Manager.SetRevisionEnabled(scope, 1, false, "editor")
	require.NoError(t, err)
	_, err = ds.Manager.SetRevisionEnabled(scope, 1, true, "editor")
	require.NoError(t, err)
	_, err = ds.Manager.SetRevisionEnabled(scope, 2, false, "editor")
	require.NoError(t, err)
}

func testScenarioDIncludeRolledBack(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	rollBack(t, ds, scope)

	actual, err := ds.Manager.ListActualRevisions([]revision.Scope{scope})
	require.NoError(t, err)
	require.Equal(t, []int{2, 1}, versionsOf(actual))
	assert.False(t, actual[0].Revision.Enabled)
	assert.Equal(t, "hello world", actual[0].Text)
	assert.True(t, actual[1].Revision.Enabled)
	assert.Equal(t, "hello", actual[1].Text)
}

func testScenarioDLatestEnabled(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	rollBack(t, ds, scope)

	actual, err := ds.Manager.ListActualRevisions([]revision.Scope{scope})
	require.NoError(t, err)
	require.Equal(t, []int{1}, versionsOf(actual))
	assert.Equal(t, "hello", actual[0].Text)
}

func testNoEnabledRevision(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	createAll(t, ds.Manager, scope, "only")
	_, err := ds.Manager.SetRevisionEnabled(scope, 1, false, "editor")
	require.NoError(t, err)

	actual, err := ds.Manager.ListActualRevisions([]revision.Scope{scope, testutils.RandomScope()})
	require.NoError(t, err)
	assert.Empty(t, actual)
}

func testActualAcrossScopes(t *testing.T, ds testutils.TestDataStore) {
	first := revision.Scope{ArticleID: "a-" + testutils.RandomScope().ArticleID, Language: "en"}
	second := revision.Scope{ArticleID: "b-" + first.ArticleID, Language: "en"}
	createAll(t, ds.Manager, first, "one", "one two", "one two three")
	createAll(t, ds.Manager, second, "uno", "uno dos", "uno dos tres")
	_, err := ds.Manager.SetRevisionEnabled(second, 3, false, "editor")
	require.NoError(t, err)

	actual, err := ds.Manager.ListActualRevisions([]revision.Scope{second, first, first})
	require.NoError(t, err)
	require.Len(t, actual, 3)

	// Version descending, ties broken by scope key.
	assert.Equal(t, first, actual[0].Revision.Scope)
	assert.Equal(t, 3, actual[0].Revision.Version)
	assert.Equal(t, second, actual[1].Revision.Scope)
	assert.Equal(t, 3, actual[1].Revision.Version)
	assert.Equal(t, second, actual[2].Revision.Scope)
	assert.Equal(t, 2, actual[2].Revision.Version)
	assert.Equal(t, "uno dos", actual[2].Text)
}

func testIdempotentToggle(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	createAll(t, ds.Manager, scope, "hello", "hello world")

	for i := 0; i < 2; i++ {
		updated, err := ds.Manager.SetRevisionEnabled(scope, 1, false, "editor")
		require.NoError(t, err)
		assert.False(t, updated.Enabled)
		require.NotNil(t, updated.UpdatedBy)
		assert.Equal(t, "editor", *updated.UpdatedBy)
		assert.NotNil(t, updated.UpdatedAt)
	}

	actual, err := ds.Manager.ListActualRevisions([]revision.Scope{scope})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, versionsOf(actual))
}

func testToggleUnknown(t *testing.T, ds testutils.TestDataStore) {
	_, err := ds.Manager.SetRevisionEnabled(testutils.RandomScope(), 4, true, "editor")
	assert.True(t, exception.IsNotFound(err))
}

func testDisabledRevisionHidden(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	createAll(t, ds.Manager, scope, "hello")
	_, err := ds.Manager.SetRevisionEnabled(scope, 1, false, "editor")
	require.NoError(t, err)

	_, err = ds.Manager.GetRevision(scope, 1)
	assert.True(t, exception.IsNotFound(err))

	_, err = ds.Manager.GetRevision(scope, 2)
	assert.True(t, exception.IsNotFound(err))
}

func testHistory(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	texts := growingTexts(2, 5)
	createAll(t, ds.Manager, scope, texts...)
	_, err := ds.Manager.SetRevisionEnabled(scope, 4, false, "editor")
	require.NoError(t, err)

	history, err := ds.Manager.GetHistory(scope, 2)
	require.NoError(t, err)
	require.Equal(t, []int{5, 4, 3, 2}, versionsOf(history))
	for _, entry := range history {
		assert.Equal(t, texts[entry.Revision.Version-1], entry.Text)
	}
	assert.False(t, history[1].Revision.Enabled)

	all, err := ds.Manager.GetHistory(scope, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func testKeyframes(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	texts := growingTexts(3, 7)
	created := createAll(t, ds.Manager, scope, texts...)

	kinds := make([]revision.ContentKind, 0, len(created))
	for _, rev := range created {
		kinds = append(kinds, rev.Content.Kind)
	}
	assert.Equal(t, []revision.ContentKind{
		revision.ContentKindFull, // 1
		revision.ContentKindDiff,
		revision.ContentKindFull, // 3
		revision.ContentKindDiff,
		revision.ContentKindDiff,
		revision.ContentKindFull, // 6
		revision.ContentKindDiff,
	}, kinds)

	for i, text := range texts {
		got, err := ds.Manager.GetRevision(scope, i+1)
		require.NoError(t, err)
		assert.Equal(t, text, got.Text)
	}
}

func testEmptyText(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	created := createAll(t, ds.Manager, scope, "hello", "", "hello again")
	assert.Equal(t, revision.ContentKindFull, created[1].Content.Kind)
	assert.Equal(t, revision.ContentKindFull, created[2].Content.Kind)

	got, err := ds.Manager.GetRevision(scope, 2)
	require.NoError(t, err)
	assert.Equal(t, "", got.Text)
}

func testMaterializeRevision(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	texts := growingTexts(4, 4)
	created := createAll(t, ds.Manager, scope, texts...)
	require.Equal(t, revision.ContentKindDiff, created[2].Content.Kind)

	record, err := ds.Manager.MaterializeRevision(scope, 3, "compactor")
	require.NoError(t, err)
	assert.Equal(t, created[2].Content.ID, record.ID)
	assert.Equal(t, revision.ContentKindFull, record.Kind)
	assert.Nil(t, record.BaseID)

	// Revision 4 still patches against the same record id.
	for i, text := range texts {
		got, err := ds.Manager.GetRevision(scope, i+1)
		require.NoError(t, err)
		assert.Equal(t, text, got.Text)
	}

	again, err := ds.Manager.MaterializeRevision(scope, 3, "compactor")
	require.NoError(t, err)
	assert.Equal(t, record.ID, again.ID)

	_, err = ds.Manager.MaterializeRevision(scope, 9, "compactor")
	assert.True(t, exception.IsNotFound(err))
}

func testConcurrentWriters(t *testing.T, ds testutils.TestDataStore) {
	scope := testutils.RandomScope()
	const writers = 8
	base := growingTexts(5, 1)[0]
	createAll(t, ds.Manager, scope, base)

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	submitted := make([]string, writers)
	for i := 0; i < writers; i++ {
		submitted[i] = base + "\n" + gofakeit.New(uint64(100+i)).Sentence(6)
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			_, err := ds.Manager.CreateRevision(scope, text, "writer")
			errs <- err
		}(submitted[i])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	history, err := ds.Manager.GetHistory(scope, 1)
	require.NoError(t, err)
	require.Equal(t, []int{9, 8, 7, 6, 5, 4, 3, 2, 1}, versionsOf(history))

	var stored []string
	for _, entry := range history[:writers] {
		stored = append(stored, entry.Text)
	}
	sort.Strings(stored)
	sort.Strings(submitted)
	assert.Equal(t, submitted, stored)
}

func testInvalidUTF8(t *testing.T, ds testutils.TestDataStore) {
	_, err := ds.Manager.CreateRevision(testutils.RandomScope(), string([]byte{0xff, 0x00}), "author")
	assert.Equal(t, exception.KindProcessingError, exception.KindOf(err))
}
