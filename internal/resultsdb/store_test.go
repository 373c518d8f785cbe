package resultsdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lanelint/internal/timeutil"
	"github.com/banshee-data/lanelint/internal/validation"
)

func newTestStore(t *testing.T, clock timeutil.Clock) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.db")
	store, err := NewStoreWithClock(path, clock)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordRunRoundTrip(t *testing.T) {
	clock := &timeutil.FakeClock{T: time.Unix(1700000000, 0)}
	store := newTestStore(t, clock)

	issues := []validation.Issue{
		validation.NewIssue(validation.SeverityWarning, validation.PrimitiveLanelet, 30, "questionable tag"),
		validation.NewIssue(validation.SeverityError, validation.PrimitiveLineString, 21, "facing away"),
	}
	run := &Run{
		MapPath:          "maps/intersection.json",
		RequirementsPath: "requirements/vm-04.json",
		WarningCount:     1,
		ErrorCount:       1,
		TotalIssues:      2,
	}
	require.NoError(t, store.RecordRun(run, issues))

	assert.NotEmpty(t, run.RunID, "a missing run id must be filled in")
	assert.Equal(t, clock.T.UnixNano(), run.StartedAt)

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.RunID, runs[0].RunID)
	assert.Equal(t, "maps/intersection.json", runs[0].MapPath)
	assert.Equal(t, 2, runs[0].TotalIssues)
	assert.False(t, runs[0].Passed)

	got, err := store.IssuesForRun(run.RunID)
	require.NoError(t, err)
	if diff := cmp.Diff(issues, got); diff != "" {
		t.Errorf("issues did not round-trip (-want +got):\n%s", diff)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	clock := &timeutil.FakeClock{T: time.Unix(1700000000, 0)}
	store := newTestStore(t, clock)

	first := &Run{MapPath: "a.json", Passed: true}
	require.NoError(t, store.RecordRun(first, nil))

	clock.Advance(time.Hour)
	second := &Run{MapPath: "b.json", Passed: true}
	require.NoError(t, store.RecordRun(second, nil))

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b.json", runs[0].MapPath)
	assert.Equal(t, "a.json", runs[1].MapPath)
}

func TestExplicitRunIDPreserved(t *testing.T) {
	store := newTestStore(t, timeutil.RealClock{})

	run := &Run{RunID: "run-fixed", MapPath: "a.json", StartedAt: 42}
	require.NoError(t, store.RecordRun(run, nil))

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-fixed", runs[0].RunID)
	assert.Equal(t, int64(42), runs[0].StartedAt)
}

func TestDuplicateRunIDRejected(t *testing.T) {
	store := newTestStore(t, timeutil.RealClock{})

	require.NoError(t, store.RecordRun(&Run{RunID: "run-dup"}, nil))
	err := store.RecordRun(&Run{RunID: "run-dup"}, nil)
	assert.Error(t, err)
}

func TestMigrationsAppliedOnOpen(t *testing.T) {
	store := newTestStore(t, timeutil.RealClock{})

	version, dirty, err := store.MigrateVersion()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version, "opening the archive must apply the embedded migrations")

	// The migrated schema still accepts writes.
	require.NoError(t, store.RecordRun(&Run{MapPath: "a.json"}, nil))
}

func TestMigrateRoundTrip(t *testing.T) {
	store := newTestStore(t, timeutil.RealClock{})

	require.NoError(t, store.MigrateUp(), "up on a current schema is a no-op")

	require.NoError(t, store.MigrateDown())
	version, dirty, err := store.MigrateVersion()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Zero(t, version, "down must roll the only migration back")

	require.NoError(t, store.MigrateUp())
	version, _, err = store.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestIssuesForUnknownRun(t *testing.T) {
	store := newTestStore(t, timeutil.RealClock{})

	issues, err := store.IssuesForRun("missing")
	require.NoError(t, err)
	assert.Empty(t, issues)
}
