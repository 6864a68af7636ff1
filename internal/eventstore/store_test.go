package eventstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustEvent(t *testing.T, buildID, typ string, at time.Time, payload any) Event {
	t.Helper()
	e, err := NewEvent(buildID, typ, at, payload)
	require.NoError(t, err)
	return e
}

func TestAppendAndByBuildID(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, mustEvent(t, "b1", TypeBuildStarted, at, BuildStarted{Trigger: "cli"})))
	require.NoError(t, store.Append(ctx, mustEvent(t, "b2", TypeBuildStarted, at, BuildStarted{Trigger: "cli"})))
	require.NoError(t, store.Append(ctx, mustEvent(t, "b1", TypeBuildCompleted, at.Add(time.Second), BuildCompleted{Outcome: "success"})))

	events, err := store.ByBuildID(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, TypeBuildStarted, events[0].Type)
	assert.Equal(t, TypeBuildCompleted, events[1].Type)
	assert.True(t, events[0].Timestamp.Equal(at))
	assert.JSONEq(t, `{"trigger":"cli"}`, string(events[0].Payload))
}

func TestAppendRejectsIncompleteEvent(t *testing.T) {
	store := newStore(t)
	err := store.Append(t.Context(), Event{Type: TypeBuildStarted})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestBuildsProjection(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, mustEvent(t, "old", TypeBuildStarted, base, BuildStarted{Trigger: "schedule"})))
	require.NoError(t, store.Append(ctx, mustEvent(t, "old", TypeBuildFailed, base.Add(2*time.Second),
		BuildFailed{Stage: "load_posts", Error: "csv missing", DurationMS: 2000})))
	require.NoError(t, store.Append(ctx, mustEvent(t, "new", TypeBuildStarted, base.Add(time.Minute), BuildStarted{Trigger: "cli"})))
	require.NoError(t, store.Append(ctx, mustEvent(t, "new", TypeBuildCompleted, base.Add(time.Minute+time.Second),
		BuildCompleted{Outcome: "warning", Posts: 4, Pages: 11, DurationMS: 1000})))
	require.NoError(t, store.Append(ctx, mustEvent(t, "live", TypeBuildStarted, base.Add(2*time.Minute), BuildStarted{Trigger: "preview"})))

	builds, err := store.Builds(ctx, 10)
	require.NoError(t, err)
	require.Len(t, builds, 3)

	assert.Equal(t, "live", builds[0].BuildID)
	assert.Equal(t, "running", builds[0].Outcome)
	assert.Nil(t, builds[0].CompletedAt)

	assert.Equal(t, "new", builds[1].BuildID)
	assert.Equal(t, "warning", builds[1].Outcome)
	assert.Equal(t, 4, builds[1].Posts)
	assert.Equal(t, 11, builds[1].Pages)
	assert.Equal(t, time.Second, builds[1].Duration)

	assert.Equal(t, "old", builds[2].BuildID)
	assert.Equal(t, "failed", builds[2].Outcome)
	assert.Equal(t, "load_posts", builds[2].ErrorStage)
	assert.Equal(t, "csv missing", builds[2].Error)

	limited, err := store.Builds(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "live", limited[0].BuildID)
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "events.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(t.Context(), mustEvent(t, "b1", TypeBuildStarted, time.Now(), BuildStarted{})))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	builds, err := reopened.Builds(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, builds, 1)
}
