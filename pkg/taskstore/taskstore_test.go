package taskstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/warren-vm/pkg/apperr"
	"github.com/cuemby/warren-vm/pkg/types"
)

func sampleTask(id, updatedAt string) types.Task {
	return types.Task{
		ID:        id,
		Title:     "Test",
		Status:    "idle",
		CreatedAt: "2026-02-04T00:00:00Z",
		UpdatedAt: updatedAt,
	}
}

func TestUpsertAndList(t *testing.T) {
	store := New(t.TempDir())
	task := sampleTask("task-1", "2026-02-04T00:00:01Z")

	require.NoError(t, store.Upsert(task))

	tasks, err := store.List()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "task-1", tasks[0].ID)
}

func TestUpsertCreatesArtifactDirs(t *testing.T) {
	root := t.TempDir()
	store := New(root)
	task := sampleTask("task-1", "2026-02-04T00:00:01Z")

	require.NoError(t, store.Upsert(task))

	require.DirExists(t, filepath.Join(root, "task-1", outputsDirName))
	require.DirExists(t, filepath.Join(root, "task-1", uploadsDirName))
}

func TestUpsertAllowsFirstWorkingFolderBind(t *testing.T) {
	store := New(t.TempDir())
	initial := sampleTask("task-1", "2026-02-04T00:00:01Z")
	bound := sampleTask("task-1", "2026-02-04T00:00:02Z")
	bound.WorkingFolder = "/tmp/work"

	require.NoError(t, store.Upsert(initial))
	require.NoError(t, store.Upsert(bound))

	loaded, err := store.Load("task-1")
	require.NoError(t, err)
	require.Equal(t, "/tmp/work", loaded.WorkingFolder)
}

func TestUpsertRejectsWorkingFolderChangeAfterBind(t *testing.T) {
	store := New(t.TempDir())
	initial := sampleTask("task-1", "2026-02-04T00:00:01Z")
	initial.WorkingFolder = "/tmp/work-a"
	changed := sampleTask("task-1", "2026-02-04T00:00:02Z")
	changed.WorkingFolder = "/tmp/work-b"

	require.NoError(t, store.Upsert(initial))
	err := store.Upsert(changed)
	require.Error(t, err)
	require.Contains(t, err.Error(), "workingFolder is immutable")
	require.ErrorIs(t, err, apperr.ErrInvariantViolation)

	loaded, loadErr := store.Load("task-1")
	require.NoError(t, loadErr)
	require.Equal(t, "/tmp/work-a", loaded.WorkingFolder)
}

func TestUpsertRejectsWorkingFolderClearAfterBind(t *testing.T) {
	store := New(t.TempDir())
	initial := sampleTask("task-1", "2026-02-04T00:00:01Z")
	initial.WorkingFolder = "/tmp/work-a"
	cleared := sampleTask("task-1", "2026-02-04T00:00:02Z")

	require.NoError(t, store.Upsert(initial))
	err := store.Upsert(cleared)
	require.Error(t, err)
	require.Contains(t, err.Error(), "workingFolder is immutable")
}

func TestListSortsByUpdatedAtDescending(t *testing.T) {
	store := New(t.TempDir())
	older := sampleTask("task-old", "2026-02-04T00:00:01Z")
	newer := sampleTask("task-new", "2026-02-04T00:00:02Z")

	require.NoError(t, store.Upsert(older))
	require.NoError(t, store.Upsert(newer))

	tasks, err := store.List()
	require.NoError(t, err)
	require.Equal(t, "task-new", tasks[0].ID)
	require.Equal(t, "task-old", tasks[1].ID)
}

func TestDeleteRemovesDir(t *testing.T) {
	store := New(t.TempDir())
	task := sampleTask("task-1", "2026-02-04T00:00:01Z")

	require.NoError(t, store.Upsert(task))
	require.NoError(t, store.Delete("task-1"))

	tasks, err := store.List()
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := New(t.TempDir())
	require.NoError(t, store.Delete("no-such-task"))
}

func TestDeleteAllRemovesEveryTask(t *testing.T) {
	store := New(t.TempDir())
	require.NoError(t, store.Upsert(sampleTask("task-1", "2026-02-04T00:00:01Z")))
	require.NoError(t, store.Upsert(sampleTask("task-2", "2026-02-04T00:00:02Z")))

	require.NoError(t, store.DeleteAll())

	tasks, err := store.List()
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestSaveAndLoadConversation(t *testing.T) {
	store := New(t.TempDir())
	require.NoError(t, store.Upsert(sampleTask("task-1", "2026-02-04T00:00:01Z")))

	require.NoError(t, store.SaveConversation("task-1", `{"messages":[]}`))

	blob, err := store.LoadConversation("task-1")
	require.NoError(t, err)
	require.NotNil(t, blob)
	require.Equal(t, `{"messages":[]}`, *blob)
}

func TestSaveConversationRequiresExistingTask(t *testing.T) {
	store := New(t.TempDir())
	err := store.SaveConversation("missing", "{}")
	require.Error(t, err)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLoadConversationMissingReturnsNil(t *testing.T) {
	store := New(t.TempDir())
	require.NoError(t, store.Upsert(sampleTask("task-1", "2026-02-04T00:00:01Z")))

	blob, err := store.LoadConversation("task-1")
	require.NoError(t, err)
	require.Nil(t, blob)
}

func TestValidateIDRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Load("../escape")
	require.Error(t, err)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListSkipsFilesNotDirectories(t *testing.T) {
	root := t.TempDir()
	store := New(root)
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray-file"), []byte("x"), 0o644))

	tasks, err := store.List()
	require.NoError(t, err)
	require.Empty(t, tasks)
}
