// Package taskstore persists agent task records and their artifact
// subtrees under a root directory: <root>/<id>/task.json plus optional
// conversation.json, outputs/, and uploads/.
package taskstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cuemby/warren-vm/pkg/apperr"
	"github.com/cuemby/warren-vm/pkg/log"
	"github.com/cuemby/warren-vm/pkg/types"
)

const (
	taskFileName         = "task.json"
	conversationFileName = "conversation.json"
	outputsDirName       = "outputs"
	uploadsDirName       = "uploads"
)

// Store is a task registry rooted at a directory on disk. The directory is
// created on demand.
type Store struct {
	root string
}

// New returns a Store rooted at root. The directory is not created until
// the first operation that needs it.
func New(root string) *Store {
	return &Store{root: root}
}

func validateID(id string) error {
	if id == "" {
		return apperr.New(apperr.Validation, "task id must not be empty")
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return apperr.New(apperr.Validation, "task id must not contain path separators or ..")
	}
	return nil
}

func (s *Store) taskDir(id string) string          { return filepath.Join(s.root, id) }
func (s *Store) taskFile(id string) string         { return filepath.Join(s.taskDir(id), taskFileName) }
func (s *Store) conversationFile(id string) string { return filepath.Join(s.taskDir(id), conversationFileName) }
func (s *Store) outputsDir(id string) string       { return filepath.Join(s.taskDir(id), outputsDirName) }
func (s *Store) uploadsDir(id string) string       { return filepath.Join(s.taskDir(id), uploadsDirName) }

// List returns every task under root, sorted by UpdatedAt descending.
func (s *Store) List() ([]types.Task, error) {
	logger := log.WithComponent("taskstore")

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.IO, err, "create task root %s", s.root)
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, apperr.Wrap(apperr.IO, err, "read task root %s", s.root)
	}

	var tasks []types.Task
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		task, err := s.Load(entry.Name())
		if err != nil {
			logger.Warn().Str("task_id", entry.Name()).Err(err).Msg("skipping unreadable task directory")
			continue
		}
		if task != nil {
			tasks = append(tasks, *task)
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].UpdatedAt > tasks[j].UpdatedAt
	})

	return tasks, nil
}

// Load returns the task record for id, or nil if it does not exist.
func (s *Store) Load(id string) (*types.Task, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	path := s.taskFile(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.IO, err, "read task %s", id)
	}

	var task types.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, apperr.Wrap(apperr.Parse, err, "parse task %s", id)
	}
	return &task, nil
}

// Upsert creates or replaces the task record for task.ID, enforcing the
// immutable-working-folder invariant: once a task's WorkingFolder is
// non-empty on disk, subsequent upserts must carry the same value.
func (s *Store) Upsert(task types.Task) error {
	if err := validateID(task.ID); err != nil {
		return err
	}

	existing, err := s.Load(task.ID)
	if err != nil {
		return err
	}
	if existing != nil && existing.WorkingFolder != "" && existing.WorkingFolder != task.WorkingFolder {
		return apperr.New(apperr.InvariantViolation, "workingFolder is immutable once set; create a new task to use a different folder")
	}

	dir := s.taskDir(task.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Wrap(apperr.IO, err, "create task dir %s", task.ID)
	}
	if err := os.MkdirAll(s.outputsDir(task.ID), 0o755); err != nil {
		return apperr.Wrap(apperr.IO, err, "create outputs dir %s", task.ID)
	}
	if err := os.MkdirAll(s.uploadsDir(task.ID), 0o755); err != nil {
		return apperr.Wrap(apperr.IO, err, "create uploads dir %s", task.ID)
	}

	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.Parse, err, "marshal task %s", task.ID)
	}
	if err := os.WriteFile(s.taskFile(task.ID), data, 0o644); err != nil {
		return apperr.Wrap(apperr.IO, err, "write task %s", task.ID)
	}

	return nil
}

// Delete removes a task's entire subtree. Idempotent: deleting an absent
// task is not an error.
func (s *Store) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := os.RemoveAll(s.taskDir(id)); err != nil {
		return apperr.Wrap(apperr.IO, err, "delete task %s", id)
	}
	return nil
}

// DeleteAll removes every task under root.
func (s *Store) DeleteAll() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperr.Wrap(apperr.IO, err, "read task root %s", s.root)
	}

	for _, entry := range entries {
		path := filepath.Join(s.root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return apperr.Wrap(apperr.IO, err, "remove %s", path)
		}
	}
	return nil
}

// SaveConversation writes blob as conversation.json under the task's
// subtree. The task directory must already exist.
func (s *Store) SaveConversation(id, blob string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if _, err := os.Stat(s.taskDir(id)); err != nil {
		if os.IsNotExist(err) {
			return apperr.New(apperr.NotFound, "task %s does not exist", id)
		}
		return apperr.Wrap(apperr.IO, err, "stat task dir %s", id)
	}

	if err := os.WriteFile(s.conversationFile(id), []byte(blob), 0o644); err != nil {
		return apperr.Wrap(apperr.IO, err, "write conversation for task %s", id)
	}
	return nil
}

// WorkingFolder returns task id's bound working folder, satisfying
// preview.TaskResolver. A task with no working folder bound yet, or that
// does not exist, is reported as not found.
func (s *Store) WorkingFolder(id string) (string, error) {
	task, err := s.Load(id)
	if err != nil {
		return "", err
	}
	if task == nil || task.WorkingFolder == "" {
		return "", apperr.New(apperr.NotFound, "task %s has no bound working folder", id)
	}
	return task.WorkingFolder, nil
}

// LoadConversation returns the conversation blob for id, or nil if absent.
func (s *Store) LoadConversation(id string) (*string, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.conversationFile(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.IO, err, "read conversation for task %s", id)
	}
	blob := string(data)
	return &blob, nil
}
