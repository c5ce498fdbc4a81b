// Package history is an append-only BoltDB log of VM session transitions
// (Starting -> Ready -> Stopped): one bucket, JSON-marshaled values keyed
// so iteration order is chronological.
package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/warren-vm/pkg/apperr"
)

var bucketSessions = []byte("sessions")

// Entry records one session's observed lifecycle.
type Entry struct {
	SessionID   string `json:"session_id"`
	TaskID      string `json:"task_id,omitempty"`
	AuthProfile string `json:"auth_profile,omitempty"`
	StartedAt   string `json:"started_at"`
	ReadyAt     string `json:"ready_at,omitempty"`
	StoppedAt   string `json:"stopped_at,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Log is a session history rooted at a BoltDB file on disk.
type Log struct {
	db *bolt.DB
}

// Open opens (creating if absent) the history database under dataDir.
func Open(dataDir string) (*Log, error) {
	dbPath := filepath.Join(dataDir, "history.db")

	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.IO, err, "open history db %s", dbPath)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, apperr.Wrap(apperr.IO, err, "create sessions bucket")
	}

	return &Log{db: db}, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Append records or overwrites entry, keyed by the sequence number of the
// session's first append, so List orders entries by when they were first
// appended (newest first).
func (l *Log) Append(entry Entry) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)

		key, err := keyFor(b, entry.SessionID)
		if err != nil {
			return err
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// List returns up to limit most-recent entries, most recent first. A
// limit of 0 returns every entry.
func (l *Log) List(limit int) ([]Entry, error) {
	var entries []Entry
	err := l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			entries = append(entries, entry)
			if limit > 0 && len(entries) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.IO, err, "read session history")
	}
	return entries, nil
}

// keyFor finds the existing key for sessionID (an append that updates an
// in-progress session's entry), or allocates the next sequence number.
func keyFor(b *bolt.Bucket, sessionID string) ([]byte, error) {
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var entry Entry
		if err := json.Unmarshal(v, &entry); err != nil {
			return nil, err
		}
		if entry.SessionID == sessionID {
			return k, nil
		}
	}

	seq, err := b.NextSequence()
	if err != nil {
		return nil, fmt.Errorf("allocate sequence: %w", err)
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key, nil
}
