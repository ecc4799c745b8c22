package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// historyFile is the well-known name of the durable history slot.
const historyFile = "history.json"

// FilePersister stores history as a single JSON file in the state directory.
// Writes are atomic (tmp + rename) to prevent partial reads.
type FilePersister struct {
	dir string
}

// NewFilePersister creates a persister rooted at the given state directory.
func NewFilePersister(dir string) *FilePersister {
	return &FilePersister{dir: dir}
}

// Path returns the history file location.
func (f *FilePersister) Path() string {
	return filepath.Join(f.dir, historyFile)
}

// Load reads the persisted history. A missing or unparseable file is empty
// history, not an error.
func (f *FilePersister) Load() ([]*Session, error) {
	data, err := os.ReadFile(f.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var sessions []*Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, nil
	}
	return sessions, nil
}

// Save writes the full history list atomically.
func (f *FilePersister) Save(sessions []*Session) error {
	if err := os.MkdirAll(f.dir, 0750); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if sessions == nil {
		sessions = []*Session{}
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	tmp := f.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	return os.Rename(tmp, f.Path())
}
