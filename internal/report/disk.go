package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/deixis/toolwrap/internal/runner"
)

// DiskStore writes results as JSON files to a lazily-created temp directory.
type DiskStore struct {
	mu  sync.Mutex
	dir string
}

// NewDiskStore creates a new DiskStore. The underlying temp directory
// is created lazily on the first Save or Load.
func NewDiskStore() *DiskStore {
	return &DiskStore{}
}

// Save writes a result as a JSON file to disk.
func (s *DiskStore) Save(result *runner.Result) error {
	path, err := s.path(result.RunID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return errors.Wrapf(err, "marshalling result %s", result.RunID)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "writing result %s", result.RunID)
	}
	return nil
}

// Load reads a result from disk.
func (s *DiskStore) Load(runID string) (*runner.Result, error) {
	path, err := s.path(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading result %s", runID)
	}
	var result runner.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling result %s", runID)
	}
	return &result, nil
}

// path maps a run ID to its file. Only UUIDs are accepted so an ID can
// never name a file outside the store directory.
func (s *DiskStore) path(runID string) (string, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return "", errors.Errorf("invalid run ID %q", runID)
	}
	dir, err := s.ensureDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, runID+".json"), nil
}

func (s *DiskStore) ensureDir() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir != "" {
		return s.dir, nil
	}
	dir, err := os.MkdirTemp("", "toolwrap-runs-*")
	if err != nil {
		return "", errors.Wrap(err, "creating result directory")
	}
	s.dir = dir
	return dir, nil
}
