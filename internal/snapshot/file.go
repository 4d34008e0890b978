package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/project-finance/internal/config"
	"github.com/iwvelando/project-finance/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const fileExtension = ".yaml"

// FileStore keeps one YAML document per snapshot in a directory.
type FileStore struct {
	logger *zap.Logger
	dir    string
	now    func() time.Time

	mu sync.Mutex
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(logger *zap.Logger, dir string) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}
	return &FileStore{logger: logger, dir: dir, now: time.Now}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+fileExtension)
}

// Save writes conf under name.
func (s *FileStore) Save(_ context.Context, name string, conf config.Configuration) (Info, error) {
	if err := validation.ValidateSnapshotName(name); err != nil {
		return Info{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	snap := Snapshot{
		Info:          Info{ID: uuid.NewString(), Name: name, Version: 1, CreatedAt: now, UpdatedAt: now},
		Configuration: storable(conf),
	}

	existing, err := s.read(name)
	switch {
	case err == nil:
		snap.ID = existing.ID
		snap.CreatedAt = existing.CreatedAt
		snap.Version = existing.Version + 1
	case !errors.Is(err, ErrNotFound):
		return Info{}, err
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return Info{}, fmt.Errorf("failed to encode snapshot %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*")
	if err != nil {
		return Info{}, fmt.Errorf("failed to write snapshot %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return Info{}, fmt.Errorf("failed to write snapshot %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return Info{}, fmt.Errorf("failed to write snapshot %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		_ = os.Remove(tmp.Name())
		return Info{}, fmt.Errorf("failed to write snapshot %s: %w", name, err)
	}

	s.logger.Info("saved snapshot",
		zap.String("op", "snapshot.FileStore.Save"),
		zap.String("name", name),
		zap.Int("version", snap.Version),
	)
	return snap.Info, nil
}

// List returns every snapshot, most recently updated first.
func (s *FileStore) List(_ context.Context) ([]Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory %s: %w", s.dir, err)
	}

	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != fileExtension {
			continue
		}
		snap, err := s.read(strings.TrimSuffix(name, fileExtension))
		if err != nil {
			s.logger.Warn("skipping unreadable snapshot",
				zap.String("op", "snapshot.FileStore.List"),
				zap.String("file", name),
				zap.Error(err),
			)
			continue
		}
		infos = append(infos, snap.Info)
	}

	sortNewestFirst(infos)
	return infos, nil
}

// Load returns the snapshot stored under name.
func (s *FileStore) Load(_ context.Context, name string) (Snapshot, error) {
	if err := validation.ValidateSnapshotName(name); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(name)
}

// Delete removes the snapshot stored under name.
func (s *FileStore) Delete(_ context.Context, name string) error {
	if err := validation.ValidateSnapshotName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
	}

	s.logger.Info("deleted snapshot",
		zap.String("op", "snapshot.FileStore.Delete"),
		zap.String("name", name),
	)
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() {}

func (s *FileStore) read(name string) (Snapshot, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return Snapshot{}, fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot %s: %w", name, err)
	}
	return snap, nil
}

func sortNewestFirst(infos []Info) {
	sort.SliceStable(infos, func(i, j int) bool {
		if !infos[i].UpdatedAt.Equal(infos[j].UpdatedAt) {
			return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
		}
		return infos[i].Name < infos[j].Name
	})
}
