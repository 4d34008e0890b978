// Package snapshot persists named assumption sets so a case can be restored
// and evaluated later exactly like fresh input.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/project-finance/internal/config"
	"github.com/iwvelando/project-finance/pkg/constants"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no snapshot has the requested name.
var ErrNotFound = errors.New("snapshot not found")

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Info describes a stored snapshot without its configuration.
type Info struct {
	ID        string    `yaml:"id" json:"id"`
	Name      string    `yaml:"name" json:"name"`
	Version   int       `yaml:"version" json:"version"`
	CreatedAt time.Time `yaml:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `yaml:"updatedAt" json:"updatedAt"`
}

// Snapshot is a stored configuration with its metadata.
type Snapshot struct {
	Info          `yaml:",inline"`
	Configuration config.Configuration `yaml:"configuration" json:"configuration"`
}

// Store keeps named snapshots. Saving under an existing name replaces the
// stored configuration and increments its version.
type Store interface {
	Save(ctx context.Context, name string, conf config.Configuration) (Info, error)
	// List returns every snapshot, most recently updated first.
	List(ctx context.Context) ([]Info, error)
	Load(ctx context.Context, name string) (Snapshot, error)
	Delete(ctx context.Context, name string) error
	Close()
}

// New opens the store selected by conf.
func New(ctx context.Context, logger *zap.Logger, conf config.SnapshotConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(conf.Backend)) {
	case "", BackendFile:
		dir := conf.Directory
		if dir == "" {
			dir = constants.DefaultSnapshotDir
		}
		return NewFileStore(logger, dir)
	case BackendPostgres:
		return NewPostgresStore(ctx, logger, conf.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", conf.Backend)
	}
}

// storable drops the parts of a configuration that describe the local
// installation rather than the case itself.
func storable(conf config.Configuration) config.Configuration {
	conf.Logging = config.LoggingConfig{}
	conf.Snapshots = config.SnapshotConfig{}
	return conf
}
