package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/project-finance/internal/config"
	"github.com/iwvelando/project-finance/pkg/constants"
	"gopkg.in/yaml.v3"
)

// DefaultReadTimeout bounds how long the server waits for a request.
const DefaultReadTimeout = 15 * time.Second

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address       string                `yaml:"address"`
	MaxUploadSize string                `yaml:"maxUploadSize"`
	ReadTimeout   string                `yaml:"readTimeout"`
	Logging       config.LoggingConfig  `yaml:"logging"`
	Snapshots     config.SnapshotConfig `yaml:"snapshots"`

	uploadSizeBytes int64
	readTimeout     time.Duration
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read server config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse server config: %w", err)
			}
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UploadSizeBytes returns the configured upload size in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// SetUploadSizeBytes overrides the configured upload size.
func (c *Config) SetUploadSizeBytes(size int64) {
	if size > 0 {
		c.uploadSizeBytes = size
		c.MaxUploadSize = strconv.FormatInt(size, 10)
	}
}

// ReadTimeoutDuration returns the parsed read timeout.
func (c *Config) ReadTimeoutDuration() time.Duration {
	return c.readTimeout
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}

	size, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = size
	c.MaxUploadSize = strconv.FormatInt(size, 10)

	c.readTimeout = DefaultReadTimeout
	if timeout := strings.TrimSpace(c.ReadTimeout); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid read timeout %q: %w", c.ReadTimeout, err)
		}
		if parsed > 0 {
			c.readTimeout = parsed
		}
	}

	if c.Snapshots.Backend == "" {
		c.Snapshots.Backend = "file"
	}
	if c.Snapshots.Directory == "" {
		c.Snapshots.Directory = constants.DefaultSnapshotDir
	}
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	idx := strings.LastIndexFunc(trimmed, unicode.IsDigit) + 1
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(trimmed[:idx])
	unitPart := strings.TrimSpace(trimmed[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	multipliers := map[string]int64{
		"": 1, "B": 1,
		"K": 1 << 10, "KB": 1 << 10,
		"M": 1 << 20, "MB": 1 << 20,
		"G": 1 << 30, "GB": 1 << 30,
	}
	multiplier, ok := multipliers[unitPart]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 || (n != 0 && result/n != multiplier) {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
