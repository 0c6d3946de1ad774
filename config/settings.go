// Package config manages the JSON settings file.
package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Metadata MetadataSettings `json:"metadata"`
	Database DatabaseSettings `json:"database"`
	Sessions SessionSettings  `json:"sessions"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type MetadataSettings struct {
	TMDBAPIKey            string `json:"tmdbApiKey"`
	Language              string `json:"language"`
	RequestTimeoutSeconds int    `json:"requestTimeoutSeconds"`
}

type DatabaseSettings struct {
	Path string `json:"path"`
}

type SessionSettings struct {
	TTLHours int `json:"ttlHours"`
}

// LogConfig controls the rotating log file. An empty File logs to
// stderr only.
type LogConfig struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns the configuration written on first run.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host: "0.0.0.0",
			Port: 8484,
		},
		Metadata: MetadataSettings{
			Language:              "en-US",
			RequestTimeoutSeconds: 10,
		},
		Database: DatabaseSettings{
			Path: "data/watchhive.db",
		},
		Sessions: SessionSettings{
			TTLHours: 24 * 30,
		},
		Log: LogConfig{
			MaxSize:    10,
			MaxAge:     14,
			MaxBackups: 3,
			Compress:   true,
		},
	}
}

// Manager loads and saves the settings file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir creates the directory holding the settings file.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings from disk, creating the file with defaults when it
// does not exist yet. Missing fields in an older file are backfilled
// with defaults.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return Settings{}, err
	}

	s := DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}

	if s.Server.Port == 0 {
		s.Server.Port = 8484
	}
	if strings.TrimSpace(s.Database.Path) == "" {
		s.Database.Path = "data/watchhive.db"
	}
	if s.Metadata.RequestTimeoutSeconds <= 0 {
		s.Metadata.RequestTimeoutSeconds = 10
	}
	if s.Sessions.TTLHours <= 0 {
		s.Sessions.TTLHours = 24 * 30
	}
	return s, nil
}

// Save writes settings atomically via a temp file rename.
func (m *Manager) Save(s Settings) error {
	if err := m.EnsureDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}
