package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"rearcam/internal/core/capture"
	"rearcam/internal/core/model"
	"rearcam/internal/ui/preferences"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	Device      string `yaml:"device"`
	Resolution  string `yaml:"resolution"`
	MediaDir    string `yaml:"media_dir"`
	FFmpegPath  string `yaml:"ffmpeg_path"`
	ShowHours   *bool  `yaml:"show_hours"`
	CaptureMode string `yaml:"capture_mode"`
	Autostart   bool   `yaml:"autostart"`
	LogLevel    string `yaml:"log_level"`
}

// Store reads and writes the settings file.
type Store struct {
	path string
}

// NewStore returns a store for <configDir>/<appName>/settings.yaml.
func NewStore(configDir, appName string) *Store {
	return &Store{path: filepath.Join(configDir, appName, settingsFileName)}
}

// Path returns the settings file location.
func (store *Store) Path() string {
	return store.path
}

// Load reads user preferences from YAML.
// If the file does not exist, default settings are returned.
func (store *Store) Load() (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// Save writes user preferences to YAML.
func (store *Store) Save(settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	showHours := settings.ShowHours
	fileData := yamlSettings{
		Device:      settings.DevicePath,
		MediaDir:    settings.MediaDir,
		FFmpegPath:  settings.FFmpegPath,
		ShowHours:   &showHours,
		CaptureMode: string(settings.CaptureMode),
		Autostart:   settings.Autostart,
		LogLevel:    settings.LogLevel,
	}
	if settings.Resolution.Valid() {
		fileData.Resolution = fmt.Sprintf("%dx%d", settings.Resolution.Width, settings.Resolution.Height)
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(store.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if device := strings.TrimSpace(fileData.Device); device != "" {
		settings.DevicePath = device
	}
	if fileData.Resolution != "" {
		if size, err := model.ParsePreviewSize(fileData.Resolution); err == nil {
			settings.Resolution = size
		}
	}
	if dir := strings.TrimSpace(fileData.MediaDir); dir != "" {
		settings.MediaDir = dir
	}
	if path := strings.TrimSpace(fileData.FFmpegPath); path != "" {
		settings.FFmpegPath = path
	}
	if fileData.ShowHours != nil {
		settings.ShowHours = *fileData.ShowHours
	}
	if mode, ok := capture.ParseMode(fileData.CaptureMode); ok {
		settings.CaptureMode = mode
	}
	if level := strings.TrimSpace(fileData.LogLevel); level != "" {
		settings.LogLevel = level
	}

	settings.Autostart = fileData.Autostart
}
