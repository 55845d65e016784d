//go:build linux

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (service *platformService) EnableAutostart(appName, execPath string, args ...string) error {
	if appName == "" {
		return fmt.Errorf("enable autostart: app name is empty")
	}
	if execPath == "" {
		return fmt.Errorf("enable autostart: exec path is empty")
	}

	desktopFilePath, err := service.desktopFilePath(appName)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(desktopFilePath), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create autostart dir: %w", err)
	}

	if err := os.WriteFile(desktopFilePath, []byte(buildDesktopEntry(appName, execPath, args)), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write desktop entry: %w", err)
	}

	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	if appName == "" {
		return fmt.Errorf("disable autostart: app name is empty")
	}

	desktopFilePath, err := service.desktopFilePath(appName)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}

	if err := os.Remove(desktopFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disable autostart: remove desktop entry: %w", err)
	}

	return nil
}

func (service *platformService) AutostartEnabled(appName string) (bool, error) {
	desktopFilePath, err := service.desktopFilePath(appName)
	if err != nil {
		return false, fmt.Errorf("check autostart: %w", err)
	}

	if _, err := os.Stat(desktopFilePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("check autostart: %w", err)
	}
	return true, nil
}

func (service *platformService) desktopFilePath(appName string) (string, error) {
	configDir, err := service.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "autostart", autostartSlug(appName)+".desktop"), nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}

func buildDesktopEntry(appName, execPath string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, part := range append([]string{execPath}, args...) {
		if strings.Contains(part, " ") && !strings.HasPrefix(part, `"`) {
			part = `"` + part + `"`
		}
		parts = append(parts, part)
	}

	return fmt.Sprintf(
		`[Desktop Entry]
Type=Application
Name=%s
Comment=USB camera viewer
Exec=%s
Categories=AudioVideo;Video;
X-GNOME-Autostart-enabled=true
Terminal=false
`,
		appName,
		strings.Join(parts, " "),
	)
}
