package platform

import (
	"fmt"
	"os"
	"strings"
)

// Service defines OS-specific helpers needed by RearCam.
type Service interface {
	GetConfigDir() (string, error)
	EnableAutostart(appName, execPath string, args ...string) error
	DisableAutostart(appName string) error
	AutostartEnabled(appName string) (bool, error)
}

type platformService struct {
	configDir string
}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// NewServiceAt returns a service rooted at a fixed configuration directory.
func NewServiceAt(configDir string) Service {
	return &platformService{configDir: configDir}
}

// GetConfigDir returns the OS-standard configuration directory.
func (service *platformService) GetConfigDir() (string, error) {
	if service.configDir != "" {
		return service.configDir, nil
	}

	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

func autostartSlug(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		name = "rearcam"
	}
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "-")
}
