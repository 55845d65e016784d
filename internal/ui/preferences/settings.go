package preferences

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"rearcam/internal/camera"
	"rearcam/internal/core/capture"
	"rearcam/internal/core/model"
	"rearcam/internal/core/rectimer"
)

// Settings defines editable user preferences.
type Settings struct {
	DevicePath  string
	Resolution  model.PreviewSize
	MediaDir    string
	FFmpegPath  string
	ShowHours   bool
	CaptureMode capture.Mode
	Autostart   bool
	LogLevel    string
}

// DefaultSettings returns default settings for RearCam.
func DefaultSettings() Settings {
	return Settings{
		DevicePath:  "/dev/video0",
		Resolution:  camera.DefaultPreviewSize,
		MediaDir:    defaultMediaDir(),
		FFmpegPath:  "ffmpeg",
		ShowHours:   true,
		CaptureMode: capture.ModePicture,
		Autostart:   false,
		LogLevel:    "info",
	}
}

// TimerConfig converts settings to the recording timer configuration.
func (settings Settings) TimerConfig(log *zap.SugaredLogger) rectimer.Config {
	return rectimer.Config{
		TickInterval: time.Second,
		ShowHours:    settings.ShowHours,
		Logger:       log,
	}
}

// SessionConfig converts settings to a camera session configuration.
func (settings Settings) SessionConfig(log *zap.SugaredLogger) camera.Config {
	device := model.Device{Path: settings.DevicePath}
	if base := filepath.Base(settings.DevicePath); len(base) > len("video") {
		device.ID = base[len("video"):]
	}
	return camera.Config{
		Device:     device,
		Size:       settings.Resolution,
		MediaDir:   settings.MediaDir,
		FFmpegPath: settings.FFmpegPath,
		Logger:     log,
	}
}

func defaultMediaDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "RearCam"
	}
	return filepath.Join(home, "Pictures", "RearCam")
}
