package preferences

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rearcam/internal/core/capture"
	"rearcam/internal/core/model"
)

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	require.Equal(t, "/dev/video0", settings.DevicePath)
	require.Equal(t, capture.ModePicture, settings.CaptureMode)
	require.True(t, settings.ShowHours)
	require.NotEmpty(t, settings.MediaDir)
}

func TestSettingsConversions(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	settings.DevicePath = "/dev/video2"
	settings.Resolution = model.PreviewSize{Width: 640, Height: 480}
	settings.ShowHours = false

	timerConfig := settings.TimerConfig(nil)
	require.Equal(t, time.Second, timerConfig.TickInterval)
	require.False(t, timerConfig.ShowHours)

	sessionConfig := settings.SessionConfig(nil)
	require.Equal(t, model.Device{ID: "2", Path: "/dev/video2"}, sessionConfig.Device)
	require.Equal(t, settings.Resolution, sessionConfig.Size)
	require.Equal(t, settings.MediaDir, sessionConfig.MediaDir)
}
