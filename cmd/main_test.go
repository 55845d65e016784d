package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rearcam/internal/core/capture"
	"rearcam/internal/ui/preferences"
)

func TestRootCommandFlags(t *testing.T) {
	t.Parallel()

	command := newRootCommand()
	for _, name := range []string{"device", "media-dir", "log-level", "mode", "no-tray", "minimized"} {
		require.NotNil(t, command.Flags().Lookup(name), name)
	}
	require.Equal(t, "rearcam", command.Use)
}

func TestOptionsApplyOnlyChangedFlags(t *testing.T) {
	t.Parallel()

	command := newRootCommand()
	flags := command.Flags()
	require.NoError(t, flags.Parse([]string{"--device", "/dev/video2", "--mode", "video"}))

	opts := &options{}
	opts.device, _ = flags.GetString("device")
	opts.mode, _ = flags.GetString("mode")

	settings := preferences.DefaultSettings()
	settings.MediaDir = "/saved/media"
	applied := opts.apply(settings, flags)

	require.Equal(t, "/dev/video2", applied.DevicePath)
	require.Equal(t, capture.ModeVideo, applied.CaptureMode)
	require.Equal(t, "/saved/media", applied.MediaDir)
	require.Equal(t, settings.LogLevel, applied.LogLevel)
}

func TestOptionsApplyIgnoresUnknownMode(t *testing.T) {
	t.Parallel()

	command := newRootCommand()
	flags := command.Flags()
	require.NoError(t, flags.Parse([]string{"--mode", "timelapse"}))

	opts := &options{mode: "timelapse"}
	applied := opts.apply(preferences.DefaultSettings(), flags)
	require.Equal(t, capture.ModePicture, applied.CaptureMode)
}
