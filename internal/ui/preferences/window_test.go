package preferences

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/require"

	"rearcam/internal/core/capture"
)

func TestWindowSave(t *testing.T) {
	app := test.NewTempApp(t)

	var saved []Settings
	prefs := New(app, DefaultSettings(), func(settings Settings) {
		saved = append(saved, settings)
	})

	prefs.mediaDir.SetText("/captures")
	prefs.mode.SetSelected(string(capture.ModeVideo))
	prefs.logLevel.SetSelected("debug")
	prefs.showHours.SetChecked(false)
	prefs.autostart.SetChecked(true)
	prefs.handleSave()

	require.Len(t, saved, 1)
	require.Equal(t, "/captures", saved[0].MediaDir)
	require.Equal(t, capture.ModeVideo, saved[0].CaptureMode)
	require.Equal(t, "debug", saved[0].LogLevel)
	require.False(t, saved[0].ShowHours)
	require.True(t, saved[0].Autostart)
	require.Equal(t, saved[0], prefs.Settings())
}

func TestWindowSaveKeepsBlankFields(t *testing.T) {
	app := test.NewTempApp(t)

	defaults := DefaultSettings()
	var saved Settings
	prefs := New(app, defaults, func(settings Settings) { saved = settings })

	prefs.mediaDir.SetText("   ")
	prefs.ffmpegPath.SetText("")
	prefs.handleSave()

	require.Equal(t, defaults.MediaDir, saved.MediaDir)
	require.Equal(t, defaults.FFmpegPath, saved.FFmpegPath)
}
