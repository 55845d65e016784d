package preferences

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"rearcam/internal/core/capture"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Window handles the preferences UI.
type Window struct {
	window     fyne.Window
	settings   Settings
	onSave     func(Settings)
	mediaDir   *widget.Entry
	ffmpegPath *widget.Entry
	showHours  *widget.Check
	autostart  *widget.Check
	mode       *widget.Select
	logLevel   *widget.Select
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("RearCam Settings")

	mediaDir := widget.NewEntry()
	ffmpegPath := widget.NewEntry()
	showHours := widget.NewCheck("Show hours in recording timer", nil)
	autostart := widget.NewCheck("Start on login", nil)

	modes := make([]string, 0, len(capture.Modes()))
	for _, mode := range capture.Modes() {
		modes = append(modes, string(mode))
	}
	mode := widget.NewSelect(modes, nil)
	logLevel := widget.NewSelect(logLevels, nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Capture", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Media directory"),
		mediaDir,
		widget.NewLabel("Default capture mode"),
		mode,
		showHours,
		widget.NewLabelWithStyle("System", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("ffmpeg executable"),
		ffmpegPath,
		widget.NewLabel("Log level"),
		logLevel,
		autostart,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(420, 460))

	prefs := &Window{
		window:     window,
		onSave:     onSave,
		mediaDir:   mediaDir,
		ffmpegPath: ffmpegPath,
		showHours:  showHours,
		autostart:  autostart,
		mode:       mode,
		logLevel:   logLevel,
	}
	prefs.UpdateSettings(settings)

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	}
	window.SetCloseIntercept(window.Hide)

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// Settings returns the last saved settings.
func (prefs *Window) Settings() Settings {
	return prefs.settings
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.mediaDir.SetText(settings.MediaDir)
	prefs.ffmpegPath.SetText(settings.FFmpegPath)
	prefs.showHours.SetChecked(settings.ShowHours)
	prefs.autostart.SetChecked(settings.Autostart)
	prefs.mode.SetSelected(string(settings.CaptureMode))
	prefs.logLevel.SetSelected(settings.LogLevel)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if dir := strings.TrimSpace(prefs.mediaDir.Text); dir != "" {
		settings.MediaDir = dir
	}
	if path := strings.TrimSpace(prefs.ffmpegPath.Text); path != "" {
		settings.FFmpegPath = path
	}
	if mode, ok := capture.ParseMode(prefs.mode.Selected); ok {
		settings.CaptureMode = mode
	}
	if prefs.logLevel.Selected != "" {
		settings.LogLevel = prefs.logLevel.Selected
	}
	settings.ShowHours = prefs.showHours.Checked
	settings.Autostart = prefs.autostart.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}
