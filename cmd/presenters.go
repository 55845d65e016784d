package main

import (
	"fyne.io/fyne/v2"

	"rearcam/internal/ui/camview"
)

// recordingView mirrors recording state into the tray and the badge.
type recordingView struct {
	*camview.Window
	app *application
}

func (view *recordingView) SetRecordingVisible(visible bool) {
	view.Window.SetRecordingVisible(visible)
	fyne.Do(func() {
		view.app.setRecording(visible)
	})
}

// statusPresenter mirrors camera lifecycle into the tray.
type statusPresenter struct {
	*camview.Window
	app *application
}

func (presenter *statusPresenter) SetTelemetryVisible(visible bool) {
	presenter.Window.SetTelemetryVisible(visible)
	if presenter.app.tray == nil {
		return
	}
	fyne.Do(func() {
		status := "offline"
		if visible {
			status = "live"
		}
		presenter.app.tray.SetStatus(status)
		presenter.app.tray.SetLive(visible)
	})
}
