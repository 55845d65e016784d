package overlay

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"rearcam/internal/core/rectimer"
)

// Config defines badge visuals.
type Config struct {
	Opacity uint8
	Title   string
}

// Window is a small always-available recording badge shown while the main
// window is hidden and a recording is running.
type Window struct {
	window     fyne.Window
	config     Config
	background *canvas.Rectangle
	dot        *canvas.Circle
	timeLabel  *canvas.Text
	stopButton *widget.Button
	onStop     func()
	visible    bool
}

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates the recording badge.
func New(app fyne.App, config Config) *Window {
	if config.Title == "" {
		config.Title = "RearCam recording"
	}

	window := app.NewWindow(config.Title)
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{A: config.Opacity})
	dot := canvas.NewCircle(color.NRGBA{R: 229, G: 62, B: 62, A: 255})
	dot.Hide()

	timeLabel := canvas.NewText(rectimer.Format(0, true), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	timeLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timeLabel.TextSize = 18

	badge := &Window{
		window:     window,
		config:     config,
		background: background,
		dot:        dot,
		timeLabel:  timeLabel,
	}
	badge.stopButton = widget.NewButtonWithIcon("", theme.MediaStopIcon(), func() {
		if badge.onStop != nil {
			badge.onStop()
		}
	})

	row := container.NewHBox(
		container.NewCenter(container.NewGridWrap(fyne.NewSize(12, 12), dot)),
		container.NewCenter(timeLabel),
		badge.stopButton,
	)
	window.SetContent(container.NewStack(background, container.NewPadded(row)))
	window.SetCloseIntercept(badge.Hide)

	return badge
}

// SetOnStop sets the stop handler.
func (badge *Window) SetOnStop(handler func()) {
	badge.onStop = handler
}

// Show displays the badge.
func (badge *Window) Show() {
	badge.visible = true
	badge.window.Show()
	badge.applyNativeOpacity(badge.config.Opacity)
}

// Hide closes the badge.
func (badge *Window) Hide() {
	badge.visible = false
	badge.window.Hide()
}

// Visible reports whether the badge is shown.
func (badge *Window) Visible() bool {
	return badge.visible
}

// HandleTimerEvent renders a recording timer event. Must run on the UI goroutine.
func (badge *Window) HandleTimerEvent(event rectimer.Event) {
	badge.timeLabel.Text = event.Display
	badge.timeLabel.Refresh()
	if event.Blink {
		badge.dot.Show()
	} else {
		badge.dot.Hide()
	}
	if !event.Visible && badge.visible {
		badge.Hide()
	}
}

// UpdateConfig updates badge visuals.
func (badge *Window) UpdateConfig(config Config) {
	badge.config = config
	badge.background.FillColor = color.NRGBA{A: config.Opacity}
	canvas.Refresh(badge.background)
	if badge.visible {
		badge.applyNativeOpacity(config.Opacity)
	}
}
