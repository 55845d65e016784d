package camview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"rearcam/internal/core/capture"
	"rearcam/internal/core/lifecycle"
	"rearcam/internal/core/model"
	"rearcam/internal/core/rectimer"
	"rearcam/internal/logger"
	"rearcam/internal/media"
	"rearcam/internal/ui/animation"
)

const (
	defaultToastDuration = 2 * time.Second
	thumbnailSize        = 38
)

var (
	overlayTextColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	recordDotColor   = color.NRGBA{R: 229, G: 62, B: 62, A: 255}
	toastBackground  = color.NRGBA{R: 0, G: 0, B: 0, A: 180}
)

// Config defines the camera window setup.
type Config struct {
	Title         string
	MediaDir      string
	Mode          capture.Mode
	OfflineIcon   fyne.Resource
	ToastDuration time.Duration
	Engine        *animation.Engine
	Logger        *zap.SugaredLogger
}

// Callbacks defines user actions raised by the window.
type Callbacks struct {
	OnCapture     func(mode capture.Mode)
	OnModeChanged func(mode capture.Mode)
	OnResolution  func()
	OnDevice      func()
	OnPlayMic     func()
	OnSettings    func()
}

// Window is the main camera view. It renders lifecycle and capture state
// and is safe to drive from any goroutine.
type Window struct {
	app       fyne.App
	window    fyne.Window
	engine    *animation.Engine
	log       *zap.SugaredLogger
	callbacks Callbacks
	toastFor  time.Duration

	mu         sync.Mutex
	mode       capture.Mode
	mediaDir   string
	recentPath string

	toastGeneration atomic.Uint64

	preview      *canvas.Image
	offline      *fyne.Container
	fpsLabel     *widget.Label
	toolbar      *fyne.Container
	modeSelect   *widget.RadioGroup
	shutter      *widget.Button
	shutterScale *scaleLayout
	shutterBox   *fyne.Container
	shutterDim   *canvas.Rectangle
	recording    *fyne.Container
	recordDot    *canvas.Circle
	recordTime   *canvas.Text
	tip          *canvas.Rectangle
	recent       *fyne.Container
	recentImage  *canvas.Image
	toast        *fyne.Container
	toastLabel   *widget.Label
}

// New creates the camera window.
func New(app fyne.App, config Config, callbacks Callbacks) *Window {
	if config.Title == "" {
		config.Title = "RearCam"
	}
	if config.ToastDuration <= 0 {
		config.ToastDuration = defaultToastDuration
	}
	if config.Engine == nil {
		config.Engine = animation.New(animation.DefaultConfig())
	}
	if config.Mode == "" {
		config.Mode = capture.ModePicture
	}

	view := &Window{
		app:       app,
		window:    app.NewWindow(config.Title),
		engine:    config.Engine,
		log:       logger.OrNop(config.Logger),
		callbacks: callbacks,
		toastFor:  config.ToastDuration,
		mode:      config.Mode,
		mediaDir:  config.MediaDir,
	}
	if app.Icon() != nil {
		view.window.SetIcon(app.Icon())
	}

	view.window.SetContent(view.build(config))
	view.window.Resize(fyne.NewSize(960, 600))
	return view
}

func (view *Window) build(config Config) fyne.CanvasObject {
	background := canvas.NewRectangle(color.Black)

	view.preview = canvas.NewImageFromImage(nil)
	view.preview.FillMode = canvas.ImageFillContain
	view.preview.ScaleMode = canvas.ImageScaleFastest

	offlineIcon := canvas.NewImageFromResource(config.OfflineIcon)
	offlineIcon.FillMode = canvas.ImageFillContain
	offlineIcon.SetMinSize(fyne.NewSize(96, 96))
	offlineText := canvas.NewText("camera offline", overlayTextColor)
	offlineText.Alignment = fyne.TextAlignCenter
	view.offline = container.NewCenter(container.NewVBox(offlineIcon, offlineText))

	view.fpsLabel = widget.NewLabel("")
	view.fpsLabel.TextStyle = fyne.TextStyle{Monospace: true}
	view.fpsLabel.Hide()

	view.recordDot = canvas.NewCircle(recordDotColor)
	view.recordDot.Hide()
	view.recordTime = canvas.NewText(rectimer.Format(0, true), overlayTextColor)
	view.recordTime.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	view.recording = container.NewHBox(
		container.NewGridWrap(fyne.NewSize(14, 14), view.recordDot),
		view.recordTime,
	)
	view.recording.Hide()

	view.toolbar = view.buildToolbar()

	view.toastLabel = widget.NewLabel("")
	view.toastLabel.Wrapping = fyne.TextWrapWord
	view.toast = container.NewStack(canvas.NewRectangle(toastBackground), container.NewPadded(view.toastLabel))
	view.toast.Hide()

	top := container.NewHBox(view.fpsLabel, layout.NewSpacer(), view.recording)
	bottom := container.NewVBox(container.NewCenter(view.toast), view.toolbar)
	chrome := container.NewBorder(container.NewPadded(top), container.NewPadded(bottom), nil, nil)

	view.tip = canvas.NewRectangle(color.Transparent)
	view.tip.Hide()

	return container.NewStack(background, view.preview, view.offline, chrome, view.tip)
}

func (view *Window) buildToolbar() *fyne.Container {
	modes := make([]string, 0, len(capture.Modes()))
	for _, mode := range capture.Modes() {
		modes = append(modes, string(mode))
	}
	view.modeSelect = widget.NewRadioGroup(modes, nil)
	view.modeSelect.Horizontal = true
	view.modeSelect.Required = true
	view.modeSelect.SetSelected(string(view.mode))
	view.modeSelect.OnChanged = view.handleModeChanged

	view.shutter = widget.NewButtonWithIcon("", theme.MediaPhotoIcon(), view.handleShutter)
	view.shutter.Importance = widget.HighImportance
	view.shutterDim = canvas.NewRectangle(color.Transparent)
	view.shutterScale = &scaleLayout{scale: 1}
	view.shutterBox = container.New(view.shutterScale, container.NewStack(view.shutter, view.shutterDim))

	view.recentImage = canvas.NewImageFromImage(nil)
	view.recentImage.FillMode = canvas.ImageFillContain
	recentButton := widget.NewButton("", view.openRecent)
	view.recent = container.NewGridWrap(fyne.NewSize(thumbnailSize+10, thumbnailSize+10),
		container.NewStack(recentButton, view.recentImage))
	view.recent.Hide()

	return container.NewHBox(
		view.recent,
		view.modeSelect,
		layout.NewSpacer(),
		view.shutterBox,
		layout.NewSpacer(),
		widget.NewButtonWithIcon("", theme.ViewFullScreenIcon(), invoke(view.callbacks.OnResolution)),
		widget.NewButtonWithIcon("", theme.ComputerIcon(), invoke(view.callbacks.OnDevice)),
		widget.NewButtonWithIcon("", theme.VolumeUpIcon(), invoke(view.callbacks.OnPlayMic)),
		widget.NewButtonWithIcon("", theme.SettingsIcon(), invoke(view.callbacks.OnSettings)),
	)
}

// Window returns the underlying Fyne window.
func (view *Window) Window() fyne.Window {
	return view.window
}

// Show displays and focuses the window.
func (view *Window) Show() {
	view.window.Show()
	view.window.RequestFocus()
}

// Mode returns the selected capture mode.
func (view *Window) Mode() capture.Mode {
	view.mu.Lock()
	defer view.mu.Unlock()
	return view.mode
}

// SetMode selects a capture mode without raising OnModeChanged.
func (view *Window) SetMode(mode capture.Mode) {
	view.mu.Lock()
	view.mode = mode
	view.mu.Unlock()

	fyne.Do(func() {
		handler := view.modeSelect.OnChanged
		view.modeSelect.OnChanged = nil
		view.modeSelect.SetSelected(string(mode))
		view.modeSelect.OnChanged = handler
		view.applyModeIcon(mode)
	})
}

// MediaDir returns the directory scanned for recent media.
func (view *Window) MediaDir() string {
	view.mu.Lock()
	defer view.mu.Unlock()
	return view.mediaDir
}

// SetMediaDir changes the directory scanned for recent media.
func (view *Window) SetMediaDir(dir string) {
	view.mu.Lock()
	view.mediaDir = dir
	view.mu.Unlock()
}

// SetOfflineIndicatorVisible shows or hides the offline logo.
func (view *Window) SetOfflineIndicatorVisible(visible bool) {
	fyne.Do(func() {
		setVisible(view.offline, visible)
		if visible {
			view.preview.Image = nil
			view.preview.Refresh()
		}
	})
}

// SetTelemetryVisible shows or hides the frame-rate label.
func (view *Window) SetTelemetryVisible(visible bool) {
	fyne.Do(func() {
		setVisible(view.fpsLabel, visible)
	})
}

// Notify shows a lifecycle notification as a toast.
func (view *Window) Notify(notification lifecycle.Notification) {
	importance := widget.SuccessImportance
	if notification.Kind == lifecycle.NotifyFailure {
		importance = widget.DangerImportance
	}
	view.showToast(notification.Text, importance)
}

// SetToolbarVisible shows or hides the capture toolbar.
func (view *Window) SetToolbarVisible(visible bool) {
	fyne.Do(func() {
		setVisible(view.toolbar, visible)
	})
}

// SetRecordingVisible shows or hides the recording timer layout.
func (view *Window) SetRecordingVisible(visible bool) {
	fyne.Do(func() {
		setVisible(view.recording, visible)
	})
}

// ShowTip flashes the shutter overlay.
func (view *Window) ShowTip() {
	view.engine.Flash(context.Background(), func(step animation.Step) {
		fyne.Do(func() {
			view.tip.FillColor = color.NRGBA{R: 255, G: 255, B: 255, A: alphaByte(step.Alpha)}
			setVisible(view.tip, step.Alpha > 0)
			view.tip.Refresh()
		})
	})
}

// Toast shows a transient message.
func (view *Window) Toast(message string) {
	view.showToast(message, widget.MediumImportance)
}

// ShowRecentMedia refreshes the thumbnail with the newest file of kind.
func (view *Window) ShowRecentMedia(kind model.MediaKind) {
	dir := view.MediaDir()
	go func() {
		path, err := media.FindRecent(dir, kind)
		if err != nil {
			if !errors.Is(err, media.ErrNoMedia) {
				view.log.Warnw("find recent media failed", "dir", dir, "error", err)
			}
			fyne.Do(func() { view.recent.Hide() })
			return
		}

		var thumbnail image.Image
		if media.Matches(path, model.MediaImage) {
			thumbnail, err = media.Thumbnail(path, thumbnailSize)
			if err != nil {
				view.log.Warnw("thumbnail failed", "path", path, "error", err)
			}
		}

		view.mu.Lock()
		view.recentPath = path
		view.mu.Unlock()

		fyne.Do(func() {
			if thumbnail != nil {
				view.recentImage.Resource = nil
				view.recentImage.Image = thumbnail
			} else {
				view.recentImage.Image = nil
				view.recentImage.Resource = theme.FileVideoIcon()
			}
			view.recentImage.Refresh()
			view.recent.Show()
		})
	}()
}

// RecentPath returns the media file behind the thumbnail.
func (view *Window) RecentPath() string {
	view.mu.Lock()
	defer view.mu.Unlock()
	return view.recentPath
}

// SetFrame renders a decoded preview frame.
func (view *Window) SetFrame(frame image.Image) {
	fyne.Do(func() {
		view.preview.Image = frame
		view.preview.Refresh()
	})
}

// SetFrameRate updates the frame-rate label.
func (view *Window) SetFrameRate(fps int) {
	fyne.Do(func() {
		view.fpsLabel.SetText(fmt.Sprintf("frame rate:  %d fps", fps))
	})
}

// HandleTimerEvent renders one recording timer event.
func (view *Window) HandleTimerEvent(event rectimer.Event) {
	fyne.Do(func() {
		view.recordTime.Text = event.Display
		view.recordTime.Refresh()
		setVisible(view.recordDot, event.Blink)
		if !event.Visible {
			view.recording.Hide()
			view.toolbar.Show()
		}
	})
}

// Watch renders timer events until the channel closes or ctx ends.
func (view *Window) Watch(ctx context.Context, events <-chan rectimer.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			view.HandleTimerEvent(event)
		}
	}
}

func (view *Window) handleShutter() {
	view.engine.Pulse(context.Background(), func(step animation.Step) {
		fyne.Do(func() {
			view.shutterScale.scale = step.Scale
			view.shutterDim.FillColor = color.NRGBA{A: alphaByte(1 - step.Alpha)}
			view.shutterDim.Refresh()
			view.shutterBox.Refresh()
		})
	})
	if view.callbacks.OnCapture != nil {
		view.callbacks.OnCapture(view.Mode())
	}
}

func (view *Window) handleModeChanged(selected string) {
	mode, ok := capture.ParseMode(selected)
	if !ok {
		return
	}
	view.mu.Lock()
	view.mode = mode
	view.mu.Unlock()

	view.applyModeIcon(mode)
	if view.callbacks.OnModeChanged != nil {
		view.callbacks.OnModeChanged(mode)
	}
}

func (view *Window) applyModeIcon(mode capture.Mode) {
	switch mode {
	case capture.ModeVideo:
		view.shutter.SetIcon(theme.MediaRecordIcon())
	case capture.ModeAudio:
		view.shutter.SetIcon(theme.MediaMusicIcon())
	default:
		view.shutter.SetIcon(theme.MediaPhotoIcon())
	}
}

func (view *Window) openRecent() {
	path := view.RecentPath()
	if path == "" {
		return
	}
	if err := view.app.OpenURL(&url.URL{Scheme: "file", Path: path}); err != nil {
		view.log.Warnw("open recent media failed", "path", path, "error", err)
		view.Toast(err.Error())
	}
}

func (view *Window) showToast(message string, importance widget.Importance) {
	generation := view.toastGeneration.Add(1)
	fyne.Do(func() {
		view.toastLabel.Importance = importance
		view.toastLabel.SetText(message)
		view.toast.Show()
	})
	time.AfterFunc(view.toastFor, func() {
		if view.toastGeneration.Load() != generation {
			return
		}
		fyne.Do(func() {
			if view.toastGeneration.Load() == generation {
				view.toast.Hide()
			}
		})
	})
}

func setVisible(object fyne.CanvasObject, visible bool) {
	if visible {
		object.Show()
		return
	}
	object.Hide()
}

func alphaByte(alpha float32) uint8 {
	if alpha <= 0 {
		return 0
	}
	if alpha >= 1 {
		return 255
	}
	return uint8(alpha * 255)
}

func invoke(handler func()) func() {
	return func() {
		if handler != nil {
			handler()
		}
	}
}
