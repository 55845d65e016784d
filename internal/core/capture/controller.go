package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"rearcam/internal/core/model"
	"rearcam/internal/logger"
)

var (
	// ErrNoPreviewSizes is returned when the session reports no resolutions.
	ErrNoPreviewSizes = errors.New("no preview sizes")
	// ErrNoDevices is returned when no capture device is present.
	ErrNoDevices = errors.New("no capture devices")
	// ErrChoiceOutOfRange is returned for a picker index outside the list.
	ErrChoiceOutOfRange = errors.New("choice out of range")
)

const unknownError = "unknown error"

// Session is the camera session surface the controller drives.
type Session interface {
	IsOpened() bool
	CaptureImage(callback model.CaptureCallback)
	CaptureVideoStart(callback model.CaptureCallback)
	CaptureVideoStop()
	CaptureAudioStart(callback model.CaptureCallback)
	CaptureAudioStop()
	StartPlayMic(callback model.PlayCallback)
	StopPlayMic()
	PreviewSizes() []model.PreviewSize
	CurrentPreviewSize() (model.PreviewSize, bool)
	UpdateResolution(size model.PreviewSize) error
	Devices(ctx context.Context) ([]model.Device, error)
	CurrentDevice() (model.Device, bool)
	SwitchDevice(ctx context.Context, device model.Device) error
}

// View is the presentation surface for capture state.
// Implementations must be safe to call from any goroutine.
type View interface {
	SetToolbarVisible(visible bool)
	SetRecordingVisible(visible bool)
	ShowTip()
	Toast(message string)
	ShowRecentMedia(kind model.MediaKind)
}

// Timer is the recording timer the controller starts and stops.
type Timer interface {
	Start()
	Stop()
}

// Choice is a single-choice list with the current selection, -1 for none.
type Choice struct {
	Items    []string
	Selected int
}

// Controller routes capture clicks to the session and keeps the view in sync.
type Controller struct {
	mu         sync.Mutex
	session    Session
	view       View
	timer      Timer
	log        *zap.SugaredLogger
	recording  Mode
	attempt    uint64
	playingMic bool

	onResolution func(model.PreviewSize)
	onDevice     func(model.Device)
}

// NewController creates a capture controller.
func NewController(session Session, view View, timer Timer, log *zap.SugaredLogger) *Controller {
	return &Controller{
		session: session,
		view:    view,
		timer:   timer,
		log:     logger.OrNop(log),
	}
}

// SetOnResolutionSelected registers a hook fired after a resolution change succeeds.
func (controller *Controller) SetOnResolutionSelected(handler func(model.PreviewSize)) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.onResolution = handler
}

// SetOnDeviceSelected registers a hook fired after a device switch succeeds.
func (controller *Controller) SetOnDeviceSelected(handler func(model.Device)) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.onDevice = handler
}

// Capturing reports whether a video or audio recording is in progress.
func (controller *Controller) Capturing() bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.recording != ""
}

// PlayingMic reports whether microphone playback is active.
func (controller *Controller) PlayingMic() bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.playingMic
}

// OnViewClick handles the shutter button for the given mode.
func (controller *Controller) OnViewClick(mode Mode) {
	if !controller.session.IsOpened() {
		// A recording can outlive the preview; its stop must still get through.
		if active := controller.activeRecording(); active != "" && mode != ModePicture {
			controller.stopRecording(active)
			return
		}
		controller.view.Toast("camera not worked!")
		return
	}
	switch mode {
	case ModePicture:
		controller.captureImage()
	case ModeAudio:
		controller.toggleRecording(ModeAudio)
	default:
		controller.toggleRecording(ModeVideo)
	}
}

// TogglePlayMic starts microphone playback, or stops it when active.
func (controller *Controller) TogglePlayMic() {
	controller.mu.Lock()
	playing := controller.playingMic
	controller.mu.Unlock()

	if playing {
		controller.session.StopPlayMic()
		return
	}
	controller.session.StartPlayMic(model.PlayCallback{
		OnBegin: func() { controller.setPlayingMic(true) },
		OnError: func(message string) {
			controller.log.Warnw("mic playback failed", "error", message)
			controller.setPlayingMic(false)
		},
		OnComplete: func() { controller.setPlayingMic(false) },
	})
}

// Shutdown stops any recording or playback in flight.
func (controller *Controller) Shutdown() {
	controller.mu.Lock()
	recording := controller.recording
	playing := controller.playingMic
	controller.mu.Unlock()

	switch recording {
	case ModeVideo:
		controller.session.CaptureVideoStop()
	case ModeAudio:
		controller.session.CaptureAudioStop()
	}
	if playing {
		controller.session.StopPlayMic()
	}
	controller.timer.Stop()
}

// ResolutionChoice lists preview sizes with the current one selected.
func (controller *Controller) ResolutionChoice() (Choice, error) {
	sizes := controller.session.PreviewSizes()
	if len(sizes) == 0 {
		controller.view.Toast("Get camera preview size failed")
		return Choice{}, ErrNoPreviewSizes
	}
	current, hasCurrent := controller.session.CurrentPreviewSize()
	choice := Choice{Selected: -1, Items: make([]string, 0, len(sizes))}
	for index, size := range sizes {
		if hasCurrent && size == current {
			choice.Selected = index
		}
		choice.Items = append(choice.Items, size.String())
	}
	return choice, nil
}

// SelectResolution applies the preview size at index. Reselecting the
// current size is a no-op.
func (controller *Controller) SelectResolution(index int) error {
	sizes := controller.session.PreviewSizes()
	if index < 0 || index >= len(sizes) {
		return fmt.Errorf("select resolution %d: %w", index, ErrChoiceOutOfRange)
	}
	target := sizes[index]
	if current, ok := controller.session.CurrentPreviewSize(); ok && current == target {
		return nil
	}
	if err := controller.session.UpdateResolution(target); err != nil {
		controller.log.Errorw("update resolution failed", "size", target.String(), "error", err)
		controller.view.Toast(err.Error())
		return fmt.Errorf("select resolution %s: %w", target, err)
	}
	controller.log.Infow("resolution changed", "size", target.String())

	controller.mu.Lock()
	hook := controller.onResolution
	controller.mu.Unlock()
	if hook != nil {
		hook(target)
	}
	return nil
}

// DeviceChoice lists capture devices with the active one selected.
func (controller *Controller) DeviceChoice(ctx context.Context) (Choice, error) {
	devices, err := controller.devices(ctx)
	if err != nil {
		return Choice{}, err
	}
	current, hasCurrent := controller.session.CurrentDevice()
	choice := Choice{Selected: -1, Items: make([]string, 0, len(devices))}
	for index, device := range devices {
		if hasCurrent && sameDevice(device, current) {
			choice.Selected = index
		}
		choice.Items = append(choice.Items, device.Label())
	}
	return choice, nil
}

// SelectDevice switches to the device at index. Reselecting the active
// device is a no-op.
func (controller *Controller) SelectDevice(ctx context.Context, index int) error {
	devices, err := controller.devices(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(devices) {
		return fmt.Errorf("select device %d: %w", index, ErrChoiceOutOfRange)
	}
	target := devices[index]
	if current, ok := controller.session.CurrentDevice(); ok && sameDevice(current, target) {
		return nil
	}
	if err := controller.session.SwitchDevice(ctx, target); err != nil {
		controller.log.Errorw("switch device failed", "device", target.Path, "error", err)
		controller.view.Toast(err.Error())
		return fmt.Errorf("select device %s: %w", target.Path, err)
	}
	controller.log.Infow("device switched", "device", target.Path)

	controller.mu.Lock()
	hook := controller.onDevice
	controller.mu.Unlock()
	if hook != nil {
		hook(target)
	}
	return nil
}

func (controller *Controller) devices(ctx context.Context) ([]model.Device, error) {
	devices, err := controller.session.Devices(ctx)
	if err != nil {
		controller.log.Warnw("list devices failed", "error", err)
	}
	if err != nil || len(devices) == 0 {
		controller.view.Toast("Get usb device failed")
		if err != nil {
			return nil, fmt.Errorf("list devices: %w", err)
		}
		return nil, ErrNoDevices
	}
	return devices, nil
}

func (controller *Controller) captureImage() {
	controller.session.CaptureImage(model.CaptureCallback{
		OnBegin: controller.view.ShowTip,
		OnError: func(message string) {
			controller.log.Warnw("capture image failed", "error", message)
			controller.view.Toast(orDefault(message, unknownError))
		},
		OnComplete: func(path string) {
			controller.log.Infow("image captured", "path", path)
			controller.view.ShowRecentMedia(model.MediaImage)
		},
	})
}

// toggleRecording claims the recording slot under mu before the session is
// asked to start, so a second click stops the claimed recording instead of
// starting another one. Callbacks only touch state owned by their attempt.
func (controller *Controller) toggleRecording(mode Mode) {
	controller.mu.Lock()
	active := controller.recording
	if active != "" {
		controller.mu.Unlock()
		controller.stopRecording(active)
		return
	}
	controller.recording = mode
	controller.attempt++
	attempt := controller.attempt
	controller.mu.Unlock()

	callback := model.CaptureCallback{
		OnBegin: func() {
			if !controller.ownsRecording(attempt) {
				return
			}
			controller.view.SetToolbarVisible(false)
			controller.view.SetRecordingVisible(true)
			controller.timer.Start()
		},
		OnError: func(message string) {
			controller.log.Warnw("recording failed", "mode", mode, "error", message)
			controller.view.Toast(orDefault(message, unknownError))
			if controller.releaseRecording(attempt) {
				controller.view.SetToolbarVisible(true)
				controller.view.SetRecordingVisible(false)
				controller.timer.Stop()
			}
		},
		OnComplete: func(path string) {
			controller.log.Infow("recording saved", "mode", mode, "path", path)
			fallback := ""
			if mode == ModeAudio {
				fallback = "error"
			}
			controller.view.Toast(orDefault(path, fallback))
			if mode == ModeVideo {
				controller.view.ShowRecentMedia(model.MediaVideo)
			}
			if controller.releaseRecording(attempt) {
				controller.view.SetToolbarVisible(true)
				controller.view.SetRecordingVisible(false)
				controller.timer.Stop()
			}
		},
	}

	if mode == ModeAudio {
		controller.session.CaptureAudioStart(callback)
		return
	}
	controller.session.CaptureVideoStart(callback)
}

func (controller *Controller) stopRecording(mode Mode) {
	if mode == ModeAudio {
		controller.session.CaptureAudioStop()
		return
	}
	controller.session.CaptureVideoStop()
}

func (controller *Controller) ownsRecording(attempt uint64) bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.recording != "" && controller.attempt == attempt
}

// releaseRecording clears the slot if attempt still holds it.
func (controller *Controller) releaseRecording(attempt uint64) bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.recording == "" || controller.attempt != attempt {
		return false
	}
	controller.recording = ""
	return true
}

func (controller *Controller) activeRecording() Mode {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.recording
}

func (controller *Controller) setPlayingMic(playing bool) {
	controller.mu.Lock()
	controller.playingMic = playing
	controller.mu.Unlock()
}

func sameDevice(first, second model.Device) bool {
	if first.Path != "" && second.Path != "" {
		return first.Path == second.Path
	}
	return first.Label() == second.Label()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
