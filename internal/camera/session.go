package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"rearcam/internal/core/lifecycle"
	"rearcam/internal/core/model"
	"rearcam/internal/logger"
)

var (
	// ErrNotOpened is reported when a capture needs a live preview.
	ErrNotOpened = errors.New("camera not opened")
	// ErrNoDevice is returned when the session has no device configured.
	ErrNoDevice = errors.New("no camera device selected")
	// ErrBusy is returned when a recording blocks a reconfiguration.
	ErrBusy = errors.New("camera busy recording")
	// ErrUnsupportedSize is returned for a resolution the device does not list.
	ErrUnsupportedSize = errors.New("unsupported preview size")
)

// DefaultPreviewSize is used when neither settings nor the device pick one.
var DefaultPreviewSize = model.PreviewSize{Width: 1280, Height: 720}

// Config contains session options.
type Config struct {
	Device      model.Device
	Size        model.PreviewSize
	MediaDir    string
	FFmpegPath  string
	V4L2Ctl     string
	DevDir      string
	AudioFormat string
	AudioInput  string
	JPEGQuality int
	Launcher    Launcher
	Logger      *zap.SugaredLogger
}

func (config Config) withDefaults() Config {
	if config.FFmpegPath == "" {
		config.FFmpegPath = "ffmpeg"
	}
	if config.V4L2Ctl == "" {
		config.V4L2Ctl = "v4l2-ctl"
	}
	if config.AudioFormat == "" {
		config.AudioFormat = "alsa"
	}
	if config.AudioInput == "" {
		config.AudioInput = "default"
	}
	if config.JPEGQuality <= 0 || config.JPEGQuality > 31 {
		config.JPEGQuality = 5
	}
	if config.Launcher == nil {
		config.Launcher = ExecLauncher{}
	}
	return config
}

// Session drives one V4L2 camera through ffmpeg helper processes.
type Session struct {
	mu         sync.Mutex
	config     Config
	log        *zap.SugaredLogger
	device     model.Device
	size       model.PreviewSize
	sizes      []model.PreviewSize
	started    bool
	opened     bool
	generation uint64
	cancel     context.CancelFunc
	latest     []byte
	video      *recording
	audio      *recording
	mic        *playback

	mediaMu  sync.Mutex
	mediaDir string

	onState     func(lifecycle.Update)
	onFrame     func(image.Image)
	onFrameRate func(int)
	now         func() time.Time
}

// NewSession creates a closed session.
func NewSession(config Config) *Session {
	config = config.withDefaults()
	return &Session{
		config:   config,
		log:      logger.OrNop(config.Logger),
		device:   config.Device,
		size:     config.Size,
		mediaDir: config.MediaDir,
		now:      time.Now,
	}
}

// SetMediaDir changes where new captures are written.
func (session *Session) SetMediaDir(dir string) {
	session.mediaMu.Lock()
	defer session.mediaMu.Unlock()
	session.mediaDir = dir
}

// SetStateHandler registers the lifecycle callback.
func (session *Session) SetStateHandler(handler func(lifecycle.Update)) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.onState = handler
}

// SetFrameHandler registers the decoded preview frame callback.
func (session *Session) SetFrameHandler(handler func(image.Image)) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.onFrame = handler
}

// SetFrameRateHandler registers the once-per-second fps callback.
func (session *Session) SetFrameRateHandler(handler func(int)) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.onFrameRate = handler
}

// Open starts the preview. Opened is reported when the first frame arrives.
func (session *Session) Open(ctx context.Context) error {
	session.mu.Lock()
	if session.started {
		session.mu.Unlock()
		return nil
	}
	device := session.device
	size := session.size
	session.mu.Unlock()

	if device.Path == "" {
		session.emitState(lifecycle.Update{State: lifecycle.StateError, Message: ErrNoDevice.Error()})
		return ErrNoDevice
	}

	sizes, err := session.loadPreviewSizes(ctx, device)
	if err != nil {
		session.log.Warnw("list preview sizes failed", "device", device.Path, "error", err)
	}
	size = pickPreviewSize(size, sizes)

	runCtx, cancel := context.WithCancel(context.Background())
	process, err := session.config.Launcher.Start(runCtx, session.config.FFmpegPath,
		previewArgs(device, size, session.config.JPEGQuality)...)
	if err != nil {
		cancel()
		session.emitState(lifecycle.Update{State: lifecycle.StateError, Message: err.Error()})
		return fmt.Errorf("open %s: %w", device.Path, err)
	}

	session.mu.Lock()
	session.started = true
	session.opened = false
	session.generation++
	generation := session.generation
	session.cancel = cancel
	session.size = size
	session.sizes = sizes
	session.mu.Unlock()

	session.log.Infow("preview starting", "device", device.Path, "size", size.String())
	go session.runPreview(process, generation)
	return nil
}

// Close stops recordings and the preview and reports Closed.
func (session *Session) Close() error {
	session.CaptureVideoStop()
	session.CaptureAudioStop()
	session.StopPlayMic()

	session.mu.Lock()
	if !session.started {
		session.mu.Unlock()
		return nil
	}
	session.started = false
	session.opened = false
	session.generation++
	cancel := session.cancel
	session.cancel = nil
	session.latest = nil
	session.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	session.emitState(lifecycle.Update{State: lifecycle.StateClosed})
	return nil
}

// IsOpened reports whether preview frames are flowing.
func (session *Session) IsOpened() bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.opened
}

// PreviewSizes returns the sizes the device advertised at open.
func (session *Session) PreviewSizes() []model.PreviewSize {
	session.mu.Lock()
	defer session.mu.Unlock()
	return append([]model.PreviewSize(nil), session.sizes...)
}

// CurrentPreviewSize returns the active preview size.
func (session *Session) CurrentPreviewSize() (model.PreviewSize, bool) {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.size, session.started && session.size.Valid()
}

// UpdateResolution reopens the preview at size.
func (session *Session) UpdateResolution(size model.PreviewSize) error {
	session.mu.Lock()
	if session.video != nil || session.audio != nil {
		session.mu.Unlock()
		return ErrBusy
	}
	if !session.started {
		session.size = size
		session.mu.Unlock()
		return nil
	}
	if len(session.sizes) > 0 && !containsSize(session.sizes, size) {
		session.mu.Unlock()
		return fmt.Errorf("%s: %w", size, ErrUnsupportedSize)
	}
	session.mu.Unlock()

	if err := session.Close(); err != nil {
		return err
	}
	session.mu.Lock()
	session.size = size
	session.mu.Unlock()
	return session.Open(context.Background())
}

// Devices lists the capture devices currently attached.
func (session *Session) Devices(ctx context.Context) ([]model.Device, error) {
	return Discover(ctx, DiscoverOptions{
		DevDir:   session.config.DevDir,
		V4L2Ctl:  session.config.V4L2Ctl,
		Launcher: session.config.Launcher,
	})
}

// CurrentDevice returns the configured device.
func (session *Session) CurrentDevice() (model.Device, bool) {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.device, session.device.Path != ""
}

// SwitchDevice closes the current device and opens another.
func (session *Session) SwitchDevice(ctx context.Context, device model.Device) error {
	session.mu.Lock()
	if session.video != nil || session.audio != nil {
		session.mu.Unlock()
		return ErrBusy
	}
	session.mu.Unlock()

	if err := session.Close(); err != nil {
		return err
	}
	session.mu.Lock()
	session.device = device
	session.mu.Unlock()
	return session.Open(ctx)
}

// CaptureImage saves the latest preview frame as a JPEG file.
func (session *Session) CaptureImage(callback model.CaptureCallback) {
	session.mu.Lock()
	frame := session.latest
	opened := session.opened
	session.mu.Unlock()

	if !opened || frame == nil {
		callback.Error(ErrNotOpened.Error())
		return
	}
	callback.Begin()

	path, err := session.mediaPath("IMG", ".jpg")
	if err == nil {
		err = os.WriteFile(path, frame, 0o644)
	}
	if err != nil {
		session.log.Errorw("save image failed", "error", err)
		callback.Error(fmt.Sprintf("save image: %v", err))
		return
	}
	session.log.Infow("image saved", "path", path)
	callback.Complete(path)
}

func (session *Session) runPreview(process Process, generation uint64) {
	splitter := NewFrameSplitter(process.Stdout(), 0)
	meter := &rateMeter{}
	var readErr error
	for {
		frame, err := splitter.Next()
		if err != nil {
			readErr = err
			break
		}
		if !session.handleFrame(frame, generation) {
			break
		}
		if fps, ok := meter.add(session.now()); ok {
			session.mu.Lock()
			handler := session.onFrameRate
			session.mu.Unlock()
			if handler != nil {
				handler(fps)
			}
		}
	}
	waitErr := process.Wait()

	session.mu.Lock()
	stale := generation != session.generation
	var cancel context.CancelFunc
	if !stale {
		session.started = false
		session.opened = false
		session.latest = nil
		cancel = session.cancel
		session.cancel = nil
		// No more frames will arrive; let the encoder finalize what it has.
		if rec := session.video; rec != nil {
			session.video = nil
			close(rec.frames)
		}
	}
	session.mu.Unlock()
	if stale {
		return
	}
	if cancel != nil {
		cancel()
	}

	message := "preview stopped"
	switch {
	case waitErr != nil:
		message = waitErr.Error()
	case readErr != nil:
		message = fmt.Sprintf("preview stopped: %v", readErr)
	}
	session.log.Warnw("preview ended unexpectedly", "error", message)
	session.emitState(lifecycle.Update{State: lifecycle.StateError, Message: message})
}

// handleFrame stores the frame, feeds an active recording and pushes a
// decoded image to the preview. It returns false once the generation is stale.
func (session *Session) handleFrame(frame []byte, generation uint64) bool {
	session.mu.Lock()
	if generation != session.generation {
		session.mu.Unlock()
		return false
	}
	first := !session.opened
	session.opened = true
	session.latest = frame
	if session.video != nil {
		select {
		case session.video.frames <- frame:
		default:
			session.video.dropped++
		}
	}
	frameHandler := session.onFrame
	session.mu.Unlock()

	if first {
		session.emitState(lifecycle.Update{State: lifecycle.StateOpened})
	}
	if frameHandler != nil {
		decoded, err := jpeg.Decode(bytes.NewReader(frame))
		if err != nil {
			session.log.Debugw("skip undecodable frame", "error", err)
			return true
		}
		frameHandler(decoded)
	}
	return true
}

func (session *Session) loadPreviewSizes(ctx context.Context, device model.Device) ([]model.PreviewSize, error) {
	output, err := session.config.Launcher.Output(ctx, session.config.V4L2Ctl, "--device", device.Path, "--list-formats-ext")
	if err != nil {
		return nil, err
	}
	return ParsePreviewSizes(string(output)), nil
}

func (session *Session) mediaPath(prefix, extension string) (string, error) {
	session.mediaMu.Lock()
	dir := session.mediaDir
	session.mediaMu.Unlock()
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	now := session.now()
	name := fmt.Sprintf("%s_%s_%03d%s", prefix, now.Format("20060102_150405"), now.Nanosecond()/int(time.Millisecond), extension)
	return filepath.Join(dir, name), nil
}

func (session *Session) emitState(update lifecycle.Update) {
	session.mu.Lock()
	handler := session.onState
	session.mu.Unlock()
	if handler != nil {
		handler(update)
	}
}

func pickPreviewSize(requested model.PreviewSize, available []model.PreviewSize) model.PreviewSize {
	if len(available) == 0 {
		if requested.Valid() {
			return requested
		}
		return DefaultPreviewSize
	}
	if containsSize(available, requested) {
		return requested
	}
	if containsSize(available, DefaultPreviewSize) {
		return DefaultPreviewSize
	}
	return available[len(available)-1]
}

func containsSize(sizes []model.PreviewSize, size model.PreviewSize) bool {
	for _, candidate := range sizes {
		if candidate == size {
			return true
		}
	}
	return false
}

func previewArgs(device model.Device, size model.PreviewSize, quality int) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "v4l2",
		"-video_size", fmt.Sprintf("%dx%d", size.Width, size.Height),
		"-i", device.Path,
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-q:v", fmt.Sprintf("%d", quality),
		"-",
	}
}
