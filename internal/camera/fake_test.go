package camera

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rearcam/internal/core/lifecycle"
)

var errKilled = errors.New("signal: killed")

type fakeStdin struct {
	mu      sync.Mutex
	buffer  bytes.Buffer
	closed  bool
	onClose func()
}

func (stdin *fakeStdin) Write(p []byte) (int, error) {
	stdin.mu.Lock()
	defer stdin.mu.Unlock()
	if stdin.closed {
		return 0, io.ErrClosedPipe
	}
	return stdin.buffer.Write(p)
}

func (stdin *fakeStdin) Close() error {
	stdin.mu.Lock()
	alreadyClosed := stdin.closed
	stdin.closed = true
	onClose := stdin.onClose
	stdin.mu.Unlock()
	if !alreadyClosed && onClose != nil {
		onClose()
	}
	return nil
}

func (stdin *fakeStdin) Bytes() []byte {
	stdin.mu.Lock()
	defer stdin.mu.Unlock()
	return append([]byte(nil), stdin.buffer.Bytes()...)
}

func (stdin *fakeStdin) Closed() bool {
	stdin.mu.Lock()
	defer stdin.mu.Unlock()
	return stdin.closed
}

type fakeProcess struct {
	args   []string
	stdout *io.PipeReader
	feed   *io.PipeWriter
	stdin  *fakeStdin
	once   sync.Once
	result error
	done   chan struct{}
}

func newFakeProcess(ctx context.Context, args []string) *fakeProcess {
	reader, writer := io.Pipe()
	process := &fakeProcess{
		args:   args,
		stdout: reader,
		feed:   writer,
		done:   make(chan struct{}),
	}
	// ffmpeg finalizes its output and exits once stdin is closed.
	process.stdin = &fakeStdin{onClose: func() { process.exit(nil) }}
	go func() {
		select {
		case <-ctx.Done():
			process.exit(errKilled)
		case <-process.done:
		}
	}()
	return process
}

func (process *fakeProcess) Stdin() io.WriteCloser { return process.stdin }

func (process *fakeProcess) Stdout() io.Reader { return process.stdout }

func (process *fakeProcess) Wait() error {
	<-process.done
	return process.result
}

func (process *fakeProcess) exit(err error) {
	process.once.Do(func() {
		process.result = err
		_ = process.feed.Close()
		close(process.done)
	})
}

func (process *fakeProcess) hasArg(value string) bool {
	for _, arg := range process.args {
		if arg == value {
			return true
		}
	}
	return false
}

func (process *fakeProcess) outputPath() string {
	return process.args[len(process.args)-1]
}

type fakeLauncher struct {
	mu        sync.Mutex
	processes []*fakeProcess
	startErr  error
	output    func(args []string) ([]byte, error)
}

func (launcher *fakeLauncher) Start(ctx context.Context, _ string, args ...string) (Process, error) {
	launcher.mu.Lock()
	defer launcher.mu.Unlock()
	if launcher.startErr != nil {
		return nil, launcher.startErr
	}
	process := newFakeProcess(ctx, args)
	launcher.processes = append(launcher.processes, process)
	return process, nil
}

func (launcher *fakeLauncher) Output(_ context.Context, _ string, args ...string) ([]byte, error) {
	launcher.mu.Lock()
	output := launcher.output
	launcher.mu.Unlock()
	if output == nil {
		return nil, errors.New("executable not found")
	}
	return output(args)
}

func (launcher *fakeLauncher) process(t *testing.T, index int) *fakeProcess {
	t.Helper()
	var process *fakeProcess
	require.Eventually(t, func() bool {
		launcher.mu.Lock()
		defer launcher.mu.Unlock()
		if index < len(launcher.processes) {
			process = launcher.processes[index]
			return true
		}
		return false
	}, time.Second, 5*time.Millisecond)
	return process
}

type stateRecorder struct {
	mu      sync.Mutex
	updates []lifecycle.Update
}

func (recorder *stateRecorder) handle(update lifecycle.Update) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.updates = append(recorder.updates, update)
}

func (recorder *stateRecorder) states() []lifecycle.State {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	states := make([]lifecycle.State, 0, len(recorder.updates))
	for _, update := range recorder.updates {
		states = append(states, update.State)
	}
	return states
}

func (recorder *stateRecorder) last() lifecycle.Update {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.updates) == 0 {
		return lifecycle.Update{}
	}
	return recorder.updates[len(recorder.updates)-1]
}

func testFrame(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 255, A: 255})
	}
	var buffer bytes.Buffer
	require.NoError(t, jpeg.Encode(&buffer, img, nil))
	return buffer.Bytes()
}

const listFormatsOutput = `ioctl: VIDIOC_ENUM_FMT
	Type: Video Capture

	[0]: 'MJPG' (Motion-JPEG, compressed)
		Size: Discrete 1280x720
			Interval: Discrete 0.033s (30.000 fps)
		Size: Discrete 640x480
			Interval: Discrete 0.033s (30.000 fps)
	[1]: 'YUYV' (YUYV 4:2:2)
		Size: Discrete 640x480
			Interval: Discrete 0.033s (30.000 fps)
		Size: Discrete 1920x1080
			Interval: Discrete 0.200s (5.000 fps)
`

func formatsOutput(args []string) ([]byte, error) {
	if strings.Contains(strings.Join(args, " "), "--list-formats-ext") {
		return []byte(listFormatsOutput), nil
	}
	return nil, errors.New("unexpected command")
}
