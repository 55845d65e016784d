package camview

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/require"

	"rearcam/internal/core/capture"
	"rearcam/internal/core/lifecycle"
	"rearcam/internal/core/model"
	"rearcam/internal/core/rectimer"
	"rearcam/internal/ui/animation"
)

var (
	_ lifecycle.Presenter = (*Window)(nil)
	_ capture.View        = (*Window)(nil)
)

func newTestWindow(t *testing.T, callbacks Callbacks) *Window {
	t.Helper()
	app := test.NewTempApp(t)
	view := New(app, Config{
		MediaDir:      t.TempDir(),
		ToastDuration: 20 * time.Millisecond,
	}, callbacks)
	t.Cleanup(view.engine.Stop)
	return view
}

func TestLifecycleRendering(t *testing.T) {
	view := newTestWindow(t, Callbacks{})
	observer := lifecycle.NewObserver(view, nil)

	require.True(t, view.offline.Visible())
	require.False(t, view.fpsLabel.Visible())

	observer.OnState(lifecycle.Update{State: lifecycle.StateOpened})
	require.False(t, view.offline.Visible())
	require.True(t, view.fpsLabel.Visible())
	require.True(t, view.toast.Visible())
	require.Equal(t, "camera opened success", view.toastLabel.Text)
	require.Equal(t, widget.SuccessImportance, view.toastLabel.Importance)

	observer.OnState(lifecycle.Update{State: lifecycle.StateError, Message: "device busy"})
	require.True(t, view.offline.Visible())
	require.False(t, view.fpsLabel.Visible())
	require.Equal(t, "camera opened error: device busy", view.toastLabel.Text)
	require.Equal(t, widget.DangerImportance, view.toastLabel.Importance)
}

func TestToastHidesAfterDuration(t *testing.T) {
	view := newTestWindow(t, Callbacks{})

	view.Toast("camera not worked!")
	require.True(t, view.toast.Visible())
	require.Eventually(t, func() bool { return !view.toast.Visible() }, time.Second, 5*time.Millisecond)
}

func TestFrameRateLabel(t *testing.T) {
	view := newTestWindow(t, Callbacks{})

	view.SetFrameRate(30)
	require.Equal(t, "frame rate:  30 fps", view.fpsLabel.Text)

	frame := image.NewRGBA(image.Rect(0, 0, 4, 4))
	view.SetFrame(frame)
	require.Same(t, frame, view.preview.Image)
}

func TestRecordingLayoutFollowsTimer(t *testing.T) {
	view := newTestWindow(t, Callbacks{})

	view.SetToolbarVisible(false)
	view.SetRecordingVisible(true)
	require.False(t, view.toolbar.Visible())
	require.True(t, view.recording.Visible())

	view.HandleTimerEvent(rectimer.Event{Type: rectimer.EventTick, Display: "00:00:01", Blink: true, Visible: true})
	require.Equal(t, "00:00:01", view.recordTime.Text)
	require.True(t, view.recordDot.Visible())

	view.HandleTimerEvent(rectimer.Event{Type: rectimer.EventTick, Display: "00:00:02", Blink: false, Visible: true})
	require.False(t, view.recordDot.Visible())

	view.HandleTimerEvent(rectimer.Event{Type: rectimer.EventStopped, Display: "00:00:00", Visible: false})
	require.Equal(t, "00:00:00", view.recordTime.Text)
	require.False(t, view.recording.Visible())
	require.True(t, view.toolbar.Visible())
}

func TestWatchConsumesTimerEvents(t *testing.T) {
	view := newTestWindow(t, Callbacks{})
	timer := rectimer.New(rectimer.Config{TickInterval: time.Hour})
	events := timer.Subscribe(4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		view.Watch(ctx, events)
		close(done)
	}()

	timer.Stop()
	timer.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch did not exit after close")
	}
	require.Equal(t, "00:00:00", view.recordTime.Text)
}

func TestShutterUsesSelectedMode(t *testing.T) {
	var modes []capture.Mode
	var changed []capture.Mode
	view := newTestWindow(t, Callbacks{
		OnCapture:     func(mode capture.Mode) { modes = append(modes, mode) },
		OnModeChanged: func(mode capture.Mode) { changed = append(changed, mode) },
	})

	test.Tap(view.shutter)
	view.modeSelect.SetSelected(string(capture.ModeVideo))
	test.Tap(view.shutter)
	view.SetMode(capture.ModeAudio)
	test.Tap(view.shutter)

	require.Equal(t, []capture.Mode{capture.ModePicture, capture.ModeVideo, capture.ModeAudio}, modes)
	require.Equal(t, []capture.Mode{capture.ModeVideo}, changed)
	require.Equal(t, capture.ModeAudio, view.Mode())
}

func TestShowTipFlashesOnce(t *testing.T) {
	app := test.NewTempApp(t)
	view := New(app, Config{
		Engine: animation.New(animation.Config{TipDuration: 5 * time.Millisecond, TipAlpha: 0.8}),
	}, Callbacks{})
	t.Cleanup(view.engine.Stop)

	view.ShowTip()
	require.Eventually(t, func() bool {
		fill, ok := view.tip.FillColor.(color.NRGBA)
		return ok && fill.A == 0 && !view.tip.Visible()
	}, time.Second, time.Millisecond)
}

func TestShowRecentMedia(t *testing.T) {
	view := newTestWindow(t, Callbacks{})

	view.ShowRecentMedia(model.MediaImage)
	require.Never(t, func() bool { return view.recent.Visible() }, 50*time.Millisecond, 5*time.Millisecond)

	path := filepath.Join(view.MediaDir(), "IMG_20240101_120000_000.jpg")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(file, image.NewRGBA(image.Rect(0, 0, 80, 40)), nil))
	require.NoError(t, file.Close())

	view.ShowRecentMedia(model.MediaImage)
	require.Eventually(t, func() bool { return view.RecentPath() == path }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return view.recent.Visible() }, time.Second, 5*time.Millisecond)
}
