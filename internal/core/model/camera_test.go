package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePreviewSize(t *testing.T) {
	t.Parallel()

	size, err := ParsePreviewSize("1280x720")
	require.NoError(t, err)
	require.Equal(t, PreviewSize{Width: 1280, Height: 720}, size)

	size, err = ParsePreviewSize("640 x 480")
	require.NoError(t, err)
	require.Equal(t, "640 x 480", size.String())
	require.Equal(t, 640*480, size.Area())

	_, err = ParsePreviewSize("wide")
	require.Error(t, err)
	_, err = ParsePreviewSize("0x480")
	require.Error(t, err)
}

func TestDeviceLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "HD Webcam(2)", Device{ID: "2", Path: "/dev/video2", ProductName: "HD Webcam"}.Label())
	require.Equal(t, "/dev/video0", Device{ID: "0", Path: "/dev/video0"}.Label())
}

func TestCallbacksTolerateNilHandlers(t *testing.T) {
	t.Parallel()

	require.NotPanics(t, func() {
		CaptureCallback{}.Begin()
		CaptureCallback{}.Error("x")
		CaptureCallback{}.Complete("/tmp/a.jpg")
		PlayCallback{}.Begin()
		PlayCallback{}.Error("x")
		PlayCallback{}.Complete()
	})

	var got string
	CaptureCallback{OnComplete: func(path string) { got = path }}.Complete("/tmp/b.mp4")
	require.Equal(t, "/tmp/b.mp4", got)
}
