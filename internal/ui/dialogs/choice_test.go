package dialogs

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/require"

	"rearcam/internal/core/capture"
)

func TestSingleChoicePreselectsCurrent(t *testing.T) {
	app := test.NewTempApp(t)
	window := app.NewWindow("choice")

	picker := NewSingleChoice("Resolution", capture.Choice{
		Items:    []string{"640 x 480", "1280 x 720"},
		Selected: 1,
	}, func(int) { t.Fatal("preselection must not fire") }, window)

	require.Equal(t, "1280 x 720", picker.radio.Selected)
}

func TestSingleChoiceReportsPickedIndex(t *testing.T) {
	app := test.NewTempApp(t)
	window := app.NewWindow("choice")

	var picked []int
	picker := ShowSingleChoice("Device", capture.Choice{
		Items:    []string{"HD Webcam(0)", "/dev/video2"},
		Selected: -1,
	}, func(index int) { picked = append(picked, index) }, window)

	require.Empty(t, picker.radio.Selected)
	picker.radio.SetSelected("/dev/video2")
	require.Equal(t, []int{1}, picked)
}

func TestSingleChoiceIgnoresUnknownItem(t *testing.T) {
	app := test.NewTempApp(t)
	window := app.NewWindow("choice")

	picked := false
	picker := NewSingleChoice("Device", capture.Choice{Items: []string{"a"}, Selected: 0}, func(int) { picked = true }, window)
	picker.handleChanged("")
	require.False(t, picked)
}
