package tray

import (
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/require"
)

type fakeDesktop struct {
	menus []*fyne.Menu
	icons []fyne.Resource
}

func (desktop *fakeDesktop) SetSystemTrayMenu(menu *fyne.Menu) {
	desktop.menus = append(desktop.menus, menu)
}

func (desktop *fakeDesktop) SetSystemTrayIcon(icon fyne.Resource) {
	desktop.icons = append(desktop.icons, icon)
}


func findItem(t *testing.T, menu *fyne.Menu, label string) *fyne.MenuItem {
	t.Helper()
	for _, item := range menu.Items {
		if item.Label == label {
			return item
		}
	}
	t.Fatalf("menu item %q not found", label)
	return nil
}

func TestManagerReflectsCameraState(t *testing.T) {
	t.Parallel()

	idle := fyne.NewStaticResource("idle", []byte("idle"))
	active := fyne.NewStaticResource("active", []byte("active"))
	app := &fakeDesktop{}
	manager := New(app, idle, active, Callbacks{})

	menu := app.menus[len(app.menus)-1]
	require.Equal(t, "Status: starting...", menu.Items[0].Label)
	require.True(t, findItem(t, menu, "Take picture").Disabled)
	require.True(t, findItem(t, menu, "Start recording").Disabled)

	manager.SetStatus("live")
	manager.SetLive(true)
	menu = app.menus[len(app.menus)-1]
	require.Equal(t, "Status: live", menu.Items[0].Label)
	require.False(t, findItem(t, menu, "Take picture").Disabled)

	manager.SetRecording(true)
	menu = app.menus[len(app.menus)-1]
	require.Equal(t, "Status: live (recording)", menu.Items[0].Label)
	require.False(t, findItem(t, menu, "Stop recording").Disabled)
	require.True(t, findItem(t, menu, "Resolution...").Disabled)
	require.Equal(t, fyne.Resource(active), app.icons[len(app.icons)-1])

	manager.SetRecording(false)
	require.Equal(t, fyne.Resource(idle), app.icons[len(app.icons)-1])
}

func TestManagerInvokesCallbacks(t *testing.T) {
	t.Parallel()

	var calls []string
	app := &fakeDesktop{}
	manager := New(app, nil, nil, Callbacks{
		OnShow:         func() { calls = append(calls, "show") },
		OnCapture:      func() { calls = append(calls, "capture") },
		OnToggleRecord: func() { calls = append(calls, "record") },
		OnPreferences:  func() { calls = append(calls, "preferences") },
		OnQuit:         func() { calls = append(calls, "quit") },
	})

	menu := manager.Menu()
	findItem(t, menu, "Show window").Action()
	findItem(t, menu, "Take picture").Action()
	findItem(t, menu, "Start recording").Action()
	findItem(t, menu, "Resolution...").Action()
	findItem(t, menu, "Preferences").Action()
	findItem(t, menu, "Quit").Action()

	require.Equal(t, []string{"show", "capture", "record", "preferences", "quit"}, calls)
	require.Empty(t, app.icons)
}
