package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
)

// Tray is the part of desktop.App the manager drives.
type Tray interface {
	SetSystemTrayMenu(menu *fyne.Menu)
	SetSystemTrayIcon(icon fyne.Resource)
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow         func()
	OnCapture      func()
	OnToggleRecord func()
	OnResolution   func()
	OnPreferences  func()
	OnQuit         func()
}

// Manager handles system tray state.
type Manager struct {
	app         Tray
	callbacks   Callbacks
	statusItem  *fyne.MenuItem
	captureItem *fyne.MenuItem
	recordItem  *fyne.MenuItem
	resolution  *fyne.MenuItem
	idleIcon    fyne.Resource
	activeIcon  fyne.Resource
	statusLabel string
	live        bool
	recording   bool
}

// New creates a tray manager with the provided callbacks.
func New(app Tray, idleIcon, activeIcon fyne.Resource, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:         app,
		callbacks:   callbacks,
		idleIcon:    idleIcon,
		activeIcon:  activeIcon,
		statusLabel: "starting...",
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true
	manager.captureItem = fyne.NewMenuItem("Take picture", invoke(&manager.callbacks.OnCapture))
	manager.recordItem = fyne.NewMenuItem("Start recording", invoke(&manager.callbacks.OnToggleRecord))
	manager.resolution = fyne.NewMenuItem("Resolution...", invoke(&manager.callbacks.OnResolution))

	manager.refreshStatus()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.refreshStatus()
}

// SetLive toggles camera-dependent menu items.
func (manager *Manager) SetLive(live bool) {
	manager.live = live
	manager.refreshStatus()
}

// SetRecording updates the record toggle and tray icon.
func (manager *Manager) SetRecording(recording bool) {
	manager.recording = recording
	manager.refreshStatus()
}

// Menu returns the current tray menu.
func (manager *Manager) Menu() *fyne.Menu {
	return fyne.NewMenu("RearCam",
		manager.statusItem,
		fyne.NewMenuItem("Show window", invoke(&manager.callbacks.OnShow)),
		fyne.NewMenuItemSeparator(),
		manager.captureItem,
		manager.recordItem,
		manager.resolution,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences", invoke(&manager.callbacks.OnPreferences)),
		fyne.NewMenuItem("Quit", invoke(&manager.callbacks.OnQuit)),
	)
}

func (manager *Manager) refreshStatus() {
	status := manager.statusLabel
	if manager.recording {
		status = fmt.Sprintf("%s (recording)", status)
	}
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)

	manager.captureItem.Disabled = !manager.live || manager.recording
	manager.resolution.Disabled = !manager.live || manager.recording
	manager.recordItem.Disabled = !manager.live && !manager.recording
	if manager.recording {
		manager.recordItem.Label = "Stop recording"
	} else {
		manager.recordItem.Label = "Start recording"
	}

	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(manager.Menu())
	icon := manager.idleIcon
	if manager.recording && manager.activeIcon != nil {
		icon = manager.activeIcon
	}
	if icon != nil {
		manager.app.SetSystemTrayIcon(icon)
	}
}

func invoke(handler *func()) func() {
	return func() {
		if *handler != nil {
			(*handler)()
		}
	}
}
