package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"rearcam/internal/camera"
	"rearcam/internal/core/capture"
	"rearcam/internal/core/lifecycle"
	"rearcam/internal/core/model"
	"rearcam/internal/core/rectimer"
	"rearcam/internal/logger"
	"rearcam/internal/platform"
	"rearcam/internal/storage"
	"rearcam/internal/ui/animation"
	"rearcam/internal/ui/camview"
	"rearcam/internal/ui/dialogs"
	"rearcam/internal/ui/overlay"
	"rearcam/internal/ui/preferences"
	"rearcam/internal/ui/tray"
	"rearcam/resources"
)

const timerSubscriberBuffer = 8

// application owns every long-lived component of a running RearCam.
type application struct {
	ctx      context.Context
	fyne     fyne.App
	log      *zap.SugaredLogger
	level    zap.AtomicLevel
	platform platform.Service
	store    *storage.Store

	settingsMu sync.Mutex
	settings   preferences.Settings

	session    *camera.Session
	timer      *rectimer.Timer
	engine     *animation.Engine
	controller *capture.Controller
	observer   *lifecycle.Observer
	view       *camview.Window
	badge      *overlay.Window
	prefs      *preferences.Window
	tray       *tray.Manager

	// UI goroutine only.
	windowHidden bool
	recording    bool

	shutdownOnce sync.Once
}

func run(ctx context.Context, opts *options, flags *pflag.FlagSet) error {
	service := platform.NewService()
	configDir, err := service.GetConfigDir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}

	store := storage.NewStore(configDir, appName)
	settings, loadErr := store.Load()
	settings = opts.apply(settings, flags)

	level, knownLevel := logger.ParseLevel(settings.LogLevel)
	atomicLevel := zap.NewAtomicLevelAt(level)
	log := logger.New(atomicLevel).Named("rearcam")
	defer func() {
		_ = log.Sync()
	}()

	if loadErr != nil {
		log.Warnw("load settings failed, using defaults", "path", store.Path(), "error", loadErr)
	}
	if !knownLevel {
		log.Warnw("unknown log level, using info", "level", settings.LogLevel)
	}

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			log.Infow("another instance owns the camera, activating it")
			if activateErr := platform.ActivateRunning(appName, time.Second); activateErr != nil {
				log.Warnw("activate running instance failed", "error", activateErr)
			}
			return nil
		}
		return fmt.Errorf("single instance: %w", err)
	}
	defer func() {
		_ = guard.Release()
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := &application{
		ctx:      logger.ToContext(runCtx, log),
		fyne:     fyneapp.NewWithID(appID),
		log:      log,
		level:    atomicLevel,
		platform: service,
		store:    store,
		settings: settings,
	}
	app.build(opts)
	app.syncAutostart(settings.Autostart)

	go guard.Serve(runCtx, func() {
		fyne.Do(app.showWindow)
	})
	go func() {
		<-runCtx.Done()
		if ctx.Err() != nil {
			fyne.Do(app.fyne.Quit)
		}
	}()

	app.start()
	if opts.minimized && app.tray != nil {
		app.windowHidden = true
	} else {
		app.view.Show()
	}

	app.fyne.Run()
	cancel()
	app.shutdown()
	return nil
}

func (app *application) build(opts *options) {
	settings := app.currentSettings()
	app.fyne.SetIcon(resources.MustIcon(resources.IconLogo))

	app.timer = rectimer.New(settings.TimerConfig(app.log.Named("timer")))
	app.session = camera.NewSession(settings.SessionConfig(app.log.Named("camera")))
	app.engine = animation.New(animation.DefaultConfig())

	app.view = camview.New(app.fyne, camview.Config{
		Title:       appName,
		MediaDir:    settings.MediaDir,
		Mode:        settings.CaptureMode,
		OfflineIcon: resources.MustIcon(resources.IconOffline),
		Engine:      app.engine,
		Logger:      app.log.Named("view"),
	}, camview.Callbacks{
		OnCapture:     func(mode capture.Mode) { go app.controller.OnViewClick(mode) },
		OnModeChanged: app.rememberMode,
		OnResolution:  app.showResolutionPicker,
		OnDevice:      app.showDevicePicker,
		OnPlayMic:     func() { go app.controller.TogglePlayMic() },
		OnSettings:    func() { app.prefs.Show() },
	})

	app.controller = capture.NewController(app.session, &recordingView{Window: app.view, app: app}, app.timer, app.log.Named("capture"))
	app.controller.SetOnResolutionSelected(func(size model.PreviewSize) {
		app.updateSettings(func(settings *preferences.Settings) { settings.Resolution = size })
	})
	app.controller.SetOnDeviceSelected(func(device model.Device) {
		app.updateSettings(func(settings *preferences.Settings) { settings.DevicePath = device.Path })
	})

	app.observer = lifecycle.NewObserver(&statusPresenter{Window: app.view, app: app}, app.log.Named("lifecycle"))
	app.session.SetStateHandler(app.observer.OnState)
	app.session.SetFrameHandler(app.view.SetFrame)
	app.session.SetFrameRateHandler(app.view.SetFrameRate)

	app.badge = overlay.New(app.fyne, overlay.Config{Opacity: 200})
	app.badge.SetOnStop(func() { go app.controller.OnViewClick(app.view.Mode()) })

	app.prefs = preferences.New(app.fyne, settings, app.applySettings)

	if desktopApp, ok := app.fyne.(desktop.App); ok && !opts.noTray {
		app.tray = tray.New(desktopApp,
			resources.MustIcon(resources.IconTrayIdle),
			resources.MustIcon(resources.IconTrayRecording),
			tray.Callbacks{
				OnShow:         app.showWindow,
				OnCapture:      func() { go app.controller.OnViewClick(capture.ModePicture) },
				OnToggleRecord: app.toggleRecordFromTray,
				OnResolution: func() {
					app.showWindow()
					app.showResolutionPicker()
				},
				OnPreferences: app.prefs.Show,
				OnQuit:        app.fyne.Quit,
			})
		app.tray.SetStatus("offline")
	}

	window := app.view.Window()
	window.SetMaster()
	window.SetCloseIntercept(func() {
		if app.tray == nil {
			app.fyne.Quit()
			return
		}
		window.Hide()
		app.windowHidden = true
		if app.recording {
			app.badge.Show()
		}
	})
}

func (app *application) start() {
	go app.view.Watch(app.ctx, app.timer.Subscribe(timerSubscriberBuffer))

	badgeEvents := app.timer.Subscribe(timerSubscriberBuffer)
	go func() {
		for {
			select {
			case <-app.ctx.Done():
				return
			case event, ok := <-badgeEvents:
				if !ok {
					return
				}
				fyne.Do(func() {
					app.badge.HandleTimerEvent(event)
					if !event.Visible {
						app.setRecording(false)
					}
				})
			}
		}
	}()

	go func() {
		if err := app.session.Open(app.ctx); err != nil {
			app.log.Errorw("open camera failed", "error", err)
		}
	}()
	app.view.ShowRecentMedia(model.MediaAny)
}

func (app *application) shutdown() {
	app.shutdownOnce.Do(func() {
		app.controller.Shutdown()
		if err := app.session.Close(); err != nil {
			app.log.Warnw("close camera failed", "error", err)
		}
		app.timer.Close()
		app.engine.Stop()
		app.log.Infow("stopped")
	})
}

func (app *application) showWindow() {
	app.windowHidden = false
	app.badge.Hide()
	app.view.Show()
}

// setRecording must run on the UI goroutine.
func (app *application) setRecording(recording bool) {
	app.recording = recording
	if app.tray != nil {
		app.tray.SetRecording(recording)
	}
	if recording && app.windowHidden {
		app.badge.Show()
	}
	if !recording {
		app.badge.Hide()
	}
}

func (app *application) toggleRecordFromTray() {
	mode := app.view.Mode()
	if mode == capture.ModePicture {
		mode = capture.ModeVideo
	}
	go app.controller.OnViewClick(mode)
}

func (app *application) showResolutionPicker() {
	choice, err := app.controller.ResolutionChoice()
	if err != nil {
		app.log.Debugw("resolution picker unavailable", "error", err)
		return
	}
	dialogs.ShowSingleChoice("Resolution", choice, func(index int) {
		go func() {
			if err := app.controller.SelectResolution(index); err != nil {
				app.log.Warnw("select resolution failed", "error", err)
			}
		}()
	}, app.view.Window())
}

func (app *application) showDevicePicker() {
	go func() {
		choice, err := app.controller.DeviceChoice(app.ctx)
		if err != nil {
			app.log.Debugw("device picker unavailable", "error", err)
			return
		}
		fyne.Do(func() {
			dialogs.ShowSingleChoice("Camera", choice, func(index int) {
				go func() {
					if err := app.controller.SelectDevice(app.ctx, index); err != nil {
						app.log.Warnw("select device failed", "error", err)
					}
				}()
			}, app.view.Window())
		})
	}()
}

func (app *application) rememberMode(mode capture.Mode) {
	app.updateSettings(func(settings *preferences.Settings) { settings.CaptureMode = mode })
}

func (app *application) applySettings(updated preferences.Settings) {
	previous := app.currentSettings()
	app.updateSettings(func(settings *preferences.Settings) { *settings = updated })

	if level, ok := logger.ParseLevel(updated.LogLevel); ok {
		app.level.SetLevel(level)
	}
	app.timer.SetShowHours(updated.ShowHours)
	app.session.SetMediaDir(updated.MediaDir)
	app.view.SetMediaDir(updated.MediaDir)
	app.view.SetMode(updated.CaptureMode)
	if updated.MediaDir != previous.MediaDir {
		app.view.ShowRecentMedia(model.MediaAny)
	}
	if updated.Autostart != previous.Autostart {
		app.syncAutostart(updated.Autostart)
	}
}

func (app *application) syncAutostart(enabled bool) {
	current, err := app.platform.AutostartEnabled(appName)
	if err != nil {
		app.log.Warnw("check autostart failed", "error", err)
	}
	if err == nil && current == enabled {
		return
	}

	if !enabled {
		if err := app.platform.DisableAutostart(appName); err != nil {
			app.log.Warnw("disable autostart failed", "error", err)
		}
		return
	}

	execPath, err := os.Executable()
	if err != nil {
		app.log.Warnw("resolve executable failed", "error", err)
		return
	}
	if err := app.platform.EnableAutostart(appName, execPath, "--minimized"); err != nil {
		app.log.Warnw("enable autostart failed", "error", err)
	}
}

func (app *application) currentSettings() preferences.Settings {
	app.settingsMu.Lock()
	defer app.settingsMu.Unlock()
	return app.settings
}

func (app *application) updateSettings(mutate func(*preferences.Settings)) {
	app.settingsMu.Lock()
	mutate(&app.settings)
	settings := app.settings
	app.settingsMu.Unlock()

	if err := app.store.Save(settings); err != nil {
		app.log.Warnw("save settings failed", "path", app.store.Path(), "error", err)
	}
}
