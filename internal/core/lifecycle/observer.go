package lifecycle

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"rearcam/internal/logger"
)

// State is a camera session lifecycle notification.
type State string

const (
	StateOpened State = "opened"
	StateClosed State = "closed"
	StateError  State = "error"
)

// Update is one state notification pushed by the camera session.
type Update struct {
	State   State
	Message string
}

// Mode is the last UI mode rendered by the observer.
type Mode string

const (
	ModeOffline Mode = "offline"
	ModeLive    Mode = "live"
)

// NotificationKind classifies a user-facing notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyFailure NotificationKind = "failure"
)

// Notification is a toast-style message for the user.
type Notification struct {
	Kind NotificationKind
	Text string
}

// Presenter renders lifecycle side effects.
type Presenter interface {
	SetOfflineIndicatorVisible(visible bool)
	SetTelemetryVisible(visible bool)
	Notify(notification Notification)
}

// Observer maps camera lifecycle updates to presentation changes.
type Observer struct {
	mu        sync.Mutex
	presenter Presenter
	log       *zap.SugaredLogger
	mode      Mode
}

// NewObserver creates an observer in offline mode.
func NewObserver(presenter Presenter, log *zap.SugaredLogger) *Observer {
	return &Observer{
		presenter: presenter,
		log:       logger.OrNop(log),
		mode:      ModeOffline,
	}
}

// OnState renders a single lifecycle update.
func (observer *Observer) OnState(update Update) {
	observer.mu.Lock()
	defer observer.mu.Unlock()

	switch update.State {
	case StateOpened:
		observer.render(ModeLive, Notification{Kind: NotifySuccess, Text: "camera opened success"})
	case StateClosed:
		observer.render(ModeOffline, Notification{Kind: NotifySuccess, Text: "camera closed success"})
	case StateError:
		observer.log.Warnw("camera error", "message", update.Message)
		observer.render(ModeOffline, Notification{
			Kind: NotifyFailure,
			Text: fmt.Sprintf("camera opened error: %s", update.Message),
		})
	default:
		observer.log.Warnw("ignoring unknown camera state", "state", update.State)
		return
	}
	observer.log.Infow("camera state", "state", update.State, "mode", observer.mode)
}

// Mode returns the last rendered mode.
func (observer *Observer) Mode() Mode {
	observer.mu.Lock()
	defer observer.mu.Unlock()
	return observer.mode
}

func (observer *Observer) render(mode Mode, notification Notification) {
	observer.mode = mode
	if observer.presenter == nil {
		return
	}
	live := mode == ModeLive
	observer.presenter.SetOfflineIndicatorVisible(!live)
	observer.presenter.SetTelemetryVisible(live)
	observer.presenter.Notify(notification)
}
