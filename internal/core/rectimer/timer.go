package rectimer

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"rearcam/internal/logger"
)

// Config contains runtime options for Timer.
type Config struct {
	TickInterval time.Duration
	ShowHours    bool
	Logger       *zap.SugaredLogger
}

// Timer counts recording seconds and publishes display events.
// Start, tick and Stop are serialized on one mutex; a tick that lost the race
// against Stop is discarded by generation.
type Timer struct {
	mu         sync.Mutex
	options    Config
	log        *zap.SugaredLogger
	elapsed    int
	running    bool
	closed     bool
	generation uint64
	stopCh     chan struct{}
	sources    int
	events     []chan Event
}

// New creates a stopped Timer.
func New(options Config) *Timer {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	return &Timer{
		options: options,
		log:     logger.OrNop(options.Logger),
	}
}

// Subscribe registers a new observer channel.
func (timer *Timer) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	timer.mu.Lock()
	defer timer.mu.Unlock()
	if timer.closed {
		close(ch)
		return ch
	}
	timer.events = append(timer.events, ch)
	return ch
}

// Start begins counting from zero. A running timer is stopped first.
func (timer *Timer) Start() {
	timer.mu.Lock()
	if timer.closed {
		timer.mu.Unlock()
		return
	}
	if timer.running {
		timer.log.Debugw("recording timer restarted while running", "elapsed", timer.elapsed)
		timer.stopLocked(time.Now())
	}
	timer.running = true
	timer.elapsed = 0
	timer.generation++
	generation := timer.generation
	stopCh := make(chan struct{})
	timer.stopCh = stopCh
	timer.sources++
	timer.mu.Unlock()

	timer.log.Debugw("recording timer started", "interval", timer.options.TickInterval)
	go timer.run(generation, stopCh)
}

// Stop cancels the tick source, zeroes the counter and emits a hidden display.
// No tick is delivered after Stop returns.
func (timer *Timer) Stop() {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	if timer.closed {
		return
	}
	timer.stopLocked(time.Now())
}

// Close stops the timer and closes all observer channels.
func (timer *Timer) Close() {
	timer.mu.Lock()
	if timer.closed {
		timer.mu.Unlock()
		return
	}
	if timer.running {
		timer.stopLocked(time.Now())
	}
	timer.closed = true
	events := timer.events
	timer.events = nil
	timer.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Running reports whether a tick source is active.
func (timer *Timer) Running() bool {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.running
}

// Elapsed returns the current counter value.
func (timer *Timer) Elapsed() Elapsed {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return ElapsedFrom(timer.elapsed)
}

// SetShowHours switches the display between HH:MM:SS and MM:SS from the next event on.
func (timer *Timer) SetShowHours(show bool) {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	timer.options.ShowHours = show
}

func (timer *Timer) run(generation uint64, stopCh <-chan struct{}) {
	ticker := time.NewTicker(timer.options.TickInterval)
	defer func() {
		ticker.Stop()
		timer.mu.Lock()
		timer.sources--
		timer.mu.Unlock()
	}()

	for {
		select {
		case <-stopCh:
			return
		case tickTime := <-ticker.C:
			if !timer.tick(generation, tickTime) {
				return
			}
		}
	}
}

func (timer *Timer) tick(generation uint64, tickTime time.Time) bool {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	if !timer.running || generation != timer.generation {
		return false
	}

	timer.elapsed = (timer.elapsed + 1) % secondsPerDay
	timer.emitLocked(Event{
		Type:    EventTick,
		Elapsed: ElapsedFrom(timer.elapsed),
		Display: Format(timer.elapsed, timer.options.ShowHours),
		Blink:   timer.elapsed%2 != 0,
		Visible: true,
		At:      tickTime,
	})
	return true
}

func (timer *Timer) stopLocked(now time.Time) {
	if timer.running {
		close(timer.stopCh)
		timer.stopCh = nil
		timer.running = false
		timer.generation++
		timer.log.Debugw("recording timer stopped", "elapsed", ElapsedFrom(timer.elapsed).String())
	}
	timer.elapsed = 0
	timer.emitLocked(Event{
		Type:    EventStopped,
		Display: Format(0, timer.options.ShowHours),
		At:      now,
	})
}

func (timer *Timer) activeSources() int {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.sources
}

func (timer *Timer) currentGeneration() uint64 {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.generation
}

// emitLocked never blocks. Ticks are dropped for slow observers; a stopped
// event displaces the oldest queued event so the hidden display always lands.
func (timer *Timer) emitLocked(event Event) {
	for _, ch := range timer.events {
		select {
		case ch <- event:
			continue
		default:
		}
		if event.Type != EventStopped {
			continue
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
			timer.log.Warnw("recording timer observer missed stop event")
		}
	}
}
