package animation

import (
	"context"
	"sync"
	"time"
)

// Config contains animation timing values.
type Config struct {
	PulseDuration time.Duration
	PulseScale    float32
	PulseAlpha    float32

	TipDuration time.Duration
	TipAlpha    float32
}

// Engine plays short step sequences for view controls.
type Engine struct {
	mu      sync.Mutex
	config  Config
	cancels map[Track]context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new animation engine.
func New(config Config) *Engine {
	return &Engine{
		config:  config,
		cancels: make(map[Track]context.CancelFunc),
	}
}

// Config returns the engine timings.
func (engine *Engine) Config() Config {
	return engine.config
}

// Pulse plays the click pulse on the pulse track.
func (engine *Engine) Pulse(ctx context.Context, apply func(Step)) {
	engine.Play(ctx, TrackPulse, engine.config.ClickPulse(), apply)
}

// Flash plays the shutter tip flash on the tip track.
func (engine *Engine) Flash(ctx context.Context, apply func(Step)) {
	engine.Play(ctx, TrackTip, engine.config.TipFlash(), apply)
}

// Play runs sequence on track, replacing any sequence already running there.
// The last step is always applied unless the context is cancelled first.
func (engine *Engine) Play(ctx context.Context, track Track, sequence Sequence, apply func(Step)) {
	if len(sequence) == 0 || apply == nil {
		return
	}

	engine.mu.Lock()
	if cancel := engine.cancels[track]; cancel != nil {
		cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	engine.cancels[track] = cancel
	engine.wg.Add(1)
	engine.mu.Unlock()

	go func() {
		defer engine.wg.Done()
		defer engine.release(track, runCtx)
		for _, step := range sequence {
			if runCtx.Err() != nil {
				return
			}
			apply(step)
			if step.Hold > 0 && !sleepWithContext(runCtx, step.Hold) {
				return
			}
		}
	}()
}

// Stop cancels every running sequence and waits for them to exit.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	for track, cancel := range engine.cancels {
		cancel()
		delete(engine.cancels, track)
	}
	engine.mu.Unlock()
	engine.wg.Wait()
}

func (engine *Engine) release(track Track, runCtx context.Context) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if cancel, ok := engine.cancels[track]; ok && runCtx.Err() == nil {
		cancel()
		delete(engine.cancels, track)
	}
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
