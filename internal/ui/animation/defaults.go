package animation

import "time"

// DefaultConfig returns the click and shutter timings used by the camera view.
func DefaultConfig() Config {
	return Config{
		PulseDuration: 150 * time.Millisecond,
		PulseScale:    0.8,
		PulseAlpha:    0.5,
		TipDuration:   100 * time.Millisecond,
		TipAlpha:      0.85,
	}
}

// ClickPulse shrinks and dims a control, then restores it.
func (config Config) ClickPulse() Sequence {
	half := config.PulseDuration / 2
	return Sequence{
		{Scale: config.PulseScale, Alpha: config.PulseAlpha, Hold: half},
		{Scale: 1, Alpha: 1, Hold: config.PulseDuration - half},
	}
}

// TipFlash shows the shutter overlay once and hides it.
func (config Config) TipFlash() Sequence {
	return Sequence{
		{Scale: 1, Alpha: config.TipAlpha, Hold: config.TipDuration},
		{Scale: 1, Alpha: 0},
	}
}
