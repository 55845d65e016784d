package animation

import "time"

// Track identifies an independent animation lane. Starting a sequence on a
// track cancels whatever was running on that track.
type Track int

const (
	TrackPulse Track = iota
	TrackTip
)

// Step is one frame of a sequence, held for Hold before the next one.
type Step struct {
	Scale float32
	Alpha float32
	Hold  time.Duration
}

// Sequence is an ordered list of steps.
type Sequence []Step

// Duration returns the total hold time of the sequence.
func (sequence Sequence) Duration() time.Duration {
	var total time.Duration
	for _, step := range sequence {
		total += step.Hold
	}
	return total
}
