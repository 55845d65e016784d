package rectimer

import "fmt"

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// Elapsed is a wall-clock style split of a recording duration.
type Elapsed struct {
	Hours   int
	Minutes int
	Seconds int
}

// ElapsedFrom splits total seconds into hours, minutes and seconds.
// Totals outside a single day wrap around.
func ElapsedFrom(total int) Elapsed {
	total %= secondsPerDay
	if total < 0 {
		total += secondsPerDay
	}
	return Elapsed{
		Hours:   total / secondsPerHour,
		Minutes: total % secondsPerHour / secondsPerMinute,
		Seconds: total % secondsPerMinute,
	}
}

// Total returns the elapsed time in seconds.
func (elapsed Elapsed) Total() int {
	return elapsed.Hours*secondsPerHour + elapsed.Minutes*secondsPerMinute + elapsed.Seconds
}

// String formats as HH:MM:SS.
func (elapsed Elapsed) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", elapsed.Hours, elapsed.Minutes, elapsed.Seconds)
}

// Format renders total seconds as HH:MM:SS, or MM:SS when withHours is false.
func Format(total int, withHours bool) string {
	elapsed := ElapsedFrom(total)
	if withHours {
		return elapsed.String()
	}
	return fmt.Sprintf("%02d:%02d", elapsed.Minutes, elapsed.Seconds)
}
