package capture

import "strings"

// Mode selects which capture call a shutter click dispatches to.
type Mode string

const (
	ModePicture Mode = "picture"
	ModeVideo   Mode = "video"
	ModeAudio   Mode = "audio"
)

// Modes lists the capture modes in toolbar order.
func Modes() []Mode {
	return []Mode{ModePicture, ModeVideo, ModeAudio}
}

// ParseMode converts a stored or user supplied name into a Mode.
func ParseMode(value string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModePicture:
		return ModePicture, true
	case ModeVideo:
		return ModeVideo, true
	case ModeAudio:
		return ModeAudio, true
	default:
		return ModePicture, false
	}
}
