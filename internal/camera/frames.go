package camera

import (
	"bufio"
	"errors"
	"io"
	"time"
)

// ErrFrameTooLarge is returned when no end-of-image marker shows up in time.
var ErrFrameTooLarge = errors.New("jpeg frame exceeds size limit")

const (
	markerPrefix     = 0xFF
	markerStartImage = 0xD8
	markerEndImage   = 0xD9

	defaultMaxFrameSize = 16 << 20
)

// FrameSplitter cuts a concatenated MJPEG byte stream into JPEG frames.
type FrameSplitter struct {
	reader  *bufio.Reader
	maxSize int
}

// NewFrameSplitter wraps reader. maxSize <= 0 uses a 16 MiB limit.
func NewFrameSplitter(reader io.Reader, maxSize int) *FrameSplitter {
	if maxSize <= 0 {
		maxSize = defaultMaxFrameSize
	}
	return &FrameSplitter{reader: bufio.NewReaderSize(reader, 64<<10), maxSize: maxSize}
}

// Next returns the next complete frame, io.EOF at a clean end of stream and
// io.ErrUnexpectedEOF when the stream ends inside a frame.
func (splitter *FrameSplitter) Next() ([]byte, error) {
	var previous byte
	for {
		value, err := splitter.reader.ReadByte()
		if err != nil {
			return nil, err
		}
		if previous == markerPrefix && value == markerStartImage {
			break
		}
		previous = value
	}

	frame := []byte{markerPrefix, markerStartImage}
	previous = markerStartImage
	for {
		value, err := splitter.reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		frame = append(frame, value)
		if previous == markerPrefix && value == markerEndImage {
			return frame, nil
		}
		if len(frame) > splitter.maxSize {
			return nil, ErrFrameTooLarge
		}
		previous = value
	}
}

// rateMeter counts frames per one-second window.
type rateMeter struct {
	windowStart time.Time
	count       int
}

func (meter *rateMeter) add(now time.Time) (int, bool) {
	if meter.windowStart.IsZero() {
		meter.windowStart = now
	}
	meter.count++
	if now.Sub(meter.windowStart) < time.Second {
		return 0, false
	}
	fps := meter.count
	meter.windowStart = now
	meter.count = 0
	return fps, true
}
