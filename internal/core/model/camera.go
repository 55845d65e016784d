package model

import (
	"fmt"
	"strings"
)

// PreviewSize is a camera frame resolution.
type PreviewSize struct {
	Width  int
	Height int
}

// String renders the size the way resolution pickers list it.
func (size PreviewSize) String() string {
	return fmt.Sprintf("%d x %d", size.Width, size.Height)
}

// Area returns the pixel count.
func (size PreviewSize) Area() int {
	return size.Width * size.Height
}

// Valid reports whether both dimensions are positive.
func (size PreviewSize) Valid() bool {
	return size.Width > 0 && size.Height > 0
}

// ParsePreviewSize accepts "1280x720" and "1280 x 720".
func ParsePreviewSize(value string) (PreviewSize, error) {
	normalized := strings.ReplaceAll(strings.ToLower(value), " ", "")
	var size PreviewSize
	if _, err := fmt.Sscanf(normalized, "%dx%d", &size.Width, &size.Height); err != nil {
		return PreviewSize{}, fmt.Errorf("parse preview size %q: %w", value, err)
	}
	if !size.Valid() {
		return PreviewSize{}, fmt.Errorf("parse preview size %q: dimensions must be positive", value)
	}
	return size, nil
}

// Device identifies a capture device.
type Device struct {
	ID          string
	Path        string
	ProductName string
}

// Label is the name shown in the device picker.
func (device Device) Label() string {
	if strings.TrimSpace(device.ProductName) != "" {
		return fmt.Sprintf("%s(%s)", device.ProductName, device.ID)
	}
	return device.Path
}

// MediaKind selects which recent capture to look up.
type MediaKind int

const (
	MediaAny MediaKind = iota
	MediaImage
	MediaVideo
)

// CaptureCallback receives the outcome of a capture request.
// Callbacks may run on any goroutine.
type CaptureCallback struct {
	OnBegin    func()
	OnError    func(message string)
	OnComplete func(path string)
}

// Begin invokes OnBegin if set.
func (callback CaptureCallback) Begin() {
	if callback.OnBegin != nil {
		callback.OnBegin()
	}
}

// Error invokes OnError if set.
func (callback CaptureCallback) Error(message string) {
	if callback.OnError != nil {
		callback.OnError(message)
	}
}

// Complete invokes OnComplete if set.
func (callback CaptureCallback) Complete(path string) {
	if callback.OnComplete != nil {
		callback.OnComplete(path)
	}
}

// PlayCallback receives microphone playback state.
type PlayCallback struct {
	OnBegin    func()
	OnError    func(message string)
	OnComplete func()
}

// Begin invokes OnBegin if set.
func (callback PlayCallback) Begin() {
	if callback.OnBegin != nil {
		callback.OnBegin()
	}
}

// Error invokes OnError if set.
func (callback PlayCallback) Error(message string) {
	if callback.OnError != nil {
		callback.OnError(message)
	}
}

// Complete invokes OnComplete if set.
func (callback PlayCallback) Complete() {
	if callback.OnComplete != nil {
		callback.OnComplete()
	}
}
