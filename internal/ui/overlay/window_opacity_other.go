//go:build !windows

package overlay

func (badge *Window) applyNativeOpacity(uint8) {}
