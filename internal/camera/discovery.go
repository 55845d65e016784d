package camera

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"rearcam/internal/core/model"
	"rearcam/internal/logger"
)

// DiscoverOptions controls where devices are looked up.
type DiscoverOptions struct {
	DevDir   string
	SysfsDir string
	V4L2Ctl  string
	Launcher Launcher
	// AllowNonCharDevices accepts regular files as device nodes.
	AllowNonCharDevices bool
}

func (options DiscoverOptions) withDefaults() DiscoverOptions {
	if options.DevDir == "" {
		options.DevDir = "/dev"
	}
	if options.SysfsDir == "" {
		options.SysfsDir = "/sys/class/video4linux"
	}
	if options.V4L2Ctl == "" {
		options.V4L2Ctl = "v4l2-ctl"
	}
	if options.Launcher == nil {
		options.Launcher = ExecLauncher{}
	}
	return options
}

var (
	videoNodePattern   = regexp.MustCompile(`^video(\d+)$`)
	discreteSizeRegexp = regexp.MustCompile(`Size:\s*Discrete\s+(\d+)x(\d+)`)
)

// Discover lists V4L2 video capture nodes sorted by index. It logs through
// the logger carried by ctx.
func Discover(ctx context.Context, options DiscoverOptions) ([]model.Device, error) {
	options = options.withDefaults()
	log := logger.FromContext(ctx)

	matches, err := filepath.Glob(filepath.Join(options.DevDir, "video*"))
	if err != nil {
		return nil, fmt.Errorf("glob video devices: %w", err)
	}
	sort.Slice(matches, func(i, j int) bool {
		return deviceIndex(matches[i]) < deviceIndex(matches[j])
	})

	devices := make([]model.Device, 0, len(matches))
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return devices, err
		}
		name := filepath.Base(match)
		submatch := videoNodePattern.FindStringSubmatch(name)
		if submatch == nil {
			continue
		}
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if info.Mode()&os.ModeCharDevice == 0 && !options.AllowNonCharDevices {
			log.Debugw("skip non-device node", "path", match)
			continue
		}

		device := model.Device{ID: submatch[1], Path: match}
		output, err := options.Launcher.Output(ctx, options.V4L2Ctl, "--device", match, "--info")
		if err == nil {
			cardType, capture := parseV4L2Info(string(output))
			if !capture {
				log.Debugw("skip non-capture node", "path", match)
				continue
			}
			device.ProductName = cardType
		} else {
			log.Debugw("v4l2 info unavailable, using sysfs name", "path", match, "error", err)
			device.ProductName = readSysfsName(options.SysfsDir, name)
		}
		devices = append(devices, device)
	}
	log.Debugw("video devices discovered", "count", len(devices))
	return devices, nil
}

// ParsePreviewSizes extracts the unique discrete frame sizes from
// `v4l2-ctl --list-formats-ext` output, smallest first.
func ParsePreviewSizes(output string) []model.PreviewSize {
	seen := make(map[model.PreviewSize]bool)
	var sizes []model.PreviewSize
	for _, match := range discreteSizeRegexp.FindAllStringSubmatch(output, -1) {
		width, _ := strconv.Atoi(match[1])
		height, _ := strconv.Atoi(match[2])
		size := model.PreviewSize{Width: width, Height: height}
		if !size.Valid() || seen[size] {
			continue
		}
		seen[size] = true
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool {
		if sizes[i].Area() != sizes[j].Area() {
			return sizes[i].Area() < sizes[j].Area()
		}
		return sizes[i].Width < sizes[j].Width
	})
	return sizes
}

// parseV4L2Info returns the card type and whether the node itself
// advertises video capture (metadata nodes do not).
func parseV4L2Info(output string) (string, bool) {
	var cardType string
	capture := false
	inDeviceCaps := false
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "Card type"):
			if parts := strings.SplitN(line, ":", 2); len(parts) == 2 {
				cardType = strings.TrimSpace(parts[1])
			}
			inDeviceCaps = false
		case strings.HasPrefix(line, "Device Caps"):
			inDeviceCaps = true
		case strings.Contains(line, ":"):
			inDeviceCaps = false
		case inDeviceCaps && line == "Video Capture":
			capture = true
		}
	}
	if !strings.Contains(output, "Device Caps") {
		capture = strings.Contains(output, "Video Capture")
	}
	return cardType, capture
}

func readSysfsName(sysfsDir, node string) string {
	data, err := os.ReadFile(filepath.Join(sysfsDir, node, "name"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func deviceIndex(path string) int {
	submatch := videoNodePattern.FindStringSubmatch(filepath.Base(path))
	if submatch == nil {
		return int(^uint(0) >> 1)
	}
	index, err := strconv.Atoi(submatch[1])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return index
}
