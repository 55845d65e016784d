package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"rearcam/internal/core/capture"
	"rearcam/internal/ui/preferences"
)

const (
	appName = "RearCam"
	appID   = "com.rearcam.app"
)

// options holds command line overrides for the saved settings.
type options struct {
	device    string
	mediaDir  string
	logLevel  string
	mode      string
	noTray    bool
	minimized bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	command := &cobra.Command{
		Use:   "rearcam",
		Short: "View and record a USB camera.",
		Long: `Desktop viewer for a V4L2 USB camera.

Shows a live preview, captures pictures, video and audio into the media
directory, and keeps a recording timer on screen while recording.
Flags override the values stored in the settings file.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return run(ctx, opts, cmd.Flags())
		},
	}

	flags := command.Flags()
	flags.StringVarP(&opts.device, "device", "d", "", "camera device path, e.g. /dev/video0")
	flags.StringVarP(&opts.mediaDir, "media-dir", "m", "", "directory for captured pictures, video and audio")
	flags.StringVarP(&opts.logLevel, "log-level", "l", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.mode, "mode", "", "initial capture mode: picture, video or audio")
	flags.BoolVar(&opts.noTray, "no-tray", false, "do not install the system tray menu")
	flags.BoolVar(&opts.minimized, "minimized", false, "start hidden in the system tray")

	return command
}

// apply overlays explicitly set flags on top of the loaded settings.
func (opts *options) apply(settings preferences.Settings, flags *pflag.FlagSet) preferences.Settings {
	if flags.Changed("device") && opts.device != "" {
		settings.DevicePath = opts.device
	}
	if flags.Changed("media-dir") && opts.mediaDir != "" {
		settings.MediaDir = opts.mediaDir
	}
	if flags.Changed("log-level") && opts.logLevel != "" {
		settings.LogLevel = opts.logLevel
	}
	if flags.Changed("mode") {
		if mode, ok := capture.ParseMode(opts.mode); ok {
			settings.CaptureMode = mode
		}
	}
	return settings
}
