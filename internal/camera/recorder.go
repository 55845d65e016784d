package camera

import (
	"context"
	"errors"
	"fmt"

	"rearcam/internal/core/model"
)

const videoFrameBuffer = 60

type recording struct {
	kind     string
	path     string
	process  Process
	callback model.CaptureCallback
	cancel   context.CancelFunc
	frames   chan []byte
	dropped  int
}

type playback struct {
	process  Process
	callback model.PlayCallback
	cancel   context.CancelFunc
	stopped  bool
}

// CaptureVideoStart encodes live preview frames into an MP4 file.
func (session *Session) CaptureVideoStart(callback model.CaptureCallback) {
	session.mu.Lock()
	if !session.opened {
		session.mu.Unlock()
		callback.Error(ErrNotOpened.Error())
		return
	}
	if session.video != nil {
		session.mu.Unlock()
		callback.Error("video capture already running")
		return
	}
	rec, err := session.startRecordingLocked("video", "VID", ".mp4", videoArgs)
	if err != nil {
		session.mu.Unlock()
		callback.Error(err.Error())
		return
	}
	rec.callback = callback
	rec.frames = make(chan []byte, videoFrameBuffer)
	session.video = rec
	session.mu.Unlock()

	session.log.Infow("video capture started", "path", rec.path)
	callback.Begin()
	go session.runVideo(rec)
}

// CaptureVideoStop finishes the active video capture; completion is reported
// through the start callback once the file is finalized.
func (session *Session) CaptureVideoStop() {
	session.mu.Lock()
	defer session.mu.Unlock()
	rec := session.video
	if rec == nil {
		return
	}
	session.video = nil
	close(rec.frames)
}

// CaptureAudioStart records the default audio input into an M4A file.
func (session *Session) CaptureAudioStart(callback model.CaptureCallback) {
	session.mu.Lock()
	if session.audio != nil {
		session.mu.Unlock()
		callback.Error("audio capture already running")
		return
	}
	rec, err := session.startRecordingLocked("audio", "AUD", ".m4a", session.audioArgs)
	if err != nil {
		session.mu.Unlock()
		callback.Error(err.Error())
		return
	}
	rec.callback = callback
	session.audio = rec
	session.mu.Unlock()

	session.log.Infow("audio capture started", "path", rec.path)
	callback.Begin()
	go session.runAudio(rec)
}

// CaptureAudioStop asks ffmpeg to finalize the audio file.
func (session *Session) CaptureAudioStop() {
	session.mu.Lock()
	rec := session.audio
	session.audio = nil
	session.mu.Unlock()
	if rec == nil {
		return
	}
	stdin := rec.process.Stdin()
	_, _ = stdin.Write([]byte("q"))
	_ = stdin.Close()
}

// StartPlayMic loops the default audio input back to the default output.
func (session *Session) StartPlayMic(callback model.PlayCallback) {
	session.mu.Lock()
	if session.mic != nil {
		session.mu.Unlock()
		callback.Error("mic playback already running")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	process, err := session.config.Launcher.Start(ctx, session.config.FFmpegPath, session.micArgs()...)
	if err != nil {
		session.mu.Unlock()
		cancel()
		callback.Error(err.Error())
		return
	}
	play := &playback{process: process, callback: callback, cancel: cancel}
	session.mic = play
	session.mu.Unlock()

	callback.Begin()
	go func() {
		err := process.Wait()
		cancel()
		session.mu.Lock()
		stopped := play.stopped
		if session.mic == play {
			session.mic = nil
		}
		session.mu.Unlock()
		if err != nil && !stopped {
			callback.Error(err.Error())
			return
		}
		callback.Complete()
	}()
}

// StopPlayMic ends microphone playback.
func (session *Session) StopPlayMic() {
	session.mu.Lock()
	play := session.mic
	session.mic = nil
	if play != nil {
		play.stopped = true
	}
	session.mu.Unlock()
	if play != nil {
		play.cancel()
	}
}

func (session *Session) startRecordingLocked(kind, prefix, extension string, args func(string) []string) (*recording, error) {
	path, err := session.mediaPath(prefix, extension)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	process, err := session.config.Launcher.Start(ctx, session.config.FFmpegPath, args(path)...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("start %s capture: %w", kind, err)
	}
	return &recording{kind: kind, path: path, process: process, cancel: cancel}, nil
}

func (session *Session) runVideo(rec *recording) {
	stdin := rec.process.Stdin()
	var writeErr error
	for frame := range rec.frames {
		if _, err := stdin.Write(frame); err != nil {
			writeErr = err
			session.mu.Lock()
			if session.video == rec {
				session.video = nil
			}
			session.mu.Unlock()
			break
		}
	}
	_ = stdin.Close()
	waitErr := rec.process.Wait()
	rec.cancel()
	session.finish(rec, errors.Join(writeErr, waitErr))
}

func (session *Session) runAudio(rec *recording) {
	err := rec.process.Wait()
	rec.cancel()
	session.mu.Lock()
	if session.audio == rec {
		session.audio = nil
	}
	session.mu.Unlock()
	session.finish(rec, err)
}

func (session *Session) finish(rec *recording, err error) {
	session.mu.Lock()
	dropped := rec.dropped
	session.mu.Unlock()

	if err != nil {
		session.log.Errorw("capture failed", "kind", rec.kind, "path", rec.path, "error", err)
		rec.callback.Error(err.Error())
		return
	}
	session.log.Infow("capture finished", "kind", rec.kind, "path", rec.path, "dropped_frames", dropped)
	rec.callback.Complete(rec.path)
}

func videoArgs(path string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-use_wallclock_as_timestamps", "1",
		"-f", "mjpeg",
		"-i", "-",
		"-fps_mode", "vfr",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-pix_fmt", "yuv420p",
		path,
	}
}

func (session *Session) audioArgs(path string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", session.config.AudioFormat,
		"-i", session.config.AudioInput,
		"-c:a", "aac",
		path,
	}
}

func (session *Session) micArgs() []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
		"-f", session.config.AudioFormat,
		"-i", session.config.AudioInput,
		"-f", session.config.AudioFormat,
		session.config.AudioInput,
	}
}
