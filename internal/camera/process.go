package camera

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Process is a running helper command with piped stdin and stdout.
type Process interface {
	Stdin() io.WriteCloser
	Stdout() io.Reader
	Wait() error
}

// Launcher starts helper commands (ffmpeg, v4l2-ctl).
type Launcher interface {
	Start(ctx context.Context, name string, args ...string) (Process, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecLauncher runs commands with os/exec.
type ExecLauncher struct{}

// Start launches name with args; the process is killed when ctx is cancelled.
func (ExecLauncher) Start(ctx context.Context, name string, args ...string) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%s stdin: %w", name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%s stdout: %w", name, err)
	}
	stderr := &tailBuffer{limit: 4096}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}
	return &execProcess{name: name, cmd: cmd, stdin: stdin, stdout: stdout, stderr: stderr}, nil
}

// Output runs name to completion and returns its stdout.
func (ExecLauncher) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w (%s)", name, err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

type execProcess struct {
	name   string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.Reader
	stderr *tailBuffer
}

func (process *execProcess) Stdin() io.WriteCloser { return process.stdin }

func (process *execProcess) Stdout() io.Reader { return process.stdout }

func (process *execProcess) Wait() error {
	if err := process.cmd.Wait(); err != nil {
		if detail := strings.TrimSpace(process.stderr.String()); detail != "" {
			return fmt.Errorf("%s: %w: %s", process.name, err, detail)
		}
		return fmt.Errorf("%s: %w", process.name, err)
	}
	return nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	data  []byte
}

func (buffer *tailBuffer) Write(p []byte) (int, error) {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()
	buffer.data = append(buffer.data, p...)
	if overflow := len(buffer.data) - buffer.limit; overflow > 0 {
		buffer.data = append([]byte(nil), buffer.data[overflow:]...)
	}
	return len(p), nil
}

func (buffer *tailBuffer) String() string {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()
	return string(buffer.data)
}
