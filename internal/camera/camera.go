// Package camera grabs still frames for face verification by running an
// external capture command (fswebcam, ffmpeg, libcamera-still, ...) that
// writes a JPEG to stdout. Terminals have no camera API of their own, so the
// station operator configures whatever tool their hardware ships with.
package camera

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Error reports a failed capture. It wraps the underlying exec failure and
// keeps whatever the tool printed to stderr.
type Error struct {
	Cmd    string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("camera command %q: %v: %s", e.Cmd, e.Err, e.Stderr)
	}

	return fmt.Sprintf("camera command %q: %v", e.Cmd, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Command is a FrameSource backed by an external capture command.
type Command struct {
	name string
	args []string
}

// New parses a capture command line, e.g. "fswebcam -q --jpeg 80 --save -".
func New(cmdline string) (*Command, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty camera command")
	}

	return &Command{name: fields[0], args: fields[1:]}, nil
}

// Frame runs the capture command and returns its stdout as a JPEG frame.
func (c *Command) Frame(ctx context.Context) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, c.name, c.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &Error{
			Cmd:    c.name,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	if stdout.Len() == 0 {
		return nil, &Error{Cmd: c.name, Err: fmt.Errorf("no image data produced")}
	}

	return stdout.Bytes(), nil
}
