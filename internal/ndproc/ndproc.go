// Package ndproc drives the collaborator subprocesses the pipeline
// hands off to: the `--patch-back` command that receives formatted hex
// text and emits patch records, and the `--pager` command the final
// output is paged through.
package ndproc

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/acomagu/bufpipe"
	"nd/internal/bytestream"
)

// Subprocess runs `bash -c cmd`, buffering everything written to it
// through an unbounded in-memory pipe instead of the OS pipe's small
// fixed buffer, so a pipeline stage can push formatted segments to it
// without blocking on how fast the child drains its stdin (the usual
// way a bidirectional subprocess pump deadlocks: the child blocks
// writing a large stdout line while its stdin-feeder blocks writing a
// full OS pipe, and neither side is draining the other).
type Subprocess struct {
	cmd *exec.Cmd
	in  *bufpipe.PipeWriter
	out io.ReadCloser
}

// Start launches shellCmd under bash, connecting stdin to the
// Subprocess's Write side and leaving stderr attached to the parent
// process's stderr for diagnostics.
func Start(shellCmd string) (*Subprocess, error) {
	pr, pw := bufpipe.New(nil)

	cmd := exec.Command("bash", "-c", shellCmd)
	cmd.Stdin = pr
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ndproc: stdout pipe for %q: %w", shellCmd, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ndproc: start %q: %w", shellCmd, err)
	}

	return &Subprocess{cmd: cmd, in: pw, out: stdout}, nil
}

// Write sends bytes to the subprocess's stdin.
func (s *Subprocess) Write(p []byte) (int, error) {
	return s.in.Write(p)
}

// Stdout wraps the subprocess's stdout as a RawSource, the bottom of a
// bytestream.EofStream for whatever parses its output (hextext.Reader,
// for a patch-back command's patch records).
func (s *Subprocess) Stdout() bytestream.RawSource {
	return bytestream.NewRaw(s.out, 1)
}

// CloseWrite signals EOF on the subprocess's stdin. Callers must fully
// drain Stdout() before calling Wait, per os/exec's own contract: Wait
// closes the command's pipes once the process has exited, so reads
// started afterward are unreliable.
func (s *Subprocess) CloseWrite() error {
	if err := s.in.Close(); err != nil {
		return fmt.Errorf("ndproc: close stdin: %w", err)
	}
	return nil
}

// Wait waits for the subprocess to exit, wrapping any non-zero exit
// with the command line that produced it.
func (s *Subprocess) Wait() error {
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ndproc: %q: %w", s.cmd.Args, err)
	}
	return nil
}

// Pager starts shellCmd under bash with its stdin wired to a pipe the
// caller writes the final output into, and its stdout/stderr attached
// directly to the parent process's so an interactive pager (less, more)
// can draw on the real terminal.
type Pager struct {
	cmd *exec.Cmd
	in  io.WriteCloser
}

// StartPager launches shellCmd as the `--pager` collaborator.
func StartPager(shellCmd string) (*Pager, error) {
	cmd := exec.Command("bash", "-c", shellCmd)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ndproc: stdin pipe for pager %q: %w", shellCmd, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ndproc: start pager %q: %w", shellCmd, err)
	}
	return &Pager{cmd: cmd, in: in}, nil
}

// Write sends output bytes to the pager.
func (p *Pager) Write(b []byte) (int, error) {
	return p.in.Write(b)
}

// CloseAndWait signals EOF to the pager and waits for it to exit (and,
// typically, for the user to quit it).
func (p *Pager) CloseAndWait() error {
	if err := p.in.Close(); err != nil {
		return fmt.Errorf("ndproc: close pager stdin: %w", err)
	}
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("ndproc: pager %q: %w", p.cmd.Args, err)
	}
	return nil
}
