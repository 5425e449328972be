package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrEmptyInput is returned by prompts that require an answer
var ErrEmptyInput = errors.New("input required")

// Reader reads lines from the user. One Reader should own the input for the
// whole program so that buffered bytes are not lost between prompts.
type Reader struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

// NewReader reads lines from in and writes prompts to out. Hidden password
// entry is used only when in is a terminal.
func NewReader(in io.Reader, out io.Writer) *Reader {
	r := &Reader{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.fd = int(f.Fd())
		r.tty = true
	}
	return r
}

// NewStdinReader reads from os.Stdin and prompts on os.Stdout
func NewStdinReader() *Reader {
	return NewReader(os.Stdin, os.Stdout)
}

// ReadLine reads one line with surrounding whitespace trimmed. io.EOF is
// returned only when no text preceded the end of input.
func (r *Reader) ReadLine() (string, error) {
	line, err := r.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Prompt prints label and reads a line
func (r *Reader) Prompt(label string) (string, error) {
	fmt.Fprintf(r.out, "%s: ", label)
	return r.ReadLine()
}

// PromptRequired re-asks until a non-empty answer is given, up to three
// times
func (r *Reader) PromptRequired(label string) (string, error) {
	for i := 0; i < 3; i++ {
		v, err := r.Prompt(label)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%s: %w", label, ErrEmptyInput)
}

// PromptDefault prints label with def and returns def for an empty answer
func (r *Reader) PromptDefault(label, def string) (string, error) {
	v, err := r.Prompt(fmt.Sprintf("%s [%s]", label, def))
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

// ReadPassword prompts without echo on a terminal; otherwise it reads a
// plain line
func (r *Reader) ReadPassword(label string) (string, error) {
	fmt.Fprintf(r.out, "%s: ", label)
	if !r.tty {
		return r.ReadLine()
	}
	b, err := term.ReadPassword(r.fd)
	fmt.Fprintln(r.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// Confirm asks a yes/no question, defaulting to no
func (r *Reader) Confirm(label string) (bool, error) {
	v, err := r.Prompt(label + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(v) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// IsTerminal checks if stdout is a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Size returns the terminal width and height, or 80x24 when stdout is not a
// terminal
func Size() (width, height int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}
