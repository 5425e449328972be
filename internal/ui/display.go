// Package ui renders MindScape screens to a terminal writer.
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"

	"mindscape/internal/chat"
)

// Display writes styled output. It is safe for concurrent use so that
// notices raised on background goroutines do not interleave with a render.
type Display struct {
	mu       sync.Mutex
	out      io.Writer
	width    int
	styles   Styles
	renderer *glamour.TermRenderer
	now      func() time.Time
}

// Option customises a Display
type Option func(*Display)

// WithMarkdownStyle selects a glamour standard style such as "dark",
// "light" or "notty" instead of detecting one from the terminal
func WithMarkdownStyle(name string) Option {
	return func(d *Display) {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(name),
			glamour.WithWordWrap(wrapWidth(d.width)),
		)
		if err == nil {
			d.renderer = r
		}
	}
}

// WithClock replaces time.Now for relative timestamps
func WithClock(now func() time.Time) Option {
	return func(d *Display) { d.now = now }
}

// NewDisplay creates a display writing to out, wrapping at width columns
func NewDisplay(out io.Writer, width int, opts ...Option) *Display {
	if width <= 0 {
		width = 80
	}
	d := &Display{
		out:    out,
		width:  width,
		styles: DefaultStyles(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.renderer == nil {
		// Markdown is optional; plain text is printed when no renderer exists
		d.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrapWidth(width)),
		)
	}
	return d
}

func wrapWidth(width int) int {
	if width > 20 {
		return width - 10
	}
	return width
}

// Width returns the wrap width in columns
func (d *Display) Width() int {
	return d.width
}

func (d *Display) printf(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.out, format, args...)
}

func (d *Display) write(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	io.WriteString(d.out, s)
}

// ClearScreen clears the terminal
func (d *Display) ClearScreen() {
	d.write("\033[2J\033[H")
}

// PrintWelcome displays the chat banner and commands
func (d *Display) PrintWelcome(name string) {
	var b strings.Builder
	b.WriteString(d.styles.Title.Render("MindScape · your mental wellness companion"))
	b.WriteString("\n")
	if name != "" {
		b.WriteString(d.styles.Subtle.Render("Signed in as " + name))
		b.WriteString("\n")
	}
	b.WriteString(d.styles.Subtle.Render("Commands: /new | /sessions | /switch <id|n> | /history | /clear | /exit"))
	b.WriteString("\n\n")
	d.write(b.String())
}

// PrintSeparator prints a horizontal rule
func (d *Display) PrintSeparator() {
	d.write(d.styles.Subtle.Render(strings.Repeat("─", min(d.width, 80))) + "\n")
}

// PrintPrompt displays the input prompt
func (d *Display) PrintPrompt() {
	d.write("\n" + d.styles.Prompt.Render("❯") + " ")
}

// PrintInfo displays an info message
func (d *Display) PrintInfo(msg string) {
	d.write(d.styles.Info.Render("ℹ "+msg) + "\n")
}

// PrintWarning displays a warning message
func (d *Display) PrintWarning(msg string) {
	d.write(d.styles.Warning.Render("⚠ "+msg) + "\n")
}

// PrintError displays an error message
func (d *Display) PrintError(err error) {
	d.write(d.styles.Error.Render(fmt.Sprintf("✗ Error: %v", err)) + "\n")
}

// PrintSuccess displays a success message
func (d *Display) PrintSuccess(msg string) {
	d.write(d.styles.Success.Render("✓ "+msg) + "\n")
}

// PrintGoodbye displays the goodbye message
func (d *Display) PrintGoodbye() {
	d.write("\n" + d.styles.Title.Render("Take care of yourself. See you soon! 👋") + "\n")
}

// Notify shows a transient notice
func (d *Display) Notify(n chat.Notice) {
	body := d.styles.Error.Bold(true).Render(n.Title)
	if n.Detail != "" {
		body += "\n" + n.Detail
	}
	d.write("\n" + d.styles.Notice.Render(body) + "\n")
}

// markdown renders assistant content, falling back to the raw text
func (d *Display) markdown(content string) string {
	if d.renderer == nil {
		return content
	}
	rendered, err := d.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}

func formatDuration(dur time.Duration) string {
	if dur < time.Second {
		return fmt.Sprintf("%dms", dur.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", dur.Seconds())
}

// since formats t relative to now
func since(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}
