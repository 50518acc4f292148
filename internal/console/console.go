// Package console is the application's log output: timestamped lines with nestable prefixes.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Console receives progress and request logs.
type Console interface {
	Printf(format string, a ...any)

	PushPrefix(format string, a ...any)
	PopPrefix()
}

type writerConsole struct {
	mu       sync.Mutex
	w        io.Writer
	now      func() time.Time
	prefixes []string
}

// New returns a Console writing to w. Each line starts with "[15:04:05] " and the current
// prefixes.
func New(w io.Writer) Console {
	return &writerConsole{w: w, now: time.Now}
}

func (c *writerConsole) Printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(c.now().Format("15:04:05"))
	b.WriteString("] ")
	for _, prefix := range c.prefixes {
		b.WriteString(prefix)
	}
	fmt.Fprintf(&b, format, a...)
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
	_, _ = io.WriteString(c.w, b.String())
}

func (c *writerConsole) PushPrefix(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefixes = append(c.prefixes, fmt.Sprintf(format, a...))
}

func (c *writerConsole) PopPrefix() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prefixes) > 0 {
		c.prefixes = c.prefixes[:len(c.prefixes)-1]
	}
}

// Discard returns a Console that drops everything.
func Discard() Console {
	return discard{}
}

type discard struct{}

func (discard) Printf(string, ...any)     {}
func (discard) PushPrefix(string, ...any) {}
func (discard) PopPrefix()                {}
