package present

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"pyviz/internal/object"
)

// Console renders presenter events as indented text lines, one per event.
// It backs headless runs and the stepping console.
type Console struct {
	out io.Writer
	in  *bufio.Reader

	// Quiet suppresses everything except output, input, and notices.
	Quiet bool

	nextHandle ScopeHandle
	levels     map[ScopeHandle]int
	names      map[ScopeHandle]string
}

func NewConsole(out io.Writer, in io.Reader) *Console {
	c := &Console{
		out:    out,
		levels: map[ScopeHandle]int{},
		names:  map[ScopeHandle]string{},
	}
	if in != nil {
		c.in = bufio.NewReader(in)
	}
	return c
}

func (c *Console) printf(level int, format string, args ...any) {
	fmt.Fprintf(c.out, "%s%s\n", strings.Repeat("  ", level), fmt.Sprintf(format, args...))
}

func (c *Console) HighlightLine(line int) {
	if !c.Quiet {
		c.printf(0, "-- line %d", line)
	}
}

func (c *Console) ClearHighlight() {}

func (c *Console) OpenScope(name, args string, level int) ScopeHandle {
	h := c.nextHandle
	c.nextHandle++
	c.levels[h] = level
	c.names[h] = name
	if !c.Quiet {
		c.printf(level, "open %s(%s)", name, args)
	}
	return h
}

func (c *Console) CloseScope(h ScopeHandle) {
	if !c.Quiet {
		c.printf(c.levels[h], "close %s", c.names[h])
	}
}

func (c *Console) ShowVariable(h ScopeHandle, name, value string, shape object.Shape) {
	if !c.Quiet {
		c.printf(c.levels[h]+1, "%s = %s  [%s]", name, value, shape)
	}
}

func (c *Console) RemoveVariable(h ScopeHandle, name string) {
	if !c.Quiet {
		c.printf(c.levels[h]+1, "del %s", name)
	}
}

func (c *Console) EmitOutput(text, source string) {
	c.printf(0, "out: %s", text)
}

func (c *Console) EmitCondition(expr string, result bool) {
	if !c.Quiet {
		verdict := "False"
		if result {
			verdict = "True"
		}
		c.printf(0, "cond: %s -> %s", expr, verdict)
	}
}

func (c *Console) EmitLoopProgress(label string) {
	if !c.Quiet {
		c.printf(0, "loop: %s", label)
	}
}

func (c *Console) RequestInput(prompt string) (string, error) {
	if c.in == nil {
		return "", fmt.Errorf("no input attached")
	}
	if prompt != "" {
		fmt.Fprint(c.out, prompt)
	}
	line, err := c.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) Notify(kind NoticeKind, message string) {
	c.printf(0, "note[%s]: %s", kind, message)
}
