// Package runtimeio feeds input() calls. A Queue serves scripted lines
// from a scene manifest; Interactive falls back to the terminal when the
// process has one.
package runtimeio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var ErrInputUnavailable = errors.New("input is not available in non-interactive mode")

// Queue serves pre-scripted input lines in order. When the script runs
// out it defers to the fallback, or fails if there is none.
type Queue struct {
	lines    []string
	fallback func(prompt string) (string, error)
}

func NewQueue(lines []string) *Queue {
	return &Queue{lines: append([]string{}, lines...)}
}

// WithFallback sets what happens after the scripted lines are exhausted.
func (q *Queue) WithFallback(fn func(prompt string) (string, error)) *Queue {
	q.fallback = fn
	return q
}

func (q *Queue) ReadLine(prompt string) (string, error) {
	if len(q.lines) > 0 {
		line := q.lines[0]
		q.lines = q.lines[1:]
		return line, nil
	}
	if q.fallback != nil {
		return q.fallback(prompt)
	}
	return "", ErrInputUnavailable
}

// Remaining reports how many scripted lines are left unconsumed.
func (q *Queue) Remaining() int { return len(q.lines) }

// Interactive reads from the controlling terminal.
type Interactive struct{}

func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (Interactive) ReadLine(prompt string) (string, error) {
	if !IsInteractive() {
		return "", ErrInputUnavailable
	}
	if prompt != "" {
		_, _ = fmt.Fprint(os.Stdout, prompt)
	}
	line, err := readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrInputUnavailable
		}
		return "", err
	}
	return line, nil
}

func readLine() (string, error) {
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
