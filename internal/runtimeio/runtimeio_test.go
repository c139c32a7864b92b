package runtimeio

import (
	"errors"
	"testing"
)

func TestQueueServesInOrder(t *testing.T) {
	q := NewQueue([]string{"first", "second"})
	if q.Remaining() != 2 {
		t.Fatalf("expected 2 remaining, got %d", q.Remaining())
	}

	line, err := q.ReadLine("? ")
	if err != nil || line != "first" {
		t.Fatalf("expected first, got %q (%v)", line, err)
	}
	line, err = q.ReadLine("? ")
	if err != nil || line != "second" {
		t.Fatalf("expected second, got %q (%v)", line, err)
	}
	if q.Remaining() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Remaining())
	}
}

func TestQueueExhaustionFailsWithoutFallback(t *testing.T) {
	q := NewQueue(nil)
	_, err := q.ReadLine("? ")
	if !errors.Is(err, ErrInputUnavailable) {
		t.Fatalf("expected ErrInputUnavailable, got %v", err)
	}
}

func TestQueueFallback(t *testing.T) {
	var gotPrompt string
	q := NewQueue([]string{"scripted"}).WithFallback(func(prompt string) (string, error) {
		gotPrompt = prompt
		return "from fallback", nil
	})

	line, _ := q.ReadLine("a? ")
	if line != "scripted" {
		t.Fatalf("scripted lines go first, got %q", line)
	}
	if gotPrompt != "" {
		t.Fatal("fallback must not run while lines remain")
	}

	line, err := q.ReadLine("b? ")
	if err != nil || line != "from fallback" {
		t.Fatalf("expected fallback line, got %q (%v)", line, err)
	}
	if gotPrompt != "b? " {
		t.Fatalf("fallback should receive the prompt, got %q", gotPrompt)
	}
}

func TestQueueCopiesInput(t *testing.T) {
	lines := []string{"a"}
	q := NewQueue(lines)
	lines[0] = "mutated"
	got, _ := q.ReadLine("")
	if got != "a" {
		t.Fatalf("queue must copy its input, got %q", got)
	}
}
