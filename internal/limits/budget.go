package limits

import (
	"fmt"
	"time"
)

// DefaultMaxSteps bounds a run regardless of program shape. One unit is
// one statement dispatch.
const DefaultMaxSteps int64 = 2000

// Budget counts statement dispatches and optionally enforces a wall-clock
// deadline. The stepping engine charges it once per dispatch.
type Budget struct {
	limit    int64
	used     int64
	deadline time.Time
}

func NewBudget(limit int64) *Budget {
	if limit < 0 {
		limit = 0
	}
	return &Budget{limit: limit}
}

// WithDeadline sets an absolute wall-clock cutoff. A zero time disables it.
func (b *Budget) WithDeadline(t time.Time) *Budget {
	b.deadline = t
	return b
}

func (b *Budget) Limit() int64 {
	if b == nil {
		return 0
	}
	return b.limit
}

func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used
}

func MaxStepsMessage(limit int64) string {
	return fmt.Sprintf("step limit exceeded (%d steps)", limit)
}

type MaxStepsError struct {
	Limit int64
}

func (e MaxStepsError) Error() string {
	return MaxStepsMessage(e.Limit)
}

type DeadlineError struct {
	Deadline time.Time
}

func (e DeadlineError) Error() string {
	return "run exceeded its wall-clock deadline"
}

// Charge consumes n steps. A zero limit means unlimited steps, but the
// deadline still applies.
func (b *Budget) Charge(n int64) error {
	if b == nil {
		return nil
	}
	if !b.deadline.IsZero() && time.Now().After(b.deadline) {
		return DeadlineError{Deadline: b.deadline}
	}
	if b.limit == 0 || n <= 0 {
		return nil
	}
	if b.used+n > b.limit {
		return MaxStepsError{Limit: b.limit}
	}
	b.used += n
	return nil
}
