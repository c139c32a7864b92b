package limits

import (
	"pyviz/internal/object"
)

// Recursion ceilings. Self-recursive calls get a much lower ceiling so a
// runaway factorial stays watchable instead of flooding the display.
const (
	MaxCallDepth     = 50
	MaxSelfRecursion = 8
)

// RecursionTracker watches the dynamic call chain. When a chain gets too
// deep the engine stops descending and substitutes an approximate value
// from BaseCaseValue, flagging the run as approximate rather than failing.
type RecursionTracker struct {
	stack  []string
	counts map[string]int
}

func NewRecursionTracker() *RecursionTracker {
	return &RecursionTracker{counts: map[string]int{}}
}

// Depth is the current total call depth.
func (t *RecursionTracker) Depth() int { return len(t.stack) }

// SelfDepth is how many frames of name are currently on the chain.
func (t *RecursionTracker) SelfDepth(name string) int { return t.counts[name] }

// IsRecursive reports whether a call to name would re-enter name.
func (t *RecursionTracker) IsRecursive(name string) bool { return t.counts[name] > 0 }

// CanRecurse reports whether one more call to name fits under the ceilings.
func (t *RecursionTracker) CanRecurse(name string) bool {
	if len(t.stack) >= MaxCallDepth {
		return false
	}
	if t.counts[name] >= MaxSelfRecursion {
		return false
	}
	return true
}

func (t *RecursionTracker) StartCall(name string) {
	t.stack = append(t.stack, name)
	t.counts[name]++
}

func (t *RecursionTracker) EndCall() {
	if len(t.stack) == 0 {
		return
	}
	name := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	if t.counts[name] > 0 {
		t.counts[name]--
	}
}

// CallChain renders the active chain, innermost last.
func (t *RecursionTracker) CallChain() []string {
	return append([]string{}, t.stack...)
}

// BaseCaseValue approximates the result of a call that was cut off at the
// recursion ceiling. Well-known teaching functions get plausible values;
// anything else gets a neutral 1 so products and sums stay finite.
func BaseCaseValue(name string, args []object.Object) object.Object {
	firstInt := func() (int64, bool) {
		if len(args) == 0 {
			return 0, false
		}
		n, ok := args[0].(*object.Integer)
		if !ok {
			return 0, false
		}
		return n.Value, true
	}
	switch name {
	case "factorial", "fact":
		if n, ok := firstInt(); ok {
			if n <= 1 {
				return &object.Integer{Value: 1}
			}
			return &object.Integer{Value: n}
		}
	case "fibonacci", "fib":
		if n, ok := firstInt(); ok {
			if n <= 1 {
				return &object.Integer{Value: n}
			}
			return &object.Integer{Value: 1}
		}
	case "gcd":
		if len(args) == 2 {
			a, aok := args[0].(*object.Integer)
			b, bok := args[1].(*object.Integer)
			if aok && bok {
				if b.Value == 0 {
					return &object.Integer{Value: a.Value}
				}
				return &object.Integer{Value: 1}
			}
		}
	case "power", "pow":
		if len(args) == 2 {
			base, bok := args[0].(*object.Integer)
			exp, eok := args[1].(*object.Integer)
			if bok && eok {
				if exp.Value == 0 {
					return &object.Integer{Value: 1}
				}
				return &object.Integer{Value: base.Value}
			}
		}
	}
	return &object.Integer{Value: 1}
}
