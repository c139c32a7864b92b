package object

import "unicode/utf8"

// Shape is the closed set of visual representations a runtime value maps
// to. The presentation layer switches on it; the core never renders.
type Shape int

const (
	ShapeScalar   Shape = iota // labeled value box
	ShapeChars                 // per-character cell row
	ShapeSequence              // indexed cell row
	ShapeMapping               // key/value rows
	ShapeTree                  // node diagram
	ShapeObject                // expandable attribute panel
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeChars:
		return "chars"
	case ShapeSequence:
		return "sequence"
	case ShapeMapping:
		return "mapping"
	case ShapeTree:
		return "tree"
	case ShapeObject:
		return "object"
	default:
		return "scalar"
	}
}

// Strings up to this many characters render as a plain scalar box instead
// of a per-character row.
const ShortStringLen = 3

var treeValueKeys = []string{"value", "val", "data", "key"}
var treeChildKeys = []string{"left", "right", "children"}

// ShapeOf classifies a runtime value. Dicts that look like binary-tree
// nodes (a value-ish key alongside a child-ish key) get the tree shape;
// the key-overlap test is deliberate and documented rather than duck-typed.
func ShapeOf(o Object) Shape {
	switch v := o.(type) {
	case *String:
		if utf8.RuneCountInString(v.Value) <= ShortStringLen {
			return ShapeScalar
		}
		return ShapeChars
	case *List, *Tuple:
		return ShapeSequence
	case *Dict:
		if TreeLike(v) {
			return ShapeTree
		}
		return ShapeMapping
	case *Instance:
		return ShapeObject
	default:
		return ShapeScalar
	}
}

// TreeLike reports whether a dict structurally resembles a tree node: its
// string keys must include at least one of {value, val, data, key} and at
// least one of {left, right, children}.
func TreeLike(d *Dict) bool {
	keys := map[string]bool{}
	for _, k := range d.StringKeys() {
		keys[k] = true
	}
	hasValue := false
	for _, k := range treeValueKeys {
		if keys[k] {
			hasValue = true
			break
		}
	}
	if !hasValue {
		return false
	}
	for _, k := range treeChildKeys {
		if keys[k] {
			return true
		}
	}
	return false
}
