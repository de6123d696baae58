// Package merge provides the building blocks for reconciling partial status
// fragments into a cumulative snapshot.
//
// Every function here is pure: inputs are never modified, and the result may
// share unchanged sub-trees with either input. Callers must therefore treat
// merged values as read-only.
package merge

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Skip records a subtree that could not be merged because the old and new
// values disagree on their shape. The old value is kept at Path.
type Skip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (s Skip) String() string {
	return fmt.Sprintf("%s: %s", s.Path, s.Reason)
}

// Diagnostics collects the skips produced by a single merge.
// A nil *Diagnostics discards everything.
type Diagnostics struct {
	skips []Skip
}

// Skip records a shape mismatch at p.
func (d *Diagnostics) Skip(p *field.Path, format string, args ...any) {
	if d == nil {
		return
	}
	d.skips = append(d.skips, Skip{Path: p.String(), Reason: fmt.Sprintf(format, args...)})
}

// Skips returns the recorded skips in the order they occurred.
func (d *Diagnostics) Skips() []Skip {
	if d == nil {
		return nil
	}
	return d.skips
}

// Len returns the number of recorded skips.
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	return len(d.skips)
}

// Value merges a nullable leaf. A set new value always wins; an unset one
// never erases what was already known.
func Value[T any](old, new *T) *T {
	if new == nil {
		return old
	}
	return new
}

// List merges a leaf list that is reported as a whole (e.g. a set of
// supported commands). A nil new list leaves old untouched.
func List[T any](old, new []T) []T {
	if new == nil {
		return old
	}
	return new
}

// Func merges two present values of the same node.
type Func[T any] func(d *Diagnostics, p *field.Path, old, new T) T

// Record merges a nullable record node. A nil new keeps old. A first
// observation is merged into the zero value, so nested collections are
// keyed the same way on every merge.
func Record[T any](d *Diagnostics, p *field.Path, old, new *T, fn Func[*T]) *T {
	switch {
	case new == nil:
		return old
	case old == nil:
		var zero T
		return fn(d, p, &zero, new)
	default:
		return fn(d, p, old, new)
	}
}

// Collection merges two lists whose elements are matched by structural
// identity rather than by position. Matching elements are merged in place,
// unseen elements are appended in the order they arrive, and elements only
// present in old are retained. Repeated identities within new merge into
// their first occurrence.
//
// Unseen elements are merged into the zero value of T, so fn must take the
// identity fields from new.
func Collection[T any, K comparable](d *Diagnostics, p *field.Path, old, new []T, key func(T) K, fn Func[T]) []T {
	if len(new) == 0 {
		return old
	}

	out := make([]T, len(old), len(old)+len(new))
	copy(out, old)

	index := make(map[K]int, len(old)+len(new))
	for i := range old {
		k := key(old[i])
		if _, dup := index[k]; !dup {
			index[k] = i
		}
	}

	var zero T
	for _, elem := range new {
		k := key(elem)
		if i, ok := index[k]; ok {
			out[i] = fn(d, p.Key(fmt.Sprint(k)), out[i], elem)
			continue
		}
		index[k] = len(out)
		out = append(out, fn(d, p.Key(fmt.Sprint(k)), zero, elem))
	}

	return out
}
