// Package fragment builds parameterized SQL clause fragments for partial
// updates and optional listing filters. A fragment is a partial statement
// clause (SET or WHERE) plus its positionally-bound parameter values, not yet
// a complete executable statement.
//
// Placeholder indices are derived from an explicit monotonic counter that
// advances only when a clause is actually appended, never by searching the
// value list. The invariant: the Nth clause carries placeholder $N and binds
// the Nth value, with no gaps, regardless of which optional clauses applied.
//
// Callers interpolate Fragment.Clause into a full statement and continue the
// placeholder sequence from len(Fragment.Values)+1 for any trailing parameter,
// such as a row identifier after a SET clause.
package fragment

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gaborage/jobly/apperror"
)

// Fragment is an ordered sequence of clauses joined by a fixed separator,
// plus the parameter values bound to them. The Nth clause's placeholder index
// is N (1-based) and corresponds to Values[N-1].
type Fragment struct {
	Clause string
	Values []any
}

// Empty reports whether the fragment carries no clauses. An empty fragment
// means the caller should run its unfiltered statement.
func (f Fragment) Empty() bool {
	return f.Clause == ""
}

// NextIndex returns the 1-based placeholder index a caller must use for the
// first parameter appended after this fragment's values.
func (f Fragment) NextIndex() int {
	return len(f.Values) + 1
}

// writer accumulates clauses and their bound values. next is the 1-based
// index of the placeholder the following bind will emit.
type writer struct {
	clauses []string
	values  []any
	next    int
}

func newWriter() *writer {
	return &writer{next: 1}
}

// bind appends one clause formed from the expression prefix and the next
// placeholder, binds value to it, and advances the counter.
func (w *writer) bind(prefix string, value any) {
	w.clauses = append(w.clauses, prefix+"$"+strconv.Itoa(w.next))
	w.values = append(w.values, value)
	w.next++
}

func (w *writer) fragment(separator string) Fragment {
	if len(w.clauses) == 0 {
		return Fragment{}
	}
	return Fragment{
		Clause: strings.Join(w.clauses, separator),
		Values: w.values,
	}
}

// BuildUpdate turns a sparse update payload into a SET-clause fragment.
// Each payload key becomes one clause `"<column>"=$<i>` where the column is
// columns[key] when the physical name differs from the logical one, else the
// key itself. Column names are quoted to tolerate reserved words and mixed
// case. Keys are processed in sorted order so identical payloads produce
// byte-identical fragments.
//
// An empty payload is an error, not a no-op.
func BuildUpdate(payload map[string]any, columns map[string]string) (Fragment, error) {
	if len(payload) == 0 {
		return Fragment{}, apperror.BadRequest("No data")
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	w := newWriter()
	for _, key := range keys {
		column, ok := columns[key]
		if !ok {
			column = key
		}
		w.bind(`"`+column+`"=`, payload[key])
	}

	return w.fragment(", "), nil
}
