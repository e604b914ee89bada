package fragment

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gaborage/jobly/apperror"
)

// Kind selects the comparison a filter rule emits.
type Kind int

const (
	// Contains emits a case-insensitive substring match (ILIKE). The bound
	// value is the raw substring wrapped in % wildcards; the wildcards live
	// in the parameter, never in the SQL text. Applied only for non-empty
	// string values.
	Contains Kind = iota

	// Min emits a greater-or-equal comparison against an integer-coerced
	// value. Non-coercible values are skipped.
	Min

	// Max emits a less-or-equal comparison against an integer-coerced
	// value. Non-coercible values are skipped.
	Max

	// FlagPositive emits a fixed greater-than-zero comparison with a bound
	// parameter of 0. Applied only when the value is the literal "true",
	// case-insensitively; the flag's truthiness itself is never bound.
	FlagPositive
)

// Rule maps one filter key to a physical column and a comparison kind.
type Rule struct {
	Key    string
	Column string
	Kind   Kind
}

// Spec describes the filters one listing operation recognizes. Rules are
// evaluated in declaration order, which fixes the clause order of the
// resulting fragment.
type Spec struct {
	Rules []Rule
}

// Bag is the raw, caller-supplied set of listing constraints before
// validation. A slice value marks a key that was supplied more than once in
// the request, which is rejected during validation.
type Bag map[string]any

// allowed returns the recognized filter keys in rule declaration order.
func (s Spec) allowed() []string {
	keys := make([]string, len(s.Rules))
	for i, r := range s.Rules {
		keys[i] = r.Key
	}
	return keys
}

func (s Spec) rule(key string) (Rule, bool) {
	for _, r := range s.Rules {
		if r.Key == key {
			return r, true
		}
	}
	return Rule{}, false
}

// BuildFilter validates the bag against the spec and assembles a WHERE-clause
// fragment with clauses joined by " AND ". Validation fully completes before
// any construction: unknown keys first, then repeated keys, then an inverted
// min/max range. Filters whose values do not qualify (empty string,
// non-coercible number, flag not "true") are skipped without consuming a
// placeholder index; if nothing qualifies the returned fragment is empty and
// the caller lists unfiltered.
func BuildFilter(bag Bag, spec Spec) (Fragment, error) {
	if err := validate(bag, spec); err != nil {
		return Fragment{}, err
	}

	w := newWriter()
	for _, r := range spec.Rules {
		value, ok := bag[r.Key]
		if !ok {
			continue
		}

		switch r.Kind {
		case Contains:
			s, ok := value.(string)
			if !ok || s == "" {
				continue
			}
			w.bind(r.Column+" ILIKE ", "%"+s+"%")
		case Min:
			n, ok := toInt(value)
			if !ok {
				continue
			}
			w.bind(r.Column+" >= ", n)
		case Max:
			n, ok := toInt(value)
			if !ok {
				continue
			}
			w.bind(r.Column+" <= ", n)
		case FlagPositive:
			if !isTrue(value) {
				continue
			}
			w.bind(r.Column+" > ", 0)
		}
	}

	return w.fragment(" AND "), nil
}

func validate(bag Bag, spec Spec) error {
	keys := make([]string, 0, len(bag))
	for key := range bag {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := spec.rule(key); !ok {
			return apperror.BadRequest("filter %q is not allowed; allowed filters are: %s",
				key, strings.Join(spec.allowed(), ", "))
		}
	}

	for _, key := range keys {
		if isMultiValue(bag[key]) {
			return apperror.BadRequest("filter %q cannot be supplied more than once", key)
		}
	}

	return validateRange(bag, spec)
}

// validateRange rejects an inverted numeric range when both a Min and a Max
// rule received coercible values. Equal bounds are accepted.
func validateRange(bag Bag, spec Spec) error {
	var (
		minRule, maxRule Rule
		minVal, maxVal   int
		hasMin, hasMax   bool
	)

	for _, r := range spec.Rules {
		value, ok := bag[r.Key]
		if !ok {
			continue
		}
		switch r.Kind {
		case Min:
			if n, ok := toInt(value); ok {
				minRule, minVal, hasMin = r, n, true
			}
		case Max:
			if n, ok := toInt(value); ok {
				maxRule, maxVal, hasMax = r, n, true
			}
		}
	}

	if hasMin && hasMax && minVal > maxVal {
		return apperror.BadRequest("%s cannot exceed %s", minRule.Key, maxRule.Key)
	}

	return nil
}

// isMultiValue reports whether the value arrived as a multi-value sequence,
// meaning the same key was supplied more than once.
func isMultiValue(value any) bool {
	switch value.(type) {
	case []string, []any:
		return true
	}
	return false
}

// toInt coerces query-parameter values to int. Strings are parsed, floats
// truncated. Anything else does not qualify.
func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func isTrue(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}
