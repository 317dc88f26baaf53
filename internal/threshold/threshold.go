// Package threshold implements the Nagios plugin range syntax used by the
// --warning and --critical options.
//
//	n     alert unless value == n
//	n:    alert if value < n
//	:n    alert if value > n (lower bound 0)
//	~:n   alert if value > n (no lower bound)
//	n:m   alert if value < n or value > m
//	@...  invert: alert if value lies inside the range
package threshold

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a parsed threshold range
type Range struct {
	Start int64
	End   int64
	// NoStart means the range is unbounded below (~)
	NoStart bool
	// NoEnd means the range is unbounded above
	NoEnd bool
	// Inverted ranges alert when the value lies inside them (@)
	Inverted bool
}

// InvalidRangeError is returned for a malformed range expression
type InvalidRangeError struct {
	Spec   string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range %q: %s", e.Spec, e.Reason)
}

// Parse parses a range expression
func Parse(spec string) (Range, error) {
	invalid := func(reason string) (Range, error) {
		return Range{}, &InvalidRangeError{Spec: spec, Reason: reason}
	}

	body := strings.TrimSpace(spec)
	if body == "" {
		return invalid("empty range")
	}

	var r Range
	if rest, ok := strings.CutPrefix(body, "@"); ok {
		r.Inverted = true
		body = rest
		if body == "" {
			return invalid("missing range after @")
		}
	}

	startStr, endStr, hasColon := strings.Cut(body, ":")
	if !hasColon {
		n, err := parseBound(body)
		if err != nil {
			return invalid(err.Error())
		}
		r.Start, r.End = n, n
		return r, nil
	}

	switch startStr {
	case "":
		r.Start = 0
	case "~":
		r.NoStart = true
	default:
		n, err := parseBound(startStr)
		if err != nil {
			return invalid(fmt.Sprintf("start: %v", err))
		}
		r.Start = n
	}

	if endStr == "" {
		if startStr == "" || r.NoStart {
			return invalid("range has no bounds")
		}
		r.NoEnd = true
	} else {
		n, err := parseBound(endStr)
		if err != nil {
			return invalid(fmt.Sprintf("end: %v", err))
		}
		r.End = n
	}

	if !r.NoStart && !r.NoEnd && r.Start > r.End {
		return invalid(fmt.Sprintf("start %d is greater than end %d", r.Start, r.End))
	}

	return r, nil
}

func parseBound(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return n, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(spec string) Range {
	r, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return r
}

// Excludes reports whether value lies in the alert zone of the range
func (r Range) Excludes(value int64) bool {
	outside := (!r.NoStart && value < r.Start) || (!r.NoEnd && value > r.End)
	if r.Inverted {
		return !outside
	}
	return outside
}

// String returns the canonical form of the range. An exact range n is
// written n:n because perfdata consumers read a bare n as 0:n.
func (r Range) String() string {
	var b strings.Builder
	if r.Inverted {
		b.WriteByte('@')
	}
	if r.NoStart {
		b.WriteByte('~')
	} else {
		b.WriteString(strconv.FormatInt(r.Start, 10))
	}
	b.WriteByte(':')
	if !r.NoEnd {
		b.WriteString(strconv.FormatInt(r.End, 10))
	}
	return b.String()
}
