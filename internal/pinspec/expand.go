// Package pinspec expands pin specifications from connection records into
// ordered pin sequences.
//
// A specification is a scalar or a list of scalars. A scalar of the form
// "a-b" with integer ends is an inclusive range in either direction.
package pinspec

import (
	"fmt"
	"strconv"
	"strings"
)

// Pin is a single pin reference: a number or a free-form label such as "GND".
type Pin struct {
	label   string
	number  int
	numeric bool
}

// Number returns a numeric pin.
func Number(n int) Pin {
	return Pin{number: n, numeric: true}
}

// Label returns a label pin.
func Label(s string) Pin {
	return Pin{label: s}
}

// Int returns the pin number and true for numeric pins.
func (p Pin) Int() (int, bool) {
	return p.number, p.numeric
}

// IsNumeric reports whether the pin is a number.
func (p Pin) IsNumeric() bool {
	return p.numeric
}

// String renders the pin as written.
func (p Pin) String() string {
	if p.numeric {
		return strconv.Itoa(p.number)
	}
	return p.label
}

// RangeError reports a range scalar whose ends are not integers.
type RangeError struct {
	Input string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("malformed pin range %q: both ends must be integers", e.Input)
}

// Expand flattens spec into an ordered pin list. Accepted scalars are
// strings and Go integer types; []any and []string are accepted as lists.
func Expand(spec any) ([]Pin, error) {
	var elems []any
	switch v := spec.(type) {
	case []any:
		elems = v
	case []string:
		for _, s := range v {
			elems = append(elems, s)
		}
	case []int:
		for _, n := range v {
			elems = append(elems, n)
		}
	default:
		elems = []any{spec}
	}

	var out []Pin
	for _, e := range elems {
		pins, err := expandScalar(e)
		if err != nil {
			return nil, err
		}
		out = append(out, pins...)
	}
	return out, nil
}

func expandScalar(e any) ([]Pin, error) {
	var s string
	switch v := e.(type) {
	case int:
		return []Pin{Number(v)}, nil
	case int64:
		return []Pin{Number(int(v))}, nil
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}

	if strings.Count(s, "-") == 1 {
		a, b, _ := strings.Cut(s, "-")
		from, errA := strconv.Atoi(strings.TrimSpace(a))
		to, errB := strconv.Atoi(strings.TrimSpace(b))
		if errA != nil || errB != nil {
			return nil, &RangeError{Input: s}
		}
		return span(from, to), nil
	}

	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return []Pin{Number(n)}, nil
	}
	return []Pin{Label(s)}, nil
}

// span returns the inclusive range from..to, counting down when from > to.
func span(from, to int) []Pin {
	step := 1
	if from > to {
		step = -1
	}
	out := make([]Pin, 0, abs(to-from)+1)
	for n := from; ; n += step {
		out = append(out, Number(n))
		if n == to {
			break
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
