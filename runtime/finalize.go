package runtime

import (
	"fmt"
	"strings"
)

// Finalize converts value to output text.
//
// nil prints as the empty string. Booleans and numbers print in plain form
// and are never escaped. Safe markup, including wire objects marked
// html-safe, prints verbatim. Sequences, mappings and structs cannot be
// printed and yield a CompositeValueError, even when they implement
// fmt.Stringer. Everything else prints as its string form, HTML-escaped when
// autoescape is set.
func Finalize(value interface{}, autoescape bool) (string, error) {
	if value == nil {
		return "", nil
	}

	switch v := value.(type) {
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case Markup:
		return string(v), nil
	case string:
		if autoescape {
			return Escape(v), nil
		}
		return v, nil
	case Undefined:
		return v.ToString()
	}

	if n, ok := classifyNumber(value); ok {
		return n.String(), nil
	}
	if m, ok := AsMarkup(value); ok {
		return string(m), nil
	}

	if isComposite(value) {
		return "", NewCompositeValueError(value)
	}

	var s string
	if stringer, ok := value.(fmt.Stringer); ok {
		s = stringer.String()
	} else {
		s = fmt.Sprintf("%v", value)
	}

	if autoescape {
		return Escape(s), nil
	}
	return s, nil
}

// Concat finalizes each piece with info's policy and joins them. When info
// autoescapes the result is marked safe, so it is not escaped again later.
func Concat(info *RuntimeInfo, pieces ...interface{}) (interface{}, error) {
	var b strings.Builder
	for _, piece := range pieces {
		s, err := info.Finalize(piece)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
	}
	if info.autoescape {
		return MarkSafe(b.String()), nil
	}
	return b.String(), nil
}
