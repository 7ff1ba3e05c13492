package runtime

import "html"

// Markup represents a string that should not be HTML-escaped
type Markup string

const (
	// WireMarkerKey is the key a JSON object carries to opt out of escaping.
	WireMarkerKey = "__jsonjinja_wire__"
	// WireHTMLSafe marks the object's "value" as pre-escaped markup.
	WireHTMLSafe = "html-safe"
)

// MarkSafe marks s as pre-escaped markup.
func MarkSafe(s string) Markup {
	return Markup(s)
}

// String returns the wrapped markup.
func (m Markup) String() string {
	return string(m)
}

// Escape HTML-escapes the five markup-significant characters: & < > ' and ".
func Escape(s string) string {
	return html.EscapeString(s)
}

// ToWire converts m into the JSON wire shape understood by other runtimes.
func ToWire(m Markup) map[string]interface{} {
	return map[string]interface{}{
		WireMarkerKey: WireHTMLSafe,
		"value":       string(m),
	}
}

// WireMarker returns the wire marker carried by value, if any.
func WireMarker(value interface{}) (string, bool) {
	m, ok := value.(map[string]interface{})
	if !ok {
		return "", false
	}
	marker, ok := m[WireMarkerKey]
	if !ok {
		return "", false
	}
	s, ok := marker.(string)
	return s, ok
}

// AsMarkup reports whether value is safe markup, either a Markup or a wire
// object marked html-safe, and returns it.
func AsMarkup(value interface{}) (Markup, bool) {
	switch v := value.(type) {
	case Markup:
		return v, true
	case map[string]interface{}:
		if marker, ok := WireMarker(v); ok && marker == WireHTMLSafe {
			return Markup(ToString(v["value"])), true
		}
	}
	return "", false
}
