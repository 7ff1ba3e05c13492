package runtime

// Undefined is the sentinel produced by lookups that miss. It carries the
// name that was looked up so it can be reported later.
type Undefined interface {
	Name() string
	Reason() string
	ToString() (string, error)
	isUndefined()
}

type baseUndefined struct{}

func (baseUndefined) isUndefined() {}

// StrictUndefined fails when rendered.
type StrictUndefined struct {
	baseUndefined
	name string
}

func (s StrictUndefined) Name() string { return s.name }

func (s StrictUndefined) Reason() string {
	if s.name != "" {
		return "strict undefined variable '" + s.name + "'"
	}
	return "strict undefined"
}

func (s StrictUndefined) ToString() (string, error) {
	return "", NewUndefinedError(s.name)
}

// DebugUndefined renders as the empty string.
type DebugUndefined struct {
	baseUndefined
	name string
}

func (d DebugUndefined) Name() string { return d.name }

func (d DebugUndefined) Reason() string {
	if d.name != "" {
		return "undefined variable '" + d.name + "'"
	}
	return "undefined"
}

func (d DebugUndefined) ToString() (string, error) {
	return "", nil
}

// NewUndefined returns an undefined value for name.
func NewUndefined(name string, strict bool) Undefined {
	if strict {
		return StrictUndefined{name: name}
	}
	return DebugUndefined{name: name}
}

// IsUndefined reports whether value is an undefined sentinel.
func IsUndefined(value interface{}) bool {
	if value == nil {
		return false
	}
	_, ok := value.(Undefined)
	return ok
}

// MakeUndefined returns value when present, otherwise an undefined carrying name.
func MakeUndefined(value interface{}, name string, present bool) interface{} {
	if present {
		return value
	}
	return DebugUndefined{name: name}
}
