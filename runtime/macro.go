package runtime

import (
	"fmt"
	"strings"
)

// MacroFunc is the body of a compiled macro. It receives exactly one value
// per declared argument.
type MacroFunc func(args ...interface{}) (interface{}, error)

// Macro is a callable exported by a compiled template.
type Macro struct {
	Name      string
	Arguments []MacroArgument
	fn        MacroFunc
}

// MacroArgument represents a macro argument with optional default
type MacroArgument struct {
	Name       string
	Default    interface{}
	HasDefault bool
}

// WrapFunction builds a macro from its argument names and defaults. The
// defaults align with the tail of argNames, so two defaults for three
// arguments cover the second and third.
func WrapFunction(name string, argNames []string, defaults []interface{}, fn MacroFunc) *Macro {
	args := make([]MacroArgument, len(argNames))
	for i, argName := range argNames {
		args[i].Name = argName
		if didx := len(defaults) - (len(argNames) - i); didx >= 0 {
			args[i].Default = defaults[didx]
			args[i].HasDefault = true
		}
	}
	return &Macro{Name: name, Arguments: args, fn: fn}
}

// Call invokes the macro positionally. Extra arguments are ignored; missing
// ones take their default, or an undefined carrying the argument name.
func (m *Macro) Call(args ...interface{}) (interface{}, error) {
	return m.CallKwargs(args, nil)
}

// CallKwargs invokes the macro with positional and keyword arguments.
// Keywords fill positions not covered by args.
func (m *Macro) CallKwargs(args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	for key := range kwargs {
		if !m.HasArgument(key) {
			return nil, NewError(ErrorTypeTemplate, fmt.Sprintf("macro '%s' has no argument '%s'", m.Name, key))
		}
	}

	bound := make([]interface{}, len(m.Arguments))
	for i, arg := range m.Arguments {
		if i < len(args) {
			if _, dup := kwargs[arg.Name]; dup {
				return nil, NewError(ErrorTypeTemplate, fmt.Sprintf("macro '%s' got multiple values for argument '%s'", m.Name, arg.Name))
			}
			bound[i] = args[i]
			continue
		}
		if value, ok := kwargs[arg.Name]; ok {
			bound[i] = value
			continue
		}
		bound[i] = MakeUndefined(arg.Default, arg.Name, arg.HasDefault)
	}
	return m.fn(bound...)
}

// GetArgumentNames returns the declared argument names in order.
func (m *Macro) GetArgumentNames() []string {
	names := make([]string, len(m.Arguments))
	for i, arg := range m.Arguments {
		names[i] = arg.Name
	}
	return names
}

// GetRequiredArgumentNames returns the arguments without defaults.
func (m *Macro) GetRequiredArgumentNames() []string {
	var names []string
	for _, arg := range m.Arguments {
		if !arg.HasDefault {
			names = append(names, arg.Name)
		}
	}
	return names
}

// HasArgument checks if the macro declares an argument named name.
func (m *Macro) HasArgument(name string) bool {
	for _, arg := range m.Arguments {
		if arg.Name == name {
			return true
		}
	}
	return false
}

func (m *Macro) String() string {
	return fmt.Sprintf("Macro(%s(%s))", m.Name, strings.Join(m.GetArgumentNames(), ", "))
}

// CallMacro calls value when it is a macro, as compiled programs do for
// `{{ name(args) }}`.
func CallMacro(value interface{}, args ...interface{}) (interface{}, error) {
	switch fn := value.(type) {
	case *Macro:
		return fn.Call(args...)
	case MacroFunc:
		return fn(args...)
	case func(args ...interface{}) (interface{}, error):
		return fn(args...)
	}
	if u, ok := value.(Undefined); ok {
		return nil, NewUndefinedError(u.Name())
	}
	return nil, NewError(ErrorTypeTemplate, fmt.Sprintf("%T is not callable", value))
}
