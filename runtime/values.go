package runtime

import (
	"fmt"
	"reflect"
	"strings"
)

// GetAttr resolves obj.name the way compiled programs access context data.
// Maps with string keys, struct fields and methods, and pointers to them are
// supported. A miss yields an undefined carrying name.
func GetAttr(obj interface{}, name string) interface{} {
	if obj == nil || IsUndefined(obj) {
		return DebugUndefined{name: name}
	}

	switch v := obj.(type) {
	case map[string]interface{}:
		value, ok := v[name]
		return MakeUndefined(value, name, ok)
	case *Context:
		return v.Lookup(name)
	case *Namespace:
		value, ok := v.Get(name)
		return MakeUndefined(value, name, ok)
	}

	val := reflect.ValueOf(obj)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return DebugUndefined{name: name}
		}
		if method := val.MethodByName(name); method.IsValid() && method.CanInterface() {
			return method.Interface()
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Map:
		keyVal := reflect.ValueOf(name)
		if !keyVal.Type().ConvertibleTo(val.Type().Key()) {
			break
		}
		if result := val.MapIndex(keyVal.Convert(val.Type().Key())); result.IsValid() {
			return result.Interface()
		}
	case reflect.Struct:
		if field := val.FieldByName(name); field.IsValid() && field.CanInterface() {
			return field.Interface()
		}
		if method := val.MethodByName(name); method.IsValid() && method.CanInterface() {
			return method.Interface()
		}
	}

	return DebugUndefined{name: name}
}

// GetItem resolves obj[key]. Sequences accept negative indexes counted from
// the end; string keys fall back to GetAttr.
func GetItem(obj interface{}, key interface{}) interface{} {
	name := fmt.Sprint(key)
	if obj == nil || IsUndefined(obj) {
		return DebugUndefined{name: name}
	}
	if s, ok := key.(string); ok {
		return GetAttr(obj, s)
	}

	idx, ok := ToInt(key)
	if !ok {
		return DebugUndefined{name: name}
	}

	val := reflect.ValueOf(obj)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return DebugUndefined{name: name}
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		if idx < 0 {
			idx += val.Len()
		}
		if idx < 0 || idx >= val.Len() {
			return DebugUndefined{name: name}
		}
		return val.Index(idx).Interface()
	case reflect.String:
		runes := []rune(val.String())
		if idx < 0 {
			idx += len(runes)
		}
		if idx < 0 || idx >= len(runes) {
			return DebugUndefined{name: name}
		}
		return string(runes[idx])
	case reflect.Map:
		keyVal := reflect.ValueOf(key)
		if keyVal.Type().ConvertibleTo(val.Type().Key()) {
			if result := val.MapIndex(keyVal.Convert(val.Type().Key())); result.IsValid() {
				return result.Interface()
			}
		}
	}

	return DebugUndefined{name: name}
}

// Truthy reports whether value counts as true in a template condition.
func Truthy(value interface{}) bool {
	if value == nil || IsUndefined(value) {
		return false
	}

	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v != ""
	case Markup:
		return v != ""
	}

	if n, ok := classifyNumber(value); ok {
		if n.kind == numberFloat {
			return n.floatValue != 0
		}
		return n.intValue != 0
	}

	val := reflect.ValueOf(value)
	switch val.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return val.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !val.IsNil()
	}
	return true
}

// ToString converts value to its plain, unescaped string form.
func ToString(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case Undefined:
		str, err := v.ToString()
		if err != nil {
			return ""
		}
		return str
	case bool:
		if v {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return v.String()
	}

	if n, ok := classifyNumber(value); ok {
		return n.String()
	}
	return fmt.Sprintf("%v", value)
}

// isComposite reports whether value is a sequence, mapping or struct that
// cannot be printed directly.
func isComposite(value interface{}) bool {
	val := reflect.ValueOf(value)
	if val.Kind() == reflect.Ptr && !val.IsNil() {
		val = val.Elem()
	}
	switch val.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		return true
	}
	return false
}

func compareValues(a, b interface{}, caseSensitive bool) int {
	if !caseSensitive {
		if strA, ok := a.(string); ok {
			if strB, ok := b.(string); ok {
				return strings.Compare(strings.ToLower(strA), strings.ToLower(strB))
			}
		}
	}

	if numA, ok := ToFloat(a); ok {
		if numB, ok := ToFloat(b); ok {
			if numA < numB {
				return -1
			} else if numA > numB {
				return 1
			}
			return 0
		}
	}

	return strings.Compare(ToString(a), ToString(b))
}
