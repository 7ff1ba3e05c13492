package runtime

import (
	"encoding/json"
	"fmt"
	"html"
	"math"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	sanitizePolicyOnce sync.Once
	sanitizePolicy     *bluemonday.Policy
	stripPolicyOnce    sync.Once
	stripPolicy        *bluemonday.Policy
)

// builtinFilters returns a fresh copy of the builtin filter table.
func builtinFilters() map[string]FilterFunc {
	return map[string]FilterFunc{
		// String filters
		"upper":      filterUpper,
		"lower":      filterLower,
		"capitalize": filterCapitalize,
		"title":      filterTitle,
		"trim":       filterTrim,
		"striptags":  filterStriptags,
		"replace":    filterReplace,
		"truncate":   filterTruncate,
		"wordcount":  filterWordcount,

		// Numbers
		"int":   filterInt,
		"float": filterFloat,
		"abs":   filterAbs,
		"round": filterRound,

		// Sequences and mappings
		"length":   filterLength,
		"count":    filterLength,
		"first":    filterFirst,
		"last":     filterLast,
		"join":     filterJoin,
		"sort":     filterSort,
		"reverse":  filterReverse,
		"dictsort": filterDictsort,
		"list":     filterList,

		// Values
		"default": filterDefault,
		"d":       filterDefault,

		// Escaping
		"safe":        filterSafe,
		"escape":      filterEscape,
		"e":           filterEscape,
		"forceescape": filterForceEscape,
		"sanitize":    filterSanitize,
		"urlencode":   filterUrlencode,
		"tojson":      filterToJSON,
	}
}

// keepMarkup returns s as Markup when the filter input was Markup.
func keepMarkup(input interface{}, s string) interface{} {
	if _, ok := input.(Markup); ok {
		return Markup(s)
	}
	return s
}

func argAt(args []interface{}, i int) (interface{}, bool) {
	if i < len(args) && !IsUndefined(args[i]) {
		return args[i], true
	}
	return nil, false
}

func intArg(args []interface{}, i int, def int) int {
	if v, ok := argAt(args, i); ok {
		if n, ok := ToInt(v); ok {
			return n
		}
	}
	return def
}

func boolArg(args []interface{}, i int, def bool) bool {
	if v, ok := argAt(args, i); ok {
		return Truthy(v)
	}
	return def
}

func stringArg(args []interface{}, i int, def string) string {
	if v, ok := argAt(args, i); ok {
		return ToString(v)
	}
	return def
}

// String filters

func filterUpper(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	return keepMarkup(value, strings.ToUpper(ToString(value))), nil
}

func filterLower(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	return keepMarkup(value, strings.ToLower(ToString(value))), nil
}

func filterCapitalize(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	str := ToString(value)
	if str == "" {
		return keepMarkup(value, str), nil
	}
	runes := []rune(str)
	return keepMarkup(value, strings.ToUpper(string(runes[0]))+strings.ToLower(string(runes[1:]))), nil
}

func filterTitle(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	runes := []rune(ToString(value))
	startOfWord := true
	for i, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			if startOfWord {
				runes[i] = unicode.ToUpper(r)
			} else {
				runes[i] = unicode.ToLower(r)
			}
			startOfWord = false
			continue
		}
		startOfWord = true
	}
	return keepMarkup(value, string(runes)), nil
}

func filterTrim(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	str := ToString(value)
	if chars := stringArg(args, 0, ""); chars != "" {
		return keepMarkup(value, strings.Trim(str, chars)), nil
	}
	return keepMarkup(value, strings.TrimSpace(str)), nil
}

// filterStriptags removes markup with a policy that allows no elements,
// then unescapes entities and collapses whitespace.
func filterStriptags(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	stripPolicyOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	stripped := html.UnescapeString(stripPolicy.Sanitize(ToString(value)))
	return strings.Join(strings.Fields(stripped), " "), nil
}

func filterReplace(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("replace filter requires at least 2 arguments")
	}

	str := ToString(value)
	old := ToString(args[0])
	replacement := ToString(args[1])
	count := intArg(args, 2, -1)

	if _, ok := value.(Markup); ok {
		if _, safe := args[1].(Markup); !safe && info.autoescape {
			replacement = Escape(replacement)
		}
	}
	return keepMarkup(value, strings.Replace(str, old, replacement, count)), nil
}

func filterTruncate(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	runes := []rune(ToString(value))
	length := intArg(args, 0, 255)
	killwords := boolArg(args, 1, false)
	end := stringArg(args, 2, "...")
	endLen := len([]rune(end))

	if length < endLen {
		return nil, fmt.Errorf("truncate length %d is shorter than the end marker", length)
	}
	if len(runes) <= length {
		return string(runes), nil
	}

	cut := string(runes[:length-endLen])
	if killwords {
		return cut + end, nil
	}
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + end, nil
}

func filterWordcount(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	return len(strings.Fields(ToString(value))), nil
}

// Numeric filters

func filterInt(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	if n, ok := ToInt(value); ok {
		return n, nil
	}
	if def, ok := argAt(args, 0); ok {
		return def, nil
	}
	return 0, nil
}

func filterFloat(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	if f, ok := ToFloat(value); ok {
		return f, nil
	}
	if def, ok := argAt(args, 0); ok {
		return def, nil
	}
	return 0.0, nil
}

func filterAbs(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	n, ok := classifyNumber(value)
	if !ok {
		return nil, fmt.Errorf("abs filter requires a number, got %T", value)
	}
	if n.kind == numberInteger {
		if n.intValue < 0 {
			return int(-n.intValue), nil
		}
		return int(n.intValue), nil
	}
	return math.Abs(n.floatValue), nil
}

func filterRound(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	num, ok := ToFloat(value)
	if !ok {
		return nil, fmt.Errorf("round filter requires a number, got %T", value)
	}

	precision := intArg(args, 0, 0)
	method := stringArg(args, 1, "common")

	multiplier := math.Pow10(precision)
	rounded := num * multiplier

	switch method {
	case "common":
		rounded = math.Round(rounded)
	case "floor":
		rounded = math.Floor(rounded)
	case "ceil":
		rounded = math.Ceil(rounded)
	default:
		return nil, fmt.Errorf("unknown rounding method: %s", method)
	}

	return rounded / multiplier, nil
}

// Sequence filters

func filterLength(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case string:
		return len([]rune(v)), nil
	case Markup:
		return len([]rune(string(v))), nil
	case []interface{}:
		return len(v), nil
	case map[string]interface{}:
		return len(v), nil
	}
	if IsUndefined(value) {
		return 0, nil
	}

	val := reflect.ValueOf(value)
	switch val.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return val.Len(), nil
	default:
		return nil, fmt.Errorf("length filter requires a sequence or mapping, got %T", value)
	}
}

func filterFirst(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	items, err := SequenceFromIterable(value)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return NewUndefined("first", false), nil
	}
	return items[0], nil
}

func filterLast(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	items, err := SequenceFromIterable(value)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return NewUndefined("last", false), nil
	}
	return items[len(items)-1], nil
}

// filterJoin joins the items of a sequence. Items print as they would in
// output, so composites fail. With autoescape on, unsafe items are escaped
// and the result is safe.
func filterJoin(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	items, err := SequenceFromIterable(value)
	if err != nil {
		return nil, err
	}
	separator := stringArg(args, 0, "")
	attribute := stringArg(args, 1, "")

	strs := make([]string, len(items))
	for i, item := range items {
		if attribute != "" {
			item = GetAttr(item, attribute)
		}
		s, err := info.Finalize(item)
		if err != nil {
			return nil, err
		}
		strs[i] = s
	}

	if info.autoescape {
		if _, safe := args0(args).(Markup); !safe {
			separator = Escape(separator)
		}
		return MarkSafe(strings.Join(strs, separator)), nil
	}
	return strings.Join(strs, separator), nil
}

func args0(args []interface{}) interface{} {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

func filterSort(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	items, err := SequenceFromIterable(value)
	if err != nil {
		return nil, err
	}
	reverse := boolArg(args, 0, false)
	caseSensitive := boolArg(args, 1, false)
	attribute := stringArg(args, 2, "")

	result := append([]interface{}(nil), items...)
	key := func(v interface{}) interface{} {
		if attribute != "" {
			return GetAttr(v, attribute)
		}
		return v
	}
	sort.SliceStable(result, func(i, j int) bool {
		cmp := compareValues(key(result[i]), key(result[j]), caseSensitive)
		if reverse {
			return cmp > 0
		}
		return cmp < 0
	})
	return result, nil
}

func filterReverse(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string, Markup:
		runes := []rune(ToString(v))
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return keepMarkup(value, string(runes)), nil
	}

	items, err := SequenceFromIterable(value)
	if err != nil {
		return nil, fmt.Errorf("reverse filter requires a string or sequence")
	}
	result := make([]interface{}, len(items))
	for i, item := range items {
		result[len(items)-1-i] = item
	}
	return result, nil
}

// filterDictsort returns the [key, value] pairs of a mapping. Arguments are
// case_sensitive, by ("key" or "value") and reverse.
func filterDictsort(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	m, ok := toStringMap(value)
	if !ok {
		return nil, fmt.Errorf("dictsort filter requires a mapping, got %T", value)
	}
	caseSensitive := boolArg(args, 0, false)
	by := stringArg(args, 1, "key")
	reverse := boolArg(args, 2, false)

	pos := 0
	switch by {
	case "key":
	case "value":
		pos = 1
	default:
		return nil, fmt.Errorf("dictsort: you can only sort by either \"key\" or \"value\"")
	}

	pairs := make([][]interface{}, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, []interface{}{k, v})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		cmp := compareValues(pairs[i][pos], pairs[j][pos], caseSensitive)
		if cmp == 0 && pos == 1 {
			cmp = strings.Compare(pairs[i][0].(string), pairs[j][0].(string))
		}
		if reverse {
			return cmp > 0
		}
		return cmp < 0
	})

	result := make([]interface{}, len(pairs))
	for i, pair := range pairs {
		result[i] = pair
	}
	return result, nil
}

func toStringMap(value interface{}) (map[string]interface{}, bool) {
	if m, ok := value.(map[string]interface{}); ok {
		return m, true
	}
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Map {
		return nil, false
	}
	result := make(map[string]interface{}, val.Len())
	iter := val.MapRange()
	for iter.Next() {
		result[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	return result, true
}

// filterList turns any iterable into a sequence. Mappings yield their
// sorted keys.
func filterList(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	if m, ok := toStringMap(value); ok {
		keys := sortedKeys(m)
		result := make([]interface{}, len(keys))
		for i, k := range keys {
			result[i] = k
		}
		return result, nil
	}
	items, err := SequenceFromIterable(value)
	if err != nil {
		return nil, fmt.Errorf("list filter requires a sequence or mapping")
	}
	if items == nil {
		items = []interface{}{}
	}
	return items, nil
}

// filterDefault replaces undefined values. With a true second argument,
// falsy values are replaced too.
func filterDefault(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	var defaultValue interface{} = ""
	if len(args) > 0 {
		defaultValue = args[0]
	}
	applyOnFalsy := boolArg(args, 1, false)

	if IsUndefined(value) {
		return defaultValue, nil
	}
	if applyOnFalsy && !Truthy(value) {
		return defaultValue, nil
	}
	return value, nil
}

// Escaping filters

func filterSafe(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	if m, ok := AsMarkup(value); ok {
		return m, nil
	}
	return MarkSafe(ToString(value)), nil
}

func filterEscape(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	if m, ok := AsMarkup(value); ok {
		return m, nil
	}
	return MarkSafe(Escape(ToString(value))), nil
}

func filterForceEscape(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	return MarkSafe(Escape(ToString(value))), nil
}

// filterSanitize keeps user-generated markup that is safe to embed and
// marks the result safe.
func filterSanitize(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	sanitizePolicyOnce.Do(func() {
		sanitizePolicy = bluemonday.UGCPolicy()
	})
	return MarkSafe(sanitizePolicy.Sanitize(ToString(value))), nil
}

func filterUrlencode(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	if m, ok := value.(map[string]interface{}); ok {
		values := url.Values{}
		for k, v := range m {
			values.Set(k, ToString(v))
		}
		return values.Encode(), nil
	}
	return url.QueryEscape(ToString(value)), nil
}

// filterToJSON serializes value for embedding in HTML. The result is safe,
// with the characters that could close a script or attribute escaped.
func filterToJSON(info *RuntimeInfo, value interface{}, args ...interface{}) (interface{}, error) {
	if m, ok := value.(Markup); ok {
		value = ToWire(m)
	}

	var data []byte
	var err error
	if indent := intArg(args, 0, 0); indent > 0 {
		data, err = json.MarshalIndent(value, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return nil, err
	}
	return MarkSafe(strings.ReplaceAll(string(data), "'", `\u0027`)), nil
}
