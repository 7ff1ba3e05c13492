package runtime

import "testing"

type person struct {
	FullName string
	Party    string
}

func (p person) Initials() string { return p.FullName[:1] }

func TestGetAttr(t *testing.T) {
	p := person{FullName: "Ada Lovelace", Party: "D"}
	cases := []struct {
		name string
		obj  interface{}
		attr string
		want interface{}
	}{
		{"map", map[string]interface{}{"state": "ny"}, "state", "ny"},
		{"struct field", p, "Party", "D"},
		{"pointer field", &p, "FullName", "Ada Lovelace"},
		{"typed map", map[string]int{"n": 3}, "n", 3},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetAttr(tt.obj, tt.attr); got != tt.want {
				t.Fatalf("GetAttr(%s) = %#v, want %#v", tt.attr, got, tt.want)
			}
		})
	}

	if method, ok := GetAttr(p, "Initials").(func() string); !ok || method() != "A" {
		t.Fatalf("expected bound method, got %#v", GetAttr(p, "Initials"))
	}
}

func TestGetAttrMisses(t *testing.T) {
	misses := []interface{}{
		map[string]interface{}{},
		person{},
		nil,
		DebugUndefined{name: "parent"},
		(*person)(nil),
	}
	for _, obj := range misses {
		if got := GetAttr(obj, "nope"); !IsUndefined(got) {
			t.Fatalf("GetAttr(%#v) = %#v, want undefined", obj, got)
		}
	}
}

func TestGetItem(t *testing.T) {
	items := []interface{}{"a", "b", "c"}
	if got := GetItem(items, -1); got != "c" {
		t.Fatalf("negative index = %#v", got)
	}
	if got := GetItem(items, 1); got != "b" {
		t.Fatalf("index 1 = %#v", got)
	}
	if got := GetItem(items, 5); !IsUndefined(got) {
		t.Fatalf("out of range = %#v", got)
	}
	if got := GetItem("héllo", 1); got != "é" {
		t.Fatalf("string index = %#v", got)
	}
	if got := GetItem(map[string]interface{}{"lower": 1}, "lower"); got != 1 {
		t.Fatalf("map key = %#v", got)
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		value interface{}
		want  bool
	}{
		{nil, false},
		{DebugUndefined{}, false},
		{"", false},
		{"x", true},
		{Markup(""), false},
		{0, false},
		{0.0, false},
		{3, true},
		{[]interface{}{}, false},
		{[]interface{}{1}, true},
		{map[string]interface{}{}, false},
		{person{}, true},
	}
	for _, tt := range cases {
		if got := Truthy(tt.value); got != tt.want {
			t.Fatalf("Truthy(%#v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
