package runtime

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestEachLoopContext(t *testing.T) {
	var got []LoopContext
	err := Each([]int{10, 20, 30}, nil, func(loop LoopContext, item int) error {
		got = append(got, loop)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("each: %v", err)
	}

	want := []LoopContext{
		{First: true, Index0: 0, Index: 1, Revindex: 3, Revindex0: 2, Length: 3},
		{Index0: 1, Index: 2, Revindex: 2, Revindex0: 1, Length: 3},
		{Last: true, Index0: 2, Index: 3, Revindex: 1, Revindex0: 0, Length: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("loop contexts mismatch (-want +got):\n%s", diff)
	}
}

func TestEachEmptyRunsElseOnce(t *testing.T) {
	bodyCalls, elseCalls := 0, 0
	err := Each([]int{}, nil, func(LoopContext, int) error {
		bodyCalls++
		return nil
	}, func() error {
		elseCalls++
		return nil
	})
	if err != nil {
		t.Fatalf("each: %v", err)
	}
	if bodyCalls != 0 || elseCalls != 1 {
		t.Fatalf("body=%d else=%d, want 0 and 1", bodyCalls, elseCalls)
	}
}

func TestIterateMapIsSortedByKey(t *testing.T) {
	var got [][]interface{}
	err := Iterate(map[string]interface{}{"b": 2, "a": 1}, nil, Names("item"), func(loop LoopContext, values ...interface{}) error {
		got = append(got, values[0].([]interface{}))
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("iterate: %v", err)
	}

	want := [][]interface{}{{"a", 1}, {"b", 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestIterateUnpacksTuples(t *testing.T) {
	var keys, values []interface{}
	err := Iterate(map[string]int{"y": 2, "x": 1}, nil, Names("k", "v"), func(loop LoopContext, vals ...interface{}) error {
		keys = append(keys, vals[0])
		values = append(values, vals[1])
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if diff := cmp.Diff([]interface{}{"x", "y"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]interface{}{1, 2}, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestUnpackNestedAndShort(t *testing.T) {
	spec := UnpackSpec{Name("a"), Tuple(Name("b"), Name("c"))}
	if spec.Arity() != 3 {
		t.Fatalf("arity = %d, want 3", spec.Arity())
	}

	got := spec.Unpack([]interface{}{1, []interface{}{2}})
	if got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected unpack %#v", got)
	}
	u, ok := got[2].(Undefined)
	if !ok || u.Name() != "c" {
		t.Fatalf("missing position should be undefined c, got %#v", got[2])
	}
}

func TestIterateNilRunsElse(t *testing.T) {
	ran := false
	err := Iterate(nil, nil, Names("x"), func(LoopContext, ...interface{}) error {
		t.Fatal("body must not run")
		return nil
	}, func() error {
		ran = true
		return nil
	})
	if err != nil || !ran {
		t.Fatalf("else ran=%v err=%v", ran, err)
	}
}

func TestIterateRejectsScalars(t *testing.T) {
	err := Iterate(42, nil, Names("x"), func(LoopContext, ...interface{}) error { return nil }, nil)
	if err == nil {
		t.Fatal("expected error iterating an int")
	}
}

func TestNestedLoopParentAndCycle(t *testing.T) {
	var depths []int
	var cycled []interface{}
	outer := []string{"a", "b"}
	err := Each(outer, nil, func(o LoopContext, _ string) error {
		return Each([]int{1}, &o, func(inner LoopContext, _ int) error {
			depths = append(depths, inner.Depth())
			cycled = append(cycled, inner.Parent.Cycle("odd", "even"))
			return nil
		}, nil)
	}, nil)
	if err != nil {
		t.Fatalf("each: %v", err)
	}
	if diff := cmp.Diff([]int{2, 2}, depths); diff != "" {
		t.Fatalf("depths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]interface{}{"odd", "even"}, cycled, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("cycle mismatch (-want +got):\n%s", diff)
	}
}

func TestIterateNilElementIsUndefined(t *testing.T) {
	var got []interface{}
	err := Iterate([]interface{}{"Ann", nil}, nil, Names("member"), func(loop LoopContext, values ...interface{}) error {
		got = append(got, values[0])
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(got) != 2 || got[0] != "Ann" {
		t.Fatalf("unexpected values %#v", got)
	}
	undef, ok := got[1].(Undefined)
	if !ok {
		t.Fatalf("nil element should be undefined, got %#v", got[1])
	}
	if undef.Name() != "member" {
		t.Fatalf("undefined name = %q, want member", undef.Name())
	}
}
