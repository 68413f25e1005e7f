package util

import (
	"reflect"
	"testing"
)

func TestContains(t *testing.T) {
	tests := []struct {
		name  string
		slice []string
		val   string
		want  bool
	}{
		{"found", []string{"a", "b", "c"}, "b", true},
		{"not found", []string{"a", "b"}, "z", false},
		{"empty slice", []string{}, "a", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Contains(tc.slice, tc.val); got != tc.want {
				t.Errorf("Contains(%v, %q) = %v, want %v", tc.slice, tc.val, got, tc.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	evens := Filter([]int{1, 2, 3, 4, 5, 6}, func(n int) bool { return n%2 == 0 })
	if !reflect.DeepEqual(evens, []int{2, 4, 6}) {
		t.Errorf("unexpected result: %v", evens)
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"c": 1, "a": 2, "b": 3}
	if got := SortedKeys(m); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("unexpected keys: %v", got)
	}
}

func TestIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want bool
	}{
		{"overlap", []string{"prep", "eval"}, []string{"prep"}, true},
		{"disjoint", []string{"train"}, []string{"prep"}, false},
		{"empty a", nil, []string{"prep"}, false},
		{"empty b", []string{"prep"}, nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Intersects(tc.a, tc.b); got != tc.want {
				t.Errorf("Intersects(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
