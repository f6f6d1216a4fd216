package liquid

import (
	"fmt"
	"testing"
)

func testCondition(t *testing.T, markup string, data map[string]any) bool {
	t.Helper()
	pc := testParseContext(ErrorModeStrict)
	c, err := ParseLogical(markup, nil, pc)
	if err != nil {
		t.Fatalf("ParseLogical(%q): %v", markup, err)
	}
	tpl, _ := Parse("")
	ok, err := c.Test(tpl.NewContext(data))
	if err != nil {
		t.Fatalf("Test(%q): %v", markup, err)
	}
	return ok
}

func TestComparisons(t *testing.T) {
	data := map[string]any{
		"n":         5,
		"f":         2.5,
		"s":         "hello",
		"list":      []any{1, 2, 3},
		"tags":      []string{"sale", "new"},
		"hash":      map[string]any{"k": 1},
		"blank_str": " ",
		"none":      nil,
	}
	cases := []struct {
		markup string
		want   bool
	}{
		{"n == 5", true},
		{"n == 5.0", true},
		{"n != 4", true},
		{"n <> 5", false},
		{"n > 4", true},
		{"n >= 5", true},
		{"n < 5", false},
		{"f <= 2.5", true},
		{"s == 'hello'", true},
		{"s contains 'ell'", true},
		{"s contains 'xyz'", false},
		{"list contains 2", true},
		{"list contains '2'", false},
		{"tags contains 'sale'", true},
		{"hash contains 'k'", true},
		{"none contains 'a'", false},
		{"empty == empty", true},
		{"list == empty", false},
		{"blank_str == blank", true},
		{"blank_str == empty", false},
		{"'' == empty", true},
		{"none == blank", true},
		{"none == nil", true},
		{"s", true},
		{"none", false},
		{"empty", true},
		{"0", true},
		{"1 < 'a'", false},
		{"(1..3) contains 2", true},
		{"(1..3) contains 4", false},
	}
	for _, tc := range cases {
		t.Run(tc.markup, func(t *testing.T) {
			if got := testCondition(t, tc.markup, data); got != tc.want {
				t.Fatalf("%s = %v, want %v", tc.markup, got, tc.want)
			}
		})
	}
}

func TestLogicalPrecedence(t *testing.T) {
	// Operators bind right to left: a and b or c == a and (b or c).
	for _, a := range []bool{false, true} {
		for _, b := range []bool{false, true} {
			for _, c := range []bool{false, true} {
				t.Run(fmt.Sprintf("%v_%v_%v", a, b, c), func(t *testing.T) {
					data := map[string]any{"a": a, "b": b, "c": c}
					want := a && (b || c)
					if got := testCondition(t, "a and b or c", data); got != want {
						t.Fatalf("a and b or c = %v, want %v", got, want)
					}
					want = a || (b && c)
					if got := testCondition(t, "a or b and c", data); got != want {
						t.Fatalf("a or b and c = %v, want %v", got, want)
					}
				})
			}
		}
	}
}

func TestParenthesisedGroups(t *testing.T) {
	cases := []struct {
		markup  string
		a, b, c bool
		want    bool
	}{
		{"(a or b) and c", true, false, false, false},
		{"(a or b) and c", true, false, true, true},
		{"(a or b) and c", false, false, true, false},
		{"a and (b or c)", true, false, true, true},
		{"(a and b) or c", false, true, true, true},
		{"((a))", true, false, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.markup, func(t *testing.T) {
			data := map[string]any{"a": tc.a, "b": tc.b, "c": tc.c}
			if got := testCondition(t, tc.markup, data); got != tc.want {
				t.Fatalf("%s with %v = %v, want %v", tc.markup, data, got, tc.want)
			}
		})
	}
}

func TestConnectivesAreWholeWords(t *testing.T) {
	data := map[string]any{"order": true, "android": false, "a": true}
	if !testCondition(t, "order", data) {
		t.Fatal("order was split on 'or'")
	}
	if testCondition(t, "android", data) {
		t.Fatal("android was split on 'and'")
	}
	if !testCondition(t, "a AND order", data) {
		t.Fatal("upper-case connective not recognised")
	}
	if !testCondition(t, "'x and y' == 'x and y'", data) {
		t.Fatal("connective inside quotes was split")
	}
}

func TestParseLogicalCacheCopies(t *testing.T) {
	pc := testParseContext(ErrorModeStrict)
	cache := map[string]*Condition{}
	c, err := ParseLogical("a and a and a", cache, pc)
	if err != nil {
		t.Fatalf("ParseLogical: %v", err)
	}
	if len(cache) != 1 {
		t.Fatalf("cache has %d entries, want 1", len(cache))
	}
	if c == c.child || c.child == c.child.child {
		t.Fatal("cached operand reused without copying")
	}
	if cache["a"].child != nil {
		t.Fatal("cache entry was mutated by chaining")
	}
}

func TestParseLogicalEmptyOperand(t *testing.T) {
	pc := testParseContext(ErrorModeStrict)
	if _, err := ParseLogical("a and", nil, pc); err == nil {
		t.Fatal("expected error for dangling connective")
	}
}

func TestStricterComparisonError(t *testing.T) {
	pc := testParseContext(ErrorModeStricter)
	c, err := ParseLogical("1 < 'a'", nil, pc)
	if err != nil {
		t.Fatalf("ParseLogical: %v", err)
	}
	tpl, _ := Parse("")
	_, err = c.Test(tpl.NewContext(nil))
	if err == nil {
		t.Fatal("expected comparison error")
	}
	if want := "Liquid error: Comparison of Integer with String failed"; err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}

func TestConditionString(t *testing.T) {
	pc := testParseContext(ErrorModeStrict)
	c, err := ParseLogical("a == 1 or b contains 'x'", nil, pc)
	if err != nil {
		t.Fatalf("ParseLogical: %v", err)
	}
	if got, want := c.String(), `a == 1 or b contains "x"`; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
