package liquid

import (
	"errors"
	"testing"
)

func testParseContext(mode ErrorMode) *ParseContext {
	return newParseContext(NewEnvironment(), &options{errorMode: &mode})
}

func evalMarkup(t *testing.T, markup string, data map[string]any) any {
	t.Helper()
	pc := testParseContext(ErrorModeStrict)
	e, err := ParseExpression(markup, pc)
	if err != nil {
		t.Fatalf("ParseExpression(%q): %v", markup, err)
	}
	tpl, _ := Parse("")
	v, err := e.Evaluate(tpl.NewContext(data))
	if err != nil {
		t.Fatalf("Evaluate(%q): %v", markup, err)
	}
	return v
}

func TestParseExpressionLiterals(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"nil", nil},
		{"null", nil},
		{"true", true},
		{"false", false},
		{"42", 42},
		{"-3", -3},
		{"1.5", 1.5},
		{"'single'", "single"},
		{`"double"`, "double"},
		{"(1..3)", Range{From: 1, To: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := evalMarkup(t, tc.in, nil)
			if got != tc.want {
				t.Fatalf("%s = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseExpressionMethodLiterals(t *testing.T) {
	if got := evalMarkup(t, "empty", nil); got != Empty {
		t.Fatalf("empty = %#v", got)
	}
	if got := evalMarkup(t, "blank", nil); got != Blank {
		t.Fatalf("blank = %#v", got)
	}
}

func TestVariableLookups(t *testing.T) {
	data := map[string]any{
		"product": map[string]any{
			"title":    "Shoe",
			"variants": []any{map[string]any{"sku": "A1"}, map[string]any{"sku": "B2"}},
			"size":     "XL",
		},
		"key":  "title",
		"list": []string{"x", "y", "z"},
		"n":    1,
	}
	cases := []struct {
		in   string
		want any
	}{
		{"product.title", "Shoe"},
		{"product['title']", "Shoe"},
		{"product[key]", "Shoe"},
		{"product.variants[1].sku", "B2"},
		{"product.variants.first.sku", "A1"},
		{"product.variants.last.sku", "B2"},
		{"product.variants.size", 2},
		{"product.size", "XL"},
		{"list[-1]", "z"},
		{"list[n]", "y"},
		{"list.size", 3},
		{"product.missing", nil},
		{"missing.deeply.nested", nil},
		{"['product'].title", "Shoe"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := evalMarkup(t, tc.in, data)
			if got != tc.want {
				t.Fatalf("%s = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestRangeLookupEvaluatesEnds(t *testing.T) {
	got := evalMarkup(t, "(a..b)", map[string]any{"a": "2", "b": 4})
	if got != (Range{From: 2, To: 4}) {
		t.Fatalf("range = %#v", got)
	}
}

func TestParseExpressionStrictRejectsTrailingMarkup(t *testing.T) {
	_, err := ParseExpression("a b", testParseContext(ErrorModeStrict))
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected syntax error, got %v", err)
	}
}

func TestParseExpressionLaxFallsBack(t *testing.T) {
	pc := testParseContext(ErrorModeLax)
	e, err := ParseExpression("a b", pc)
	if err != nil {
		t.Fatalf("lax parse: %v", err)
	}
	v, ok := e.(*VariableLookup)
	if !ok || v.Name != "a" || len(v.Lookups) != 1 {
		t.Fatalf("lax parse = %#v", e)
	}
	if len(pc.Warnings()) != 1 {
		t.Fatalf("warnings = %v", pc.Warnings())
	}
}

func TestParseVariableMarkupFilters(t *testing.T) {
	pc := testParseContext(ErrorModeStrict)
	e, filters, err := parseVariableMarkup(`name | append: "!", 1 | truncate: 10, ellipsis: ".."`, pc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, ok := e.(*VariableLookup); !ok || v.Name != "name" {
		t.Fatalf("expr = %#v", e)
	}
	if len(filters) != 2 {
		t.Fatalf("filters = %#v", filters)
	}
	if filters[0].Name != "append" || len(filters[0].Args) != 2 {
		t.Fatalf("append = %#v", filters[0])
	}
	if filters[1].Name != "truncate" || len(filters[1].Args) != 1 || filters[1].Kwargs["ellipsis"] == nil {
		t.Fatalf("truncate = %#v", filters[1])
	}
}

func TestLaxVariableMarkupFilters(t *testing.T) {
	e, filters, err := laxVariableMarkup(`title | | append: 'x', sep: "-"`)
	if err != nil {
		t.Fatalf("lax: %v", err)
	}
	if v, ok := e.(*VariableLookup); !ok || v.Name != "title" {
		t.Fatalf("expr = %#v", e)
	}
	if len(filters) != 1 || filters[0].Name != "append" {
		t.Fatalf("filters = %#v", filters)
	}
	if len(filters[0].Args) != 1 || filters[0].Kwargs["sep"] == nil {
		t.Fatalf("args = %#v", filters[0])
	}
}
