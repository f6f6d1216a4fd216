package starlark

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/neurodesk/liquid/pkg/liquid"
)

const shopFilters = `
CURRENCY = "$"

def _cents(n):
    s = str(n % 100)
    return s if len(s) == 2 else "0" + s

def money(cents, symbol = CURRENCY):
    return symbol + str(cents // 100) + "." + _cents(cents)

def title_of(product):
    return product.title.upper()

def shout(s):
    print("shouting", s)
    return to_s(s) + "!"

def reject(x):
    fail("no " + x)

def spin(x):
    for i in range(10000000):
        pass
    return x
`

func loadShopFilters(t *testing.T, opts ...Option) liquid.Filters {
	t.Helper()
	filters, err := LoadFilters("shop.star", shopFilters, opts...)
	if err != nil {
		t.Fatalf("LoadFilters error: %v", err)
	}
	return filters
}

func TestLoadFiltersExportsPublicFunctions(t *testing.T) {
	filters := loadShopFilters(t)
	for _, name := range []string{"money", "title_of", "shout", "reject", "spin"} {
		if _, ok := filters[name]; !ok {
			t.Errorf("filter %s not exported", name)
		}
	}
	for _, name := range []string{"_cents", "CURRENCY"} {
		if _, ok := filters[name]; ok {
			t.Errorf("%s should not be a filter", name)
		}
	}
}

func TestStarlarkFiltersInTemplates(t *testing.T) {
	filters := loadShopFilters(t, WithMaxSteps(10000))
	data := map[string]any{
		"price":   1205,
		"product": liquid.MapDrop{"title": "hat"},
	}

	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{name: "positional input", src: "{{ price | money }}", expected: "$12.05"},
		{name: "keyword argument", src: `{{ price | money: symbol: "EUR " }}`, expected: "EUR 12.05"},
		{name: "drop attributes", src: "{{ product | title_of }}", expected: "HAT"},
		{name: "chained with builtin filter", src: "{{ 'a' | shout | upcase }}", expected: "A!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, err := liquid.Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			got, err := tpl.Render(data, liquid.WithFilters(filters))
			if err != nil {
				t.Fatalf("Render error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Render() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestStarlarkFilterFailureIsInline(t *testing.T) {
	filters := loadShopFilters(t)
	tpl, err := liquid.Parse("x{{ 'y' | reject }}z")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	got, err := tpl.Render(nil, liquid.WithFilters(filters))
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.HasPrefix(got, "xLiquid error (line 1): reject: ") || !strings.HasSuffix(got, "no yz") {
		t.Errorf("Render() = %q", got)
	}
}

func TestStarlarkFilterStepBudget(t *testing.T) {
	filters := loadShopFilters(t, WithMaxSteps(10000))
	tpl, err := liquid.Parse("{{ 1 | spin }}")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	got, err := tpl.Render(nil, liquid.WithFilters(filters))
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.Contains(got, "spin: ") || !strings.Contains(got, "too many steps") {
		t.Errorf("Render() = %q, want step budget error", got)
	}
}

func TestStarlarkPrintIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	filters := loadShopFilters(t, WithLogger(logger))
	if _, err := filters["shout"]("hey", nil, nil); err != nil {
		t.Fatalf("shout error: %v", err)
	}
	if !strings.Contains(buf.String(), "shouting hey") {
		t.Errorf("log output = %q", buf.String())
	}
}
