package liquid

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"
)

func mustParse(t *testing.T, src string, opts ...Option) *Template {
	t.Helper()
	tpl, err := Parse(src, opts...)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return tpl
}

func render(t *testing.T, src string, data map[string]any, opts ...Option) string {
	t.Helper()
	out, err := mustParse(t, src).Render(data, opts...)
	if err != nil {
		t.Fatalf("Render(%q): %v", src, err)
	}
	return out
}

func withFiles(files map[string]string) Option {
	return WithRegisters(map[string]any{RegisterFileSystem: MemoryFileSystem(files)})
}

func TestPlainTextPassesThrough(t *testing.T) {
	for _, src := range []string{"", "hello world", "braces { } and % signs", "a}}b%}c", "line\nbreaks\n"} {
		if got := render(t, src, nil); got != src {
			t.Fatalf("render(%q) = %q", src, got)
		}
	}
}

func TestRenderIsRepeatable(t *testing.T) {
	tpl := mustParse(t, "{% for i in (1..3) %}{% cycle 'a', 'b' %}{% increment n %}{% endfor %}{% assign x = 1 %}{{ x }}")
	first, err := tpl.Render(nil)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := tpl.Render(nil)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if first != second || first != "a0b1a21" {
		t.Fatalf("renders differ: %q vs %q", first, second)
	}
}

func TestOutputs(t *testing.T) {
	data := map[string]any{
		"name":  "World",
		"n":     3,
		"f":     2.0,
		"list":  []any{"a", "b"},
		"user":  map[string]any{"tags": []string{"x", "y"}},
		"drop":  MapDrop{"title": "Dropped"},
		"truth": true,
	}
	cases := []struct {
		src, want string
	}{
		{"Hello {{ name }}!", "Hello World!"},
		{"{{ name | upcase }}", "WORLD"},
		{"{{ name | append: '!' | prepend: '>' }}", ">World!"},
		{"{{ n | plus: 2 | times: 2.5 }}", "12.5"},
		{"{{ 10 | minus: n }}", "7"},
		{"{{ f }}", "2.0"},
		{"{{ list }}", "ab"},
		{"{{ list | join: ', ' }}", "a, b"},
		{"{{ 'a,b,c' | split: ',' | last }}", "c"},
		{"{{ user.tags.size }}", "2"},
		{"{{ user.tags.first }}", "x"},
		{"{{ drop.title }}", "Dropped"},
		{"{{ drop.missing }}", ""},
		{"{{ missing }}", ""},
		{"{{ missing | default: 'dflt' }}", "dflt"},
		{"{{ false | default: 'x', allow_false: true }}", "false"},
		{"{{ truth }}", "true"},
		{"{{ nil }}", ""},
		{"{{ (1..3) }}", "1..3"},
		{"{{ '<b>' | escape }}", "&lt;b&gt;"},
		{"{{ name | unknown_filter }}", "World"},
		{"{{}}", ""},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			if got := render(t, tc.src, data); got != tc.want {
				t.Fatalf("render(%q) = %q, want %q", tc.src, got, tc.want)
			}
		})
	}
}

func TestWhitespaceControl(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{"{%- if true -%}\n123\n{%- endif -%}", "123"},
		{"a  {{- 'b' -}}  c", "abc"},
		{"a\n  {%- assign x = 1 %}\nb", "a\nb"},
		{"[ {%- for i in (1..3) -%} {{ i }} {%- endfor -%} ]", "[123]"},
		{"{% raw -%}  x  {%- endraw %}", "  x  "},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			if got := render(t, tc.src, nil); got != tc.want {
				t.Fatalf("render(%q) = %q, want %q", tc.src, got, tc.want)
			}
		})
	}
}

func TestStrictVariables(t *testing.T) {
	tpl := mustParse(t, "a{{ missing }}b")
	out, err := tpl.Render(nil)
	if err != nil || out != "ab" {
		t.Fatalf("lax render = %q, %v", out, err)
	}
	out, err = tpl.Render(nil, WithStrictVariables())
	if !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("strict render error = %v", err)
	}
	if out != "" {
		t.Fatalf("strict render output = %q, want empty", out)
	}
	if want := "Liquid error (line 1): undefined variable missing"; err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}

	// Present keys holding nil are defined.
	if out, err := tpl.Render(map[string]any{"missing": nil}, WithStrictVariables()); err != nil || out != "ab" {
		t.Fatalf("nil value render = %q, %v", out, err)
	}
	if _, err := mustParse(t, "{{ user.name }}").Render(map[string]any{"user": map[string]any{}}, WithStrictVariables()); !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("missing member error = %v", err)
	}
}

func TestStrictFilters(t *testing.T) {
	tpl := mustParse(t, "{{ 'x' | nope }}")
	if out, err := tpl.Render(nil); err != nil || out != "x" {
		t.Fatalf("lax render = %q, %v", out, err)
	}
	if _, err := tpl.Render(nil, WithStrictFilters()); !errors.Is(err, ErrUndefinedFilter) {
		t.Fatalf("strict render error = %v", err)
	}
}

func TestRecoverableErrorsRenderInline(t *testing.T) {
	boom := Filters{
		"boom":  func(any, []any, map[string]any) (any, error) { return nil, ArgumentError("bad input") },
		"crash": func(any, []any, map[string]any) (any, error) { return nil, fmt.Errorf("db password leaked") },
	}
	tpl := mustParse(t, "a{{ x | boom }}b\n{{ x | crash }}c")
	ctx := tpl.NewContext(nil, WithFilters(boom))
	out, err := tpl.RenderContext(ctx)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "aLiquid error (line 1): bad inputb\nLiquid error (line 2): internalc"
	if out != want {
		t.Fatalf("render = %q, want %q", out, want)
	}
	if len(ctx.Errors()) != 2 {
		t.Fatalf("errors = %v", ctx.Errors())
	}
	if !errors.Is(ctx.Errors()[0], ErrArgument) || !errors.Is(ctx.Errors()[1], ErrInternal) {
		t.Fatalf("error kinds = %v", ctx.Errors())
	}

	if _, err := tpl.RenderStrict(nil, WithFilters(boom)); !errors.Is(err, ErrArgument) {
		t.Fatalf("RenderStrict error = %v", err)
	}

	custom := WithExceptionRenderer(func(e *Error) (string, error) { return "[" + e.Message + "]", nil })
	if out, err := tpl.Render(nil, WithFilters(boom), custom); err != nil || out != "a[bad input]b\n[internal]c" {
		t.Fatalf("custom renderer = %q, %v", out, err)
	}
}

func TestGlobalFilter(t *testing.T) {
	upper := WithGlobalFilter(func(v any) (any, error) { return strings.ToUpper(ToString(v)), nil })
	if got := render(t, "{{ a }}-{{ b | append: 'x' }}", map[string]any{"a": "q", "b": "r"}, upper); got != "Q-RX" {
		t.Fatalf("render = %q", got)
	}
}

func TestStaticEnvironment(t *testing.T) {
	static := WithStaticEnvironment(map[string]any{"shop": "S", "name": "static"})
	if got := render(t, "{{ shop }} {{ name }}", map[string]any{"name": "data"}, static); got != "S data" {
		t.Fatalf("render = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{"{% if x %}", "Liquid syntax error (line 1): 'if' tag was never closed"},
		{"a\n{% for i in x %}\n", "Liquid syntax error (line 2): 'for' tag was never closed"},
		{"{% endif %}", "Liquid syntax error (line 1): Unexpected outer 'endif' tag"},
		{"{% else %}", "Liquid syntax error (line 1): Unexpected outer 'else' tag"},
		{"{% foo %}", "Liquid syntax error (line 1): Unknown tag 'foo'"},
		{"{% if x %}{% endfor %}", "Liquid syntax error (line 1): 'endfor' is not a valid delimiter for if tags. use endif"},
		{"{% for i in x %}{% else %}{% else %}{% endfor %}", "Liquid syntax error (line 1): for tag does not expect 'else' tag"},
		{"{% if %}{% endif %}", "Liquid syntax error (line 1): Syntax Error in tag 'if' - Valid syntax: if [expression]"},
		{"{% assign = 1 %}", "Liquid syntax error (line 1): Syntax Error in 'assign' - Valid syntax: assign [var] = [source]"},
		{"{% for x %}{% endfor %}", "Liquid syntax error (line 1): Syntax Error in 'for loop' - Valid syntax: for [item] in [collection]"},
		{"{% render name %}", "Liquid syntax error (line 1): Syntax error in tag 'render' - Template name must be a quoted string"},
		{"{{ x", "Liquid syntax error (line 1): Variable '{{ x' was not properly terminated with regexp: }}"},
		{"{% # ok\n bad %}", "Liquid syntax error (line 1): Syntax error in tag '#' - Each line of comments must be prefixed by the '#' character"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			_, err := Parse(tc.src)
			if !errors.Is(err, ErrSyntax) {
				t.Fatalf("Parse(%q) error = %v, want syntax error", tc.src, err)
			}
			if err.Error() != tc.want {
				t.Fatalf("Parse(%q) error = %q, want %q", tc.src, err.Error(), tc.want)
			}
		})
	}
}

func TestParseErrorModes(t *testing.T) {
	src := "{{ a | | upcase }}"
	tpl, err := Parse(src)
	if err != nil {
		t.Fatalf("lax parse: %v", err)
	}
	if len(tpl.Warnings()) == 0 {
		t.Fatal("lax parse recorded no warnings")
	}
	if out, _ := tpl.Render(map[string]any{"a": "z"}); out != "Z" {
		t.Fatalf("lax render = %q", out)
	}
	for _, mode := range []ErrorMode{ErrorModeStrict, ErrorModeStricter} {
		if _, err := Parse(src, WithErrorMode(mode)); !errors.Is(err, ErrSyntax) {
			t.Fatalf("%s parse error = %v", mode, err)
		}
	}
	if _, err := Parse("{% for i in list foo:1 %}{% endfor %}", WithErrorMode(ErrorModeStrict)); err == nil {
		t.Fatal("strict mode accepted unknown for attribute")
	}
	if _, err := Parse("{% for i in list foo:1 %}{% endfor %}"); err != nil {
		t.Fatalf("lax mode rejected unknown for attribute: %v", err)
	}
}

func TestStricterComparisonRendersInline(t *testing.T) {
	src := "{% if 1 < 'a' %}x{% endif %}"
	if got := render(t, src, nil); got != "" {
		t.Fatalf("lax render = %q", got)
	}
	tpl := mustParse(t, src, WithErrorMode(ErrorModeStricter))
	out, err := tpl.Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "Liquid error (line 1): Comparison of Integer with String failed"; out != want {
		t.Fatalf("render = %q, want %q", out, want)
	}
}

func TestParseNestingLimit(t *testing.T) {
	src := strings.Repeat("{% if true %}", DefaultMaxDepth+1)
	if _, err := Parse(src); !errors.Is(err, ErrStackLevel) {
		t.Fatalf("error = %v, want stack level error", err)
	}
	ok := strings.Repeat("{% if true %}", 10) + "x" + strings.Repeat("{% endif %}", 10)
	if got := render(t, ok, nil); got != "x" {
		t.Fatalf("render = %q", got)
	}
}

func TestSelfIncludeHitsStackLevel(t *testing.T) {
	tpl := mustParse(t, "{% include 'self' %}")
	out, err := tpl.Render(nil, withFiles(map[string]string{"self": "x{% include 'self' %}"}))
	if !errors.Is(err, ErrStackLevel) {
		t.Fatalf("error = %v, want stack level error", err)
	}
	if out != "" {
		t.Fatalf("output = %q, want empty", out)
	}
}

func TestSelfRenderHitsStackLevel(t *testing.T) {
	tpl := mustParse(t, "{% render 'self' %}")
	_, err := tpl.Render(nil, withFiles(map[string]string{"self": "{% render 'self' %}"}))
	if !errors.Is(err, ErrStackLevel) {
		t.Fatalf("error = %v, want stack level error", err)
	}
}

func TestRenderScoreLimit(t *testing.T) {
	tpl := mustParse(t, "{% for i in (1..100) %}xxxxxxxxxx{% endfor %}")
	out, err := tpl.Render(nil, WithResourceLimits(Limits{RenderScore: 50}))
	if !errors.Is(err, ErrResourceLimit) {
		t.Fatalf("error = %v, want resource limit error", err)
	}
	if out != "" {
		t.Fatalf("output = %q, want empty", out)
	}
	if err.Error() != "Liquid error (line 1): Memory limits exceeded" {
		t.Fatalf("message = %q", err.Error())
	}
	if _, err := tpl.Render(nil, WithResourceLimits(Limits{RenderScore: 5000})); err != nil {
		t.Fatalf("render within budget: %v", err)
	}
}

func TestAssignScoreLimit(t *testing.T) {
	tpl := mustParse(t, "{% assign x = 'abcdefgh' %}")
	if _, err := tpl.Render(nil, WithResourceLimits(Limits{AssignScore: 5})); !errors.Is(err, ErrResourceLimit) {
		t.Fatalf("assign error = %v", err)
	}
	tpl = mustParse(t, "{% capture x %}abcdefgh{% endcapture %}")
	if _, err := tpl.Render(nil, WithResourceLimits(Limits{AssignScore: 5})); !errors.Is(err, ErrResourceLimit) {
		t.Fatalf("capture error = %v", err)
	}
}

func TestLoopIterationLimit(t *testing.T) {
	tpl := mustParse(t, "{% for i in (1..5) %}{% endfor %}")
	if _, err := tpl.Render(nil, WithResourceLimits(Limits{LoopIterations: 3})); !errors.Is(err, ErrResourceLimit) {
		t.Fatalf("error = %v", err)
	}
	if _, err := tpl.Render(nil, WithResourceLimits(Limits{LoopIterations: 5})); err != nil {
		t.Fatalf("render within budget: %v", err)
	}
}

// allocated returns the bytes the heap handed out while fn ran.
func allocated(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}

func TestHugeRangesStayWithinBudget(t *testing.T) {
	files := withFiles(map[string]string{"item": "{{ n }}"})
	tests := []struct {
		name   string
		src    string
		limits Limits
	}{
		{name: "for", src: "{% for i in (1..2000000000) %}{{ i }}{% endfor %}", limits: Limits{LoopIterations: 10}},
		{name: "for with variable ends", src: "{% for i in (1..top) %}{% endfor %}", limits: Limits{LoopIterations: 10}},
		{name: "tablerow", src: "{% tablerow i in (1..2000000000) %}{{ i }}{% endtablerow %}", limits: Limits{LoopIterations: 10}},
		{name: "render for", src: "{% render 'item' for (1..2000000000) as n %}", limits: Limits{LoopIterations: 10}},
		{name: "assign", src: "{% assign r = (1..2000000000) %}", limits: Limits{AssignScore: 10}},
		{name: "join filter", src: "{{ (1..2000000000) | join: ',' }}", limits: Limits{RenderScore: 100}},
		{name: "reverse filter", src: "{% assign r = (1..2000000000) | reverse %}", limits: Limits{LoopIterations: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := mustParse(t, tt.src)
			var out string
			var err error
			bytes := allocated(func() {
				out, err = tpl.Render(map[string]any{"top": 2000000000}, files, WithResourceLimits(tt.limits))
			})
			if !errors.Is(err, ErrResourceLimit) {
				t.Fatalf("error = %v, want resource limit error", err)
			}
			if out != "" {
				t.Errorf("output = %q, want empty", out)
			}
			if bytes > 16<<20 {
				t.Errorf("render allocated %d bytes", bytes)
			}
		})
	}
}

func TestHugeRangesAreNotExpanded(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{name: "commands and indexes", src: "{{ r.first }}-{{ r.last }}-{{ r.size }}-{{ r[5] }}-{{ r[-1] }}", expected: "1-2000000000-2000000000-6-2000000000"},
		{name: "contains", src: "{% if r contains 1999999999 %}y{% endif %}{% if r contains 2.5 %}n{% endif %}{% if r contains '3' %}n{% endif %}", expected: "y"},
		{name: "window", src: "{% for i in r limit:2 offset:1000000 %}{{ i }},{% endfor %}", expected: "1000001,1000002,"},
		{name: "reversed window", src: "{% for i in r limit:3 reversed %}{{ i }}{% endfor %}", expected: "321"},
		{name: "forloop length", src: "{% for i in r limit:2 %}{{ forloop.length }}{% endfor %}", expected: "22"},
		{name: "negative limit", src: "{% for i in r limit:-1 %}{{ i }}{% endfor %}", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := mustParse(t, "{% assign r = (1..2000000000) %}"+tt.src)
			var out string
			var err error
			bytes := allocated(func() {
				out, err = tpl.Render(nil, WithResourceLimits(Limits{RenderScore: 1000, LoopIterations: 10}))
			})
			if err != nil {
				t.Fatalf("Render error: %v", err)
			}
			if out != tt.expected {
				t.Errorf("Render() = %q, want %q", out, tt.expected)
			}
			if bytes > 16<<20 {
				t.Errorf("render allocated %d bytes", bytes)
			}
		})
	}
}

func TestConcurrentRendersOfOneTemplate(t *testing.T) {
	tpl := mustParse(t, "{% for i in list %}{% cycle 'a', 'b' %}{{ i }}{% include 'item' %}{% endfor %}{% assign q = 'q' %}{{ q }}{% increment n %}")
	files := map[string]string{"item": "[{{ i | minus: 1 }}]"}
	const workers = 8
	outputs := make([]string, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				out, err := tpl.Render(map[string]any{"list": []any{2, 3, 4}}, withFiles(files))
				if err != nil {
					t.Errorf("worker %d: %v", w, err)
					return
				}
				outputs[w] = out
			}
		}(w)
	}
	wg.Wait()
	for w, out := range outputs {
		if out != "a2[1]b3[2]a4[3]q0" {
			t.Errorf("worker %d rendered %q", w, out)
		}
	}
}

func TestPartialsReadOncePerRender(t *testing.T) {
	calls := 0
	fs := FileSystemFunc(func(name string) (string, error) {
		calls++
		return "[" + name + "]", nil
	})
	tpl := mustParse(t, "{% include 'x' %}{% include 'x' %}{% render 'x' %}")
	opt := WithRegisters(map[string]any{RegisterFileSystem: fs})

	out, err := tpl.Render(nil, opt)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "[x][x][x]" {
		t.Fatalf("render = %q", out)
	}
	if calls != 1 {
		t.Fatalf("file system read %d times in one render, want 1", calls)
	}
	if _, err := tpl.Render(nil, opt); err != nil {
		t.Fatalf("second render: %v", err)
	}
	if calls != 2 {
		t.Fatalf("file system read %d times in two renders, want 2", calls)
	}

	shared := NewRegisters(map[string]any{RegisterFileSystem: fs})
	calls = 0
	for i := 0; i < 3; i++ {
		if _, err := tpl.Render(nil, WithSharedRegisters(shared)); err != nil {
			t.Fatalf("shared render: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("shared registers read %d times, want 1", calls)
	}
}

func TestMissingPartial(t *testing.T) {
	out := render(t, "a{% include 'nope' %}b", nil, withFiles(map[string]string{}))
	if out != "aLiquid error (line 1): Could not find asset nopeb" {
		t.Fatalf("render = %q", out)
	}
	out = render(t, "{% include 'nope' %}", nil)
	if out != "Liquid error (line 1): This liquid context does not allow includes." {
		t.Fatalf("render without file system = %q", out)
	}
}

func TestPartialSyntaxErrorIsInline(t *testing.T) {
	out := render(t, "a{% include 'bad' %}b", nil, withFiles(map[string]string{"bad": "x\n{% if %}"}))
	if out != "aLiquid syntax error (bad line 2): Syntax Error in tag 'if' - Valid syntax: if [expression]b" {
		t.Fatalf("render = %q", out)
	}
}

func TestBreakOutsideLoop(t *testing.T) {
	if got := render(t, "a{% break %}b", nil); got != "a" {
		t.Fatalf("render = %q", got)
	}
	// The signal does not leak into the next render.
	tpl := mustParse(t, "{% if stop %}{% break %}{% endif %}x")
	if out, _ := tpl.Render(map[string]any{"stop": true}); out != "" {
		t.Fatalf("render = %q", out)
	}
	if out, _ := tpl.Render(nil); out != "x" {
		t.Fatalf("render = %q", out)
	}
}

func TestLocaleOverride(t *testing.T) {
	fr, err := LoadLocale(strings.NewReader("errors:\n  syntax:\n    unknown_tag: \"Balise inconnue '%{tag}'\"\n"))
	if err != nil {
		t.Fatalf("LoadLocale: %v", err)
	}
	env := NewEnvironment()
	env.Locale = DefaultLocale().Merge(fr)
	_, err = env.Parse("{% foo %}")
	if err == nil || err.Error() != "Liquid syntax error (line 1): Balise inconnue 'foo'" {
		t.Fatalf("error = %v", err)
	}
	_, err = env.Parse("{% if x %}")
	if err == nil || err.Error() != "Liquid syntax error (line 1): 'if' tag was never closed" {
		t.Fatalf("fallback error = %v", err)
	}
}

func TestLocaleOverrideReachesRuntimeMessages(t *testing.T) {
	fr, err := LoadLocale(strings.NewReader(`errors:
  syntax:
    unexpected_character: "Caractere inattendu %{character}"
    unexpected_token: "Attendu %{expected}, trouve %{found}"
  argument:
    invalid_integer: "entier invalide"
  runtime:
    memory: "Limites de memoire depassees"
    no_file_system: "Pas d'inclusions ici"
`))
	if err != nil {
		t.Fatalf("LoadLocale: %v", err)
	}
	env := NewEnvironment()
	env.Locale = DefaultLocale().Merge(fr)

	for _, tt := range []struct{ src, want string }{
		{"{{ a = b }}", "Caractere inattendu ="},
		{"{{ a b }}", "trouve b"},
		{"{% if a = b %}{% endif %}", "Caractere inattendu ="},
	} {
		_, err := env.Parse(tt.src, WithErrorMode(ErrorModeStrict))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Parse(%q) error = %v, want %q", tt.src, err, tt.want)
		}
	}

	for _, tt := range []struct {
		src    string
		limits Limits
		want   string
	}{
		{"{% include 'x' %}", Limits{}, "Pas d'inclusions ici"},
		{"{% for i in (1..x) %}{% endfor %}", Limits{}, "entier invalide"},
	} {
		tpl, err := env.Parse(tt.src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.src, err)
		}
		out, err := tpl.Render(map[string]any{"x": "z"}, WithResourceLimits(tt.limits))
		if err != nil {
			t.Fatalf("Render(%q): %v", tt.src, err)
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("Render(%q) = %q, want %q", tt.src, out, tt.want)
		}
	}

	tpl, err := env.Parse("{% for i in (1..5) %}{% endfor %}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = tpl.Render(nil, WithResourceLimits(Limits{LoopIterations: 2}))
	if !errors.Is(err, ErrResourceLimit) || !strings.Contains(err.Error(), "Limites de memoire depassees") {
		t.Errorf("limit error = %v", err)
	}
}

func TestTemplateName(t *testing.T) {
	_, err := Parse("\n{% foo %}", WithTemplateName("page"))
	if err == nil || err.Error() != "Liquid syntax error (page line 2): Unknown tag 'foo'" {
		t.Fatalf("error = %v", err)
	}
}
