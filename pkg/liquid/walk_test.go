package liquid

import (
	"errors"
	"strings"
	"testing"
)

func TestWalkVisitsNestedBodies(t *testing.T) {
	tpl := mustParse(t, "a{% if x %}{{ y }}{% else %}{% for i in z %}{{ i }}{% endfor %}{% endif %}")
	var names []string
	err := Walk(VisitorFunc(func(n Node) error {
		switch v := n.(type) {
		case *Document:
			names = append(names, "doc")
		case *Text:
			names = append(names, "text")
		case *Variable:
			names = append(names, "var")
		case Tag:
			names = append(names, v.Name())
		}
		return nil
	}), tpl.Root())
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got, want := strings.Join(names, ","), "doc,text,if,var,for,var"; got != want {
		t.Fatalf("visited %s, want %s", got, want)
	}
}

func TestWalkStops(t *testing.T) {
	tpl := mustParse(t, "{{ a }}{{ b }}")
	stop := errors.New("stop")
	seen := 0
	err := Walk(VisitorFunc(func(n Node) error {
		if _, ok := n.(*Variable); ok {
			seen++
			return stop
		}
		return nil
	}), tpl.Root())
	if !errors.Is(err, stop) || seen != 1 {
		t.Fatalf("err = %v, seen = %d", err, seen)
	}
}

func TestPretty(t *testing.T) {
	tpl := mustParse(t, "hi {{ name | upcase }}\n{% assign x = 1 %}{% if x %}y{% endif %}")
	got := Pretty(tpl)
	for _, want := range []string{
		"Document\n",
		`  Text("hi ")`,
		"  Output(name | upcase) line 1\n",
		`  Tag(assign "x = 1") line 2 blank`,
		`  Tag(if "x") line 2`,
		"    Body 0\n",
		`      Text("y")`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("Pretty output missing %q:\n%s", want, got)
		}
	}
}
