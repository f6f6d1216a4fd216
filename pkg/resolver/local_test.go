package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/neurodesk/liquid/pkg/liquid"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"product", true},
		{"shop/nav", true},
		{"a", true},
		{"snake_case_2", true},
		{"../etc/passwd", false},
		{"/abs", false},
		{".hidden", false},
		{"has space", false},
		{"a//b", false},
		{"dots.liquid", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if (err == nil) != tt.valid {
				t.Fatalf("ValidateName(%q) = %v, valid = %v", tt.name, err, tt.valid)
			}
			if err != nil && !errors.Is(err, liquid.ErrFileSystem) {
				t.Fatalf("error kind = %v", err)
			}
		})
	}
}

func TestLocalPath(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(root)
	p, err := l.Path("shop/nav")
	if err != nil {
		t.Fatalf("Path error: %v", err)
	}
	if want := filepath.Join(root, "shop", "_nav.liquid"); p != want {
		t.Errorf("Path = %s, want %s", p, want)
	}
	l.Pattern = "%s.html"
	if p, _ := l.Path("page"); filepath.Base(p) != "page.html" {
		t.Errorf("custom pattern path = %s", p)
	}
}

func TestLocalReadTemplate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "_product.liquid"), "[{{ product }}]")
	writeFile(t, filepath.Join(root, "shop", "_nav.liquid"), "{% include 'product' with 'p' %}")
	l := NewLocal(root)

	src, err := l.ReadTemplate("product")
	if err != nil || src != "[{{ product }}]" {
		t.Fatalf("ReadTemplate = %q, %v", src, err)
	}
	var nf liquid.ErrTemplateNotFound
	if _, err := l.ReadTemplate("missing"); !errors.As(err, &nf) {
		t.Fatalf("missing partial error = %v", err)
	}

	tpl, err := liquid.Parse("{% include 'shop/nav' %}|{% include 'missing' %}")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	out, err := tpl.Render(nil, liquid.WithRegisters(map[string]any{liquid.RegisterFileSystem: l}))
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if want := "[p]|Liquid error (line 1): Could not find asset missing"; out != want {
		t.Errorf("Render = %q, want %q", out, want)
	}
}

func TestChain(t *testing.T) {
	first := liquid.MemoryFileSystem{"a": "first"}
	second := liquid.MemoryFileSystem{"a": "second", "b": "second"}
	c := Chain{first, second}
	for name, want := range map[string]string{"a": "first", "b": "second"} {
		if got, err := c.ReadTemplate(name); err != nil || got != want {
			t.Errorf("ReadTemplate(%s) = %q, %v", name, got, err)
		}
	}
	var nf liquid.ErrTemplateNotFound
	if _, err := c.ReadTemplate("c"); !errors.As(err, &nf) {
		t.Errorf("missing error = %v", err)
	}
	broken := Chain{liquid.BlankFileSystem{}, second}
	if _, err := broken.ReadTemplate("a"); err == nil {
		t.Error("non-not-found errors must stop the chain")
	}
}
