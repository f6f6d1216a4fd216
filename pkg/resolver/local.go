// Package resolver provides the partial sources templates include from:
// a directory, an HTTP theme server with a disk cache, and a SQLite table.
package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/neurodesk/liquid/pkg/liquid"
)

// DefaultPattern maps a partial name to its file name.
const DefaultPattern = "_%s.liquid"

var validName = regexp.MustCompile(`^[^./][a-zA-Z0-9_/]*$`)

// ValidateName rejects partial names that could escape the template root.
func ValidateName(name string) error {
	if !validName.MatchString(name) || strings.Contains(name, "//") {
		return &liquid.Error{Kind: liquid.ErrFileSystem, Message: fmt.Sprintf("Illegal template name '%s'", name)}
	}
	return nil
}

// fileName applies pattern to the last element of name, so "shop/nav"
// becomes "shop/_nav.liquid".
func fileName(pattern, name string) string {
	if pattern == "" {
		pattern = DefaultPattern
	}
	dir, base := "", name
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		dir, base = name[:i+1], name[i+1:]
	}
	return dir + fmt.Sprintf(pattern, base)
}

// Local reads partials from a directory tree.
type Local struct {
	Root    string
	Pattern string
}

// NewLocal returns a Local rooted at root using DefaultPattern.
func NewLocal(root string) *Local {
	return &Local{Root: root, Pattern: DefaultPattern}
}

// Path returns the file a partial name resolves to.
func (l *Local) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	root, err := filepath.Abs(l.Root)
	if err != nil {
		return "", err
	}
	p := filepath.Join(root, filepath.FromSlash(fileName(l.Pattern, name)))
	if rel, err := filepath.Rel(root, p); err != nil || strings.HasPrefix(rel, "..") {
		return "", &liquid.Error{Kind: liquid.ErrFileSystem, Message: fmt.Sprintf("Illegal template path '%s'", p)}
	}
	return p, nil
}

// ReadTemplate implements liquid.FileSystem.
func (l *Local) ReadTemplate(name string) (string, error) {
	p, err := l.Path(name)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", liquid.ErrTemplateNotFound{Name: name}
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}
