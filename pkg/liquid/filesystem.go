package liquid

import (
	"errors"
	"fmt"
)

// FileSystem resolves partial names to template source.
type FileSystem interface {
	ReadTemplate(name string) (string, error)
}

// FileSystemFunc adapts a function to FileSystem.
type FileSystemFunc func(name string) (string, error)

func (f FileSystemFunc) ReadTemplate(name string) (string, error) { return f(name) }

// MemoryFileSystem serves partials from a map.
type MemoryFileSystem map[string]string

func (m MemoryFileSystem) ReadTemplate(name string) (string, error) {
	if s, ok := m[name]; ok {
		return s, nil
	}
	return "", ErrTemplateNotFound{Name: name}
}

// BlankFileSystem refuses every include.
type BlankFileSystem struct{}

func (BlankFileSystem) ReadTemplate(string) (string, error) {
	return "", &Error{Kind: ErrFileSystem, Message: defaultLocale.T("errors.runtime.no_file_system"), Cause: errNoFileSystem}
}

var errNoFileSystem = errors.New("no file system")

// ErrTemplateNotFound is returned by file systems for unknown names.
type ErrTemplateNotFound struct{ Name string }

func (e ErrTemplateNotFound) Error() string {
	return defaultLocale.T("errors.runtime.template_not_found", "name", e.Name)
}

// fileSystemError converts resolver failures into file system errors whose
// message is shown to template authors.
func fileSystemError(name string, err error, loc *Locale) error {
	if errors.Is(err, errNoFileSystem) {
		return &Error{Kind: ErrFileSystem, Message: loc.T("errors.runtime.no_file_system"), Cause: err}
	}
	var le *Error
	if errors.As(err, &le) {
		return le
	}
	var nf ErrTemplateNotFound
	if errors.As(err, &nf) {
		return &Error{Kind: ErrFileSystem, Message: loc.T("errors.runtime.template_not_found", "name", nf.Name), Cause: err}
	}
	return &Error{Kind: ErrFileSystem, Message: fmt.Sprintf("reading %q failed", name), Cause: err}
}
