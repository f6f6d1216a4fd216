package resolver

import (
	"errors"

	"github.com/neurodesk/liquid/pkg/liquid"
)

// Chain tries each file system in order and returns the first hit. Only
// not-found errors move on to the next source.
type Chain []liquid.FileSystem

func (c Chain) ReadTemplate(name string) (string, error) {
	for _, fs := range c {
		src, err := fs.ReadTemplate(name)
		var nf liquid.ErrTemplateNotFound
		if errors.As(err, &nf) {
			continue
		}
		return src, err
	}
	return "", liquid.ErrTemplateNotFound{Name: name}
}
