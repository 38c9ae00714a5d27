package modules

import "errors"

// Catalog errors
var (
	ErrNotFound          = errors.New("module not found")
	ErrDuplicateKey      = errors.New("duplicate module key")
	ErrNilDescriptor     = errors.New("descriptor cannot be nil")
	ErrMissingKey        = errors.New("descriptor key is required")
	ErrUnknownDependency = errors.New("unknown module dependency")
	ErrDependencyCycle   = errors.New("module dependency cycle")
)

// Descriptor describes one module.
type Descriptor struct {
	Key          string
	Title        string
	Categories   []string
	Contributors []string
	NodeTypes    []string
	Dependencies []string
	Hidden       bool
}

// InCategory reports whether d lists category.
func (d *Descriptor) InCategory(category string) bool {
	for _, c := range d.Categories {
		if c == category {
			return true
		}
	}
	return false
}
