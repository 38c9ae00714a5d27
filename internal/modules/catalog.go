package modules

import (
	"fmt"
	"sort"
)

// Catalog holds module descriptors in the order they were added.
type Catalog struct {
	descriptors []*Descriptor
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{descriptors: make([]*Descriptor, 0)}
}

// Add appends d to the catalog.
func (c *Catalog) Add(d *Descriptor) error {
	if d == nil {
		return ErrNilDescriptor
	}
	if d.Key == "" {
		return ErrMissingKey
	}
	for _, existing := range c.descriptors {
		if existing.Key == d.Key {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, d.Key)
		}
	}
	c.descriptors = append(c.descriptors, d)
	return nil
}

// List returns all descriptors, hidden ones included.
func (c *Catalog) List() []*Descriptor {
	return c.descriptors
}

// Visible returns the descriptors not marked hidden.
func (c *Catalog) Visible() []*Descriptor {
	result := make([]*Descriptor, 0, len(c.descriptors))
	for _, d := range c.descriptors {
		if !d.Hidden {
			result = append(result, d)
		}
	}
	return result
}

// Get returns the descriptor with the given key.
func (c *Catalog) Get(key string) (*Descriptor, error) {
	for _, d := range c.descriptors {
		if d.Key == key {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
}

// ByCategory returns the descriptors listing category.
func (c *Catalog) ByCategory(category string) []*Descriptor {
	result := make([]*Descriptor, 0)
	for _, d := range c.descriptors {
		if d.InCategory(category) {
			result = append(result, d)
		}
	}
	return result
}

// Categories returns all unique categories, sorted alphabetically.
func (c *Catalog) Categories() []string {
	return uniqueSorted(func(d *Descriptor) []string { return d.Categories }, c.descriptors)
}

// NodeTypes returns every node type contributed by any module, sorted.
func (c *Catalog) NodeTypes() []string {
	return uniqueSorted(func(d *Descriptor) []string { return d.NodeTypes }, c.descriptors)
}

// HasNodeType reports whether some module contributes typ. Its signature
// matches scene.WithTypeValidator.
func (c *Catalog) HasNodeType(typ string) bool {
	for _, d := range c.descriptors {
		for _, t := range d.NodeTypes {
			if t == typ {
				return true
			}
		}
	}
	return false
}

// LoadOrder returns the descriptors ordered so that every module comes after
// its dependencies. Ties keep catalog order.
func (c *Catalog) LoadOrder() ([]*Descriptor, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(c.descriptors))
	order := make([]*Descriptor, 0, len(c.descriptors))

	var visit func(d *Descriptor, path []string) error
	visit = func(d *Descriptor, path []string) error {
		switch state[d.Key] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %v", ErrDependencyCycle, append(path, d.Key))
		}
		state[d.Key] = visiting
		for _, dep := range d.Dependencies {
			next, err := c.Get(dep)
			if err != nil {
				return fmt.Errorf("%w: %s requires %s", ErrUnknownDependency, d.Key, dep)
			}
			if err := visit(next, append(path, d.Key)); err != nil {
				return err
			}
		}
		state[d.Key] = done
		order = append(order, d)
		return nil
	}

	for _, d := range c.descriptors {
		if err := visit(d, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func uniqueSorted(field func(*Descriptor) []string, descriptors []*Descriptor) []string {
	set := make(map[string]bool)
	for _, d := range descriptors {
		for _, v := range field(d) {
			set[v] = true
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
