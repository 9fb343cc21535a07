// Package platform defines platforms and extensions, the plugin contract
// they are loaded through, and the Manager that owns them once loaded.
package platform

import (
	"errors"
	"fmt"

	"github.com/vk/gdcore/internal/registry"
)

// Platform is a capability boundary, such as a native or a web runtime,
// owning an ordered list of extensions.
type Platform interface {
	Name() string
	Extensions() []*Extension
	AddExtension(ext *Extension)
}

// Module is implemented by packages providing one extension.
type Module interface {
	Extension() *Extension
}

// Base is the standard Platform implementation.
type Base struct {
	name       string
	extensions []*Extension
}

// New creates a platform holding the extensions of modules, in order.
func New(name string, modules ...Module) *Base {
	p := &Base{name: name}
	for _, m := range modules {
		p.AddExtension(m.Extension())
	}
	return p
}

func (p *Base) Name() string { return p.name }

func (p *Base) Extensions() []*Extension {
	return append([]*Extension(nil), p.extensions...)
}

// AddExtension appends ext. A nil extension is ignored.
func (p *Base) AddExtension(ext *Extension) {
	if ext == nil {
		return
	}
	p.extensions = append(p.extensions, ext)
}

// Contribute asks every extension of p, in order, to register into t.
func Contribute(p Platform, t *registry.Table) error {
	var errs []error
	for _, ext := range p.Extensions() {
		if err := ext.Contribute(t); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("platform '%s': %w", p.Name(), errors.Join(errs...))
	}
	return nil
}
