package parser

import (
	"fmt"
	"sort"
)

// Backend names understood by NewRegistry.
const (
	BackendPDF = "pdf" // github.com/ledongthuc/pdf
)

type Registry struct {
	openers map[string]Opener
}

func NewRegistry() *Registry {
	r := &Registry{openers: make(map[string]Opener)}
	// Register built-in backends
	for _, o := range []Opener{&PDFParser{}} {
		r.openers[o.Name()] = o
	}
	return r
}

func (r *Registry) Get(backend string) (Opener, error) {
	o, ok := r.openers[backend]
	if !ok {
		return nil, fmt.Errorf("no parser backend named %q", backend)
	}
	return o, nil
}

func (r *Registry) Register(backend string, o Opener) {
	r.openers[backend] = o
}

// Backends lists the registered backend names in sorted order.
func (r *Registry) Backends() []string {
	names := make([]string, 0, len(r.openers))
	for name := range r.openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
