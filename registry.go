package flinger

import (
	"github.com/gogpu/flinger/internal/ir"
	"github.com/gogpu/flinger/shader"
)

// attributesGlobal names the module global through which shaders reach
// the current attribute block. Every scanline routine sets it to its
// start parameter before calling the shader.
const attributesGlobal = "flinger.attributes"

// Program is a handle to a fragment shader registered in a Registry.
type Program struct {
	Name string
	Info shader.Info
}

// Registry owns the shared code module that shaders and generated
// scanline routines live in. It performs no locking: generation calls
// against one Registry must be serialized by the caller. Routines taken
// from it may run concurrently.
type Registry struct {
	module   *ir.Module
	routines map[string]*Routine
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		module:   ir.NewModule(),
		routines: make(map[string]*Routine),
	}
}

// Routine returns the routine generated under name, or nil.
func (r *Registry) Routine(name string) *Routine { return r.routines[name] }

// Names returns every registered shader and routine name, sorted.
func (r *Registry) Names() []string { return r.module.Functions() }

// attributes returns the global holding the attribute block pointer.
func (r *Registry) attributes() *ir.Global {
	return r.module.Global(attributesGlobal, ir.PointerTo(ir.F32x4))
}
