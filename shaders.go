package flinger

import (
	"fmt"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/flinger/internal/ir"
	"github.com/gogpu/flinger/shader"
)

// ConstantColorShader registers a shader that writes c to the fragment
// color and reads nothing.
func (r *Registry) ConstantColorShader(name string, c [4]float32) (Program, error) {
	fn, err := r.module.NewFunction(name, nil)
	if err != nil {
		return Program{}, fmt.Errorf("flinger: %w", err)
	}
	b := ir.NewBuilder(fn)
	block := b.Load(r.attributes(), "attributes")
	b.Store(ir.ConstFloats(c[0], c[1], c[2], c[3]), b.GEP(block, shader.SlotFragColor))
	b.RetVoid()
	return Program{Name: name}, nil
}

// VaryingColorShader registers a shader that copies varying slot i to the
// fragment color.
func (r *Registry) VaryingColorShader(name string, i int) (Program, error) {
	info := shader.Info{VaryingSlots: i + 1}
	if i < 0 {
		return Program{}, fmt.Errorf("flinger: varying slot %d", i)
	}
	if err := info.Validate(); err != nil {
		return Program{}, err
	}
	fn, err := r.module.NewFunction(name, nil)
	if err != nil {
		return Program{}, fmt.Errorf("flinger: %w", err)
	}
	b := ir.NewBuilder(fn)
	block := b.Load(r.attributes(), "attributes")
	v := b.Load(b.GEP(block, shader.SlotVaryings+i), "varying")
	b.Store(v, b.GEP(block, shader.SlotFragColor))
	b.RetVoid()
	return Program{Name: name, Info: info}, nil
}

// NativeShader registers a shader implemented in Go. body receives the
// attribute block of the current fragment and writes its output to
// block[shader.SlotFragColor]. info declares which inputs body reads, so
// the scanline advances them.
func (r *Registry) NativeShader(name string, info shader.Info, body func(block []f32.Vec4)) (Program, error) {
	if body == nil {
		return Program{}, fmt.Errorf("flinger: native shader %q has no body", name)
	}
	if err := info.Validate(); err != nil {
		return Program{}, err
	}
	g := r.attributes()
	_, err := r.module.NewNativeFunction(name, func(env *ir.Env) {
		block, ok := env.Load(g).Ptr.Vec4Slice()
		if !ok {
			panic(fmt.Sprintf("flinger: shader %q called without an attribute block", name))
		}
		body(block)
	})
	if err != nil {
		return Program{}, fmt.Errorf("flinger: %w", err)
	}
	return Program{Name: name, Info: info}, nil
}

// WGSLShader registers body as a native shader whose inputs are taken
// from the fragment entry point of the WGSL module source.
func (r *Registry) WGSLShader(name, source string, body func(block []f32.Vec4)) (Program, error) {
	info, err := shader.Reflect(source)
	if err != nil {
		return Program{}, fmt.Errorf("flinger: shader %q: %w", name, err)
	}
	return r.NativeShader(name, info, body)
}
