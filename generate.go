package flinger

import (
	"fmt"

	"github.com/gogpu/flinger/internal/blend"
	"github.com/gogpu/flinger/internal/ir"
	"github.com/gogpu/flinger/internal/stencil"
	"github.com/gogpu/flinger/shader"
)

// Scanline routine parameters, in order.
var (
	scanlineParams = []*ir.Type{
		ir.PointerTo(ir.F32x4), // start
		ir.PointerTo(ir.F32x4), // step
		ir.PointerTo(ir.I32),   // frame
		ir.PointerTo(ir.I32),   // depth
		ir.PointerTo(ir.I8),    // stencil
		ir.PointerTo(ir.I8),    // stencil state
		ir.I32,                 // count
	}
	scanlineParamNames = []string{"start", "step", "frame", "depth", "stencil", "stencilState", "count"}
)

// depthSignFix turns the bits of a negative float into an int32 that
// orders correctly against other floats under signed comparison.
const depthSignFix = 0x7fffffff

// Generate builds a scanline routine that runs prog under cfg for a
// contiguous run of fragments and registers it in reg under name.
//
// Generation is idempotent by name: if reg already holds a routine called
// name it is returned unchanged, whatever prog and cfg are. An unknown
// shader yields ErrShaderNotFound. An unrecognized code in the parts of
// cfg that are enabled yields an error wrapping ErrUnknownCode and leaves
// reg as it was.
func Generate(reg *Registry, prog Program, cfg PipelineConfig, name string, opts ...GenerateOption) (r *Routine, err error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.With("routine", name)

	if r := reg.routines[name]; r != nil {
		log.Debug("flinger: already generated")
		return r, nil
	}
	sh := reg.module.Function(prog.Name)
	if sh == nil {
		return nil, fmt.Errorf("%w: %q", ErrShaderNotFound, prog.Name)
	}
	if err := prog.Info.Validate(); err != nil {
		return nil, err
	}
	fn, err := reg.module.NewFunction(name, scanlineParams, scanlineParamNames...)
	if err != nil {
		return nil, fmt.Errorf("flinger: %w", err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		reg.module.Remove(name)
		ae, ok := p.(*ir.AbortError)
		if !ok {
			panic(p)
		}
		log.Warn("flinger: generation aborted", "err", ae)
		r, err = nil, fmt.Errorf("%w: %s", ErrUnknownCode, ae)
	}()

	b := ir.NewBuilder(fn)
	g := &scanline{
		b:      b,
		f:      ir.NewFlow(b),
		cfg:    cfg,
		info:   prog.Info,
		shader: sh,
		attrs:  reg.attributes(),
	}
	g.emit()

	compiled, err := ir.Compile(fn)
	if err != nil {
		reg.module.Remove(name)
		return nil, fmt.Errorf("flinger: %w", err)
	}
	r = &Routine{
		name:        name,
		fn:          fn,
		prog:        compiled,
		depthTest:   cfg.Buffer.DepthTest,
		stencilTest: cfg.Buffer.StencilTest,
		blockLen:    prog.Info.BlockLen(),
	}
	reg.routines[name] = r
	log.Debug("flinger: generated", "shader", prog.Name, "instructions", fn.Instructions())
	if o.dump != nil {
		if err := fn.Print(o.dump); err != nil {
			return r, fmt.Errorf("flinger: dump %q: %w", name, err)
		}
	}
	return r, nil
}

// MustGenerate is like Generate but panics on error.
func MustGenerate(reg *Registry, prog Program, cfg PipelineConfig, name string, opts ...GenerateOption) *Routine {
	r, err := Generate(reg, prog, cfg, name, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// scanline emits the body of one routine.
type scanline struct {
	b      *ir.Builder
	f      *ir.Flow
	cfg    PipelineConfig
	info   shader.Info
	shader *ir.Function
	attrs  *ir.Global
}

func (g *scanline) emit() {
	b, f, cfg := g.b, g.f, g.cfg
	fn := b.Function()
	start, step := fn.Param(0), fn.Param(1)
	state := fn.Param(5)

	b.Store(start, g.attrs)

	framePtr := b.Alloca(fn.Param(2).Type(), "framePtr")
	b.Store(fn.Param(2), framePtr)
	depthPtr := b.Alloca(fn.Param(3).Type(), "depthPtr")
	b.Store(fn.Param(3), depthPtr)
	stencilPtr := b.Alloca(fn.Param(4).Type(), "stencilPtr")
	b.Store(fn.Param(4), stencilPtr)
	countPtr := b.Alloca(ir.I32, "countPtr")
	b.Store(fn.Param(6), countPtr)

	var face, ref, mask ir.Value
	if cfg.Buffer.StencilTest {
		face = b.Load(b.GEP(state, stencilStateFace), "sFace")
		ref = g.stateByte(state, stencilStateRef, cfg.Front.Ref, cfg.Back.Ref, "sRef")
		mask = g.stateByte(state, stencilStateMask, cfg.Front.Mask, cfg.Back.Mask, "sMask")
	}

	f.BeginLoop()

	frame := b.Load(framePtr, "frame")
	var depth ir.Value
	if cfg.Buffer.DepthTest {
		depth = b.Load(depthPtr, "depth")
	}
	count := b.Load(countPtr, "count")
	f.IfCond(b.ICmp(ir.EQ, count, ir.ConstInt(ir.I32, 0)), "if_break_loop")
	f.Break()
	f.EndIf()

	var (
		sBuf, sPtr ir.Value
		sPass      ir.Value = ir.ConstBool(true)
	)
	if cfg.Buffer.StencilTest {
		sBuf = b.Load(stencilPtr, "stencil")
		sPtr = b.Alloca(ir.I8, "sPtr")
		s := b.And(b.Load(sBuf), mask)
		b.Store(s, sPtr)
		sPass = g.stencilTest(face, s, ref)
	}

	var (
		z     ir.Value
		zPass ir.Value = ir.ConstBool(true)
	)
	if cfg.Buffer.DepthTest {
		stored := b.Load(depth, "depthZ")
		z = g.incomingDepth(start)
		zPass = stencil.Compare(b, cfg.Buffer.DepthFunc, z, stored, true)
	}

	f.IfCond(sPass, "if_sCmp", "sCmp_fail")
	f.IfCond(zPass, "if_zCmp", "zCmp_fail")
	g.shade(start, frame)
	if cfg.Buffer.DepthTest {
		b.Store(z, depth)
	}
	if cfg.Buffer.StencilTest {
		b.Store(stencil.EmitFaceOp(f, b, face, cfg.Front.DepthPass, cfg.Back.DepthPass, sPtr, ref), sBuf)
	}
	f.Else()
	if cfg.Buffer.StencilTest {
		b.Store(stencil.EmitFaceOp(f, b, face, cfg.Front.DepthFail, cfg.Back.DepthFail, sPtr, ref), sBuf)
	}
	f.EndIf()
	f.Else()
	if cfg.Buffer.StencilTest {
		b.Store(stencil.EmitFaceOp(f, b, face, cfg.Front.Fail, cfg.Back.Fail, sPtr, ref), sBuf)
	}
	f.EndIf()

	b.Store(b.GEP(frame, 1), framePtr)
	if cfg.Buffer.DepthTest {
		b.Store(b.GEP(depth, 1), depthPtr)
	}
	if cfg.Buffer.StencilTest {
		b.Store(b.GEP(sBuf, 1), stencilPtr)
	}
	g.advance(start, step)

	b.Store(b.Sub(count, ir.ConstInt(ir.I32, 1)), countPtr)
	f.EndLoop()

	b.RetVoid()
	f.Close()
}

// stateByte returns a stencil parameter as a constant when both faces
// agree, or loads it from the runtime state block.
func (g *scanline) stateByte(state ir.Value, off int, front, back uint8, name string) ir.Value {
	if front == back {
		return ir.ConstInt(ir.I8, int64(front))
	}
	return g.b.Load(g.b.GEP(state, off), name)
}

// stencilTest compares ref against the masked stencil value s.
func (g *scanline) stencilTest(face, s, ref ir.Value) ir.Value {
	b := g.b
	front, back := g.cfg.Front.Func, g.cfg.Back.Func
	if front == back {
		return stencil.Compare(b, front, ref, s, false)
	}
	out := b.Alloca(ir.I1, "sCmpPtr")
	g.f.IfElse(b.ICmp(ir.EQ, face, ir.ConstInt(ir.I8, 0)),
		func() { stencil.EmitFunc(b, front, s, ref, out) },
		func() { stencil.EmitFunc(b, back, s, ref, out) })
	return b.Load(out, "sCmp")
}

// incomingDepth loads the fragment depth bits and applies the sign fix.
func (g *scanline) incomingDepth(start ir.Value) ir.Value {
	b := g.b
	zp := b.GEP(b.BitCast(start, ir.PointerTo(ir.I32)), shader.SlotFragCoord*ir.Lanes+shader.DepthLane)
	z := b.Load(zp, "z")
	zPtr := b.Alloca(ir.I32, "zPtr")
	b.Store(z, zPtr)
	g.f.If(b.ICmp(ir.SLT, z, ir.ConstInt(ir.I32, 0)), func() {
		b.Store(b.Xor(z, ir.ConstInt(ir.I32, depthSignFix)), zPtr)
	})
	return b.Load(zPtr, "z")
}

// shade runs the shader and writes the blended color to frame.
func (g *scanline) shade(start, frame ir.Value) {
	b := g.b
	b.Call(g.shader)

	var dst ir.Value = ir.Null(ir.I32x4)
	if g.cfg.Blend.ReadsDestination() {
		dst = blend.Unpack(b, b.Load(frame, "frameColor"))
	}
	src := b.Load(b.GEP(start, shader.SlotFragColor), "fragColor")
	b.Store(blend.Emit(b, g.cfg.Blend, src, dst), frame)
}

// advance steps the interpolated attributes the shader and the depth
// test read by one fragment.
func (g *scanline) advance(start, step ir.Value) {
	b := g.b
	slot := func(i int) {
		p := b.GEP(start, i)
		d := b.Load(b.GEP(step, i))
		b.Store(b.FAdd(b.Load(p), d), p)
	}
	switch {
	case g.info.UsesFragCoord:
		slot(shader.SlotFragCoord)
	case g.cfg.Buffer.DepthTest:
		off := shader.SlotFragCoord*ir.Lanes + shader.DepthLane
		p := b.GEP(b.BitCast(start, ir.PointerTo(ir.F32)), off)
		d := b.Load(b.GEP(b.BitCast(step, ir.PointerTo(ir.F32)), off))
		b.Store(b.FAdd(b.Load(p), d), p)
	}
	if g.info.UsesPointCoord {
		slot(shader.SlotPointCoord)
	}
	for i := 0; i < g.info.VaryingSlots; i++ {
		slot(shader.SlotVaryings + i)
	}
}
