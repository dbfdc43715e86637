package stencil

import "github.com/gogpu/flinger/internal/ir"

// EmitOp emits op against the i8 cell at sPtr, with ref as the
// replacement value. INCR and DECR need one runtime branch each to
// saturate; every other op is straight-line.
func EmitOp(f *ir.Flow, b *ir.Builder, op Op, sPtr, ref ir.Value) {
	s := b.Load(sPtr, "stencilOpS")
	one := ir.ConstInt(ir.I8, 1)
	switch op {
	case OpZero:
		b.Store(ir.ConstInt(ir.I8, 0), sPtr)
	case OpKeep:
		b.Store(s, sPtr)
	case OpReplace:
		b.Store(ref, sPtr)
	case OpIncr:
		f.IfElse(b.ICmp(ir.EQ, s, ir.ConstInt(ir.I8, 255)),
			func() { b.Store(s, sPtr) },
			func() { b.Store(b.Add(s, one), sPtr) })
	case OpDecr:
		f.IfElse(b.ICmp(ir.EQ, s, ir.ConstInt(ir.I8, 0)),
			func() { b.Store(s, sPtr) },
			func() { b.Store(b.Sub(s, one), sPtr) })
	case OpInvert:
		b.Store(b.Not(s), sPtr)
	case OpIncrWrap:
		b.Store(b.Add(s, one), sPtr)
	case OpDecrWrap:
		b.Store(b.Sub(s, one), sPtr)
	default:
		ir.Abort("stencil op", int(op))
	}
}

// EmitFaceOp applies front or back to sPtr depending on the runtime face
// value (0 selects front) and returns the resulting value. When both faces
// use the same op no branch is emitted.
func EmitFaceOp(f *ir.Flow, b *ir.Builder, face ir.Value, front, back Op, sPtr, ref ir.Value) ir.Value {
	if front == back {
		EmitOp(f, b, front, sPtr, ref)
	} else {
		f.IfElse(b.ICmp(ir.EQ, face, ir.ConstInt(ir.I8, 0)),
			func() { EmitOp(f, b, front, sPtr, ref) },
			func() { EmitOp(f, b, back, sPtr, ref) })
	}
	return b.Load(sPtr)
}

// EmitFunc stores into the i1 cell at out whether ref passes fn against
// value. NEVER and ALWAYS store constants without comparing.
func EmitFunc(b *ir.Builder, fn Func, value, ref, out ir.Value) {
	b.Store(Compare(b, fn, ref, value, false), out)
}

// Compare emits "x fn y". Stencil tests compare unsigned; depth tests
// pass signed to order sign-fixed depth values. NEVER and ALWAYS fold to
// constants. An unknown code aborts emission.
func Compare(b *ir.Builder, fn Func, x, y ir.Value, signed bool) ir.Value {
	lt, le, gt, ge := ir.ULT, ir.ULE, ir.UGT, ir.UGE
	if signed {
		lt, le, gt, ge = ir.SLT, ir.SLE, ir.SGT, ir.SGE
	}
	switch fn {
	case Never:
		return ir.ConstBool(false)
	case Less:
		return b.ICmp(lt, x, y)
	case Equal:
		return b.ICmp(ir.EQ, x, y)
	case LessEqual:
		return b.ICmp(le, x, y)
	case Greater:
		return b.ICmp(gt, x, y)
	case NotEqual:
		return b.ICmp(ir.NE, x, y)
	case GreaterEqual:
		return b.ICmp(ge, x, y)
	case Always:
		return ir.ConstBool(true)
	}
	ir.Abort("compare func", int(fn))
	return nil
}
