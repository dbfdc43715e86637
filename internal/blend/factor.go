package blend

import "github.com/gogpu/flinger/internal/ir"

// Operands are the values a blend factor can reference. In vector form
// Src, Dst, Constant, One and Zero are i32x4; in scalar form (used for a
// separate alpha factor) they are the i32 alpha components. SrcA, DstA,
// ConstantA and SOne are always i32 scalars.
type Operands struct {
	Src, Dst, Constant    ir.Value
	One, Zero             ir.Value
	SrcA, DstA, ConstantA ir.Value
	SOne                  ir.Value
}

// EmitFactor emits the blend factor f. With vector set, alpha-based
// factors are broadcast to all four lanes. An unknown code aborts
// emission.
func EmitFactor(b *ir.Builder, f Factor, o Operands, vector bool) ir.Value {
	broadcast := func(v ir.Value) ir.Value {
		if vector {
			return b.Splat(v)
		}
		return v
	}
	switch f {
	case FactorZero:
		return o.Zero
	case FactorOne:
		return o.One
	case FactorSrcColor:
		return o.Src
	case FactorOneMinusSrcColor:
		return b.Sub(o.One, o.Src)
	case FactorDstColor:
		return o.Dst
	case FactorOneMinusDstColor:
		return b.Sub(o.One, o.Dst)
	case FactorSrcAlpha:
		return broadcast(o.SrcA)
	case FactorOneMinusSrcAlpha:
		return broadcast(b.Sub(o.SOne, o.SrcA))
	case FactorDstAlpha:
		return broadcast(o.DstA)
	case FactorOneMinusDstAlpha:
		return broadcast(b.Sub(o.SOne, o.DstA))
	case FactorSrcAlphaSaturate:
		if !vector {
			return o.SOne
		}
		m := b.SMin(o.SrcA, b.Sub(o.SOne, o.DstA))
		return b.Vector(m, m, m, o.SOne)
	case FactorConstantColor:
		return o.Constant
	case FactorOneMinusConstantColor:
		return b.Sub(o.One, o.Constant)
	case FactorConstantAlpha:
		return broadcast(o.ConstantA)
	case FactorOneMinusConstantAlpha:
		return broadcast(b.Sub(o.SOne, o.ConstantA))
	}
	ir.Abort("blend factor", int(f))
	return nil
}

// scalar narrows vector operands to the alpha-only form.
func (o Operands) scalar(sZero ir.Value) Operands {
	return Operands{
		Src: o.SrcA, Dst: o.DstA, Constant: o.ConstantA,
		One: o.SOne, Zero: sZero,
		SrcA: o.SrcA, DstA: o.DstA, ConstantA: o.ConstantA,
		SOne: o.SOne,
	}
}
