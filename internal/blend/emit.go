package blend

import "github.com/gogpu/flinger/internal/ir"

// Emit emits the blend of shader output src (f32x4, roughly [0,1]) over
// dst (i32x4 bytes unpacked from the framebuffer) and returns the packed
// i32 color to store.
//
// With blending disabled dst is ignored and src is converted with an
// unsigned truncation. With blending enabled src is converted with a
// signed truncation, so out-of-range shader output can drive factors
// negative before the final saturation.
func Emit(b *ir.Builder, s State, src, dst ir.Value) ir.Value {
	scale := ir.ConstFloats(255, 255, 255, 255)
	if !s.Enable {
		src = b.FMul(src, scale)
		src = b.FPToUI(src, ir.I32x4)
		src = b.UMin(src, ir.ConstInts(255, 255, 255, 255))
		return Pack(b, src)
	}

	src = b.FMul(src, scale)
	src = b.FPToSI(src, ir.I32x4)

	sZero := ir.ConstInt(ir.I32, 0)
	constant := ir.ConstInts(int32(s.Constant[0]), int32(s.Constant[1]), int32(s.Constant[2]), int32(s.Constant[3]))
	o := Operands{
		Src:       src,
		Dst:       dst,
		Constant:  constant,
		One:       ir.ConstInts(255, 255, 255, 255),
		Zero:      ir.Null(ir.I32x4),
		SrcA:      b.Extract(src, 3),
		DstA:      b.Extract(dst, 3),
		ConstantA: b.Extract(constant, 3),
		SOne:      ir.ConstInt(ir.I32, 255),
	}

	sf := EmitFactor(b, s.SrcColor, o, true)
	if s.SrcColor != s.SrcAlpha {
		sfA := EmitFactor(b, s.SrcAlpha, o.scalar(sZero), false)
		sf = b.Insert(sf, sfA, 3)
	}
	df := EmitFactor(b, s.DstColor, o, true)
	if s.DstColor != s.DstAlpha {
		dfA := EmitFactor(b, s.DstAlpha, o.scalar(sZero), false)
		df = b.Insert(df, dfA, 3)
	}

	// factor *= 256/255; constant factors fold here.
	seven := ir.ConstInts(7, 7, 7, 7)
	sf = b.Add(sf, b.LShr(sf, seven))
	df = b.Add(df, b.LShr(df, seven))

	src = b.Mul(src, sf)
	dst = b.Mul(dst, df)

	res := EmitEquation(b, s.ColorEquation, src, dst)
	if s.ColorEquation != s.AlphaEquation {
		resA := EmitEquation(b, s.AlphaEquation, b.Extract(src, 3), b.Extract(dst, 3))
		res = b.Insert(res, resA, 3)
	}

	res = b.AShr(res, ir.ConstInts(8, 8, 8, 8))
	return Pack(b, Saturate(b, res))
}

// EmitEquation combines weighted source and destination terms, which may
// be vectors or scalars. An unknown code aborts emission.
func EmitEquation(b *ir.Builder, e Equation, src, dst ir.Value) ir.Value {
	switch e {
	case EquationAdd:
		return b.Add(src, dst)
	case EquationSubtract:
		return b.Sub(src, dst)
	case EquationReverseSubtract:
		return b.Sub(dst, src)
	}
	ir.Abort("blend equation", int(e))
	return nil
}

// Saturate clamps each signed lane of an i32x4 to [0,255].
func Saturate(b *ir.Builder, v ir.Value) ir.Value {
	v = b.SMax(v, ir.Null(ir.I32x4))
	return b.SMin(v, ir.ConstInts(255, 255, 255, 255))
}

// Pack combines an i32x4 of bytes into one word, lane 0 in the low byte.
func Pack(b *ir.Builder, v ir.Value) ir.Value {
	v = b.Shl(v, ir.ConstInts(0, 8, 16, 24))
	word := b.Extract(v, 0)
	for i := 1; i < ir.Lanes; i++ {
		word = b.Or(word, b.Extract(v, i))
	}
	return word
}

// Unpack splits a packed i32 color into an i32x4 of bytes.
func Unpack(b *ir.Builder, word ir.Value) ir.Value {
	v := b.Splat(word)
	v = b.LShr(v, ir.ConstInts(0, 8, 16, 24))
	return b.And(v, ir.ConstInts(0xff, 0xff, 0xff, 0xff))
}
