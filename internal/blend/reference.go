package blend

import (
	"math"

	"golang.org/x/exp/constraints"
)

// The functions below evaluate blending directly in Go with the same
// integer semantics as the emitted code. They exist to check generated
// routines against and are not used on the generation path.

// clamp limits v to [lo, hi].
func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// toInt32 truncates toward zero like fptosi: NaN gives 0 and
// out-of-range values clamp.
func toInt32(f float32) int32 {
	x := float64(f)
	switch {
	case math.IsNaN(x):
		return 0
	case x >= math.MaxInt32:
		return math.MaxInt32
	case x <= math.MinInt32:
		return math.MinInt32
	}
	return int32(x)
}

// toUint32 truncates toward zero like fptoui: NaN and negatives give 0.
func toUint32(f float32) uint32 {
	x := float64(f)
	switch {
	case math.IsNaN(x), x <= 0:
		return 0
	case x >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(x)
}

// PackBytes packs RGBA bytes into a word, red in the low byte.
func PackBytes(c [4]uint8) uint32 {
	return uint32(c[0]) | uint32(c[1])<<8 | uint32(c[2])<<16 | uint32(c[3])<<24
}

// UnpackBytes splits a packed word into RGBA bytes.
func UnpackBytes(w uint32) [4]uint8 {
	return [4]uint8{uint8(w), uint8(w >> 8), uint8(w >> 16), uint8(w >> 24)}
}

// SaturateRef clamps each lane to [0,255].
func SaturateRef(v [4]int32) [4]int32 {
	for i := range v {
		v[i] = clamp(v[i], 0, 255)
	}
	return v
}

// FactorRef evaluates factor f for all four lanes. src, dst and constant
// are the integer color operands.
func FactorRef(f Factor, src, dst, constant [4]int32) [4]int32 {
	splat := func(v int32) [4]int32 { return [4]int32{v, v, v, v} }
	sub := func(a int32, v [4]int32) [4]int32 {
		for i := range v {
			v[i] = a - v[i]
		}
		return v
	}
	sa, da, ca := src[3], dst[3], constant[3]
	switch f {
	case FactorZero:
		return [4]int32{}
	case FactorOne:
		return splat(255)
	case FactorSrcColor:
		return src
	case FactorOneMinusSrcColor:
		return sub(255, src)
	case FactorDstColor:
		return dst
	case FactorOneMinusDstColor:
		return sub(255, dst)
	case FactorSrcAlpha:
		return splat(sa)
	case FactorOneMinusSrcAlpha:
		return splat(255 - sa)
	case FactorDstAlpha:
		return splat(da)
	case FactorOneMinusDstAlpha:
		return splat(255 - da)
	case FactorSrcAlphaSaturate:
		m := min(sa, 255-da)
		return [4]int32{m, m, m, 255}
	case FactorConstantColor:
		return constant
	case FactorOneMinusConstantColor:
		return sub(255, constant)
	case FactorConstantAlpha:
		return splat(ca)
	case FactorOneMinusConstantAlpha:
		return splat(255 - ca)
	}
	panic("blend: unknown factor " + f.String())
}

// alphaFactorRef evaluates f for the alpha channel alone.
func alphaFactorRef(f Factor, src, dst, constant [4]int32) int32 {
	if f == FactorSrcAlphaSaturate {
		return 255
	}
	return FactorRef(f, src, dst, constant)[3]
}

func equationRef(e Equation, s, d int32) int32 {
	switch e {
	case EquationAdd:
		return s + d
	case EquationSubtract:
		return s - d
	case EquationReverseSubtract:
		return d - s
	}
	panic("blend: unknown equation " + e.String())
}

// Reference blends shader output out over the packed framebuffer word
// dst exactly as the code emitted by Emit does.
func Reference(s State, out [4]float32, dst uint32) uint32 {
	if !s.Enable {
		var c [4]uint8
		for i := range c {
			c[i] = uint8(min(toUint32(out[i]*255), 255))
		}
		return PackBytes(c)
	}

	var src, d, constant [4]int32
	db := UnpackBytes(dst)
	if !s.ReadsDestination() {
		db = [4]uint8{}
	}
	for i := range src {
		src[i] = toInt32(out[i] * 255)
		d[i] = int32(db[i])
		constant[i] = int32(s.Constant[i])
	}

	sf := FactorRef(s.SrcColor, src, d, constant)
	if s.SrcColor != s.SrcAlpha {
		sf[3] = alphaFactorRef(s.SrcAlpha, src, d, constant)
	}
	df := FactorRef(s.DstColor, src, d, constant)
	if s.DstColor != s.DstAlpha {
		df[3] = alphaFactorRef(s.DstAlpha, src, d, constant)
	}

	var res [4]int32
	for i := range res {
		sf[i] += int32(uint32(sf[i]) >> 7)
		df[i] += int32(uint32(df[i]) >> 7)
		res[i] = equationRef(s.ColorEquation, src[i]*sf[i], d[i]*df[i])
	}
	if s.ColorEquation != s.AlphaEquation {
		res[3] = equationRef(s.AlphaEquation, src[3]*sf[3], d[3]*df[3])
	}

	var c [4]uint8
	for i := range res {
		c[i] = uint8(clamp(res[i]>>8, 0, 255))
	}
	return PackBytes(c)
}
