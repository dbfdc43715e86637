package ir

import "math"

// evalBinary applies a lane-wise binary op. Both the builder's constant
// folder and the executor go through here, so folded and executed results
// are identical.
func evalBinary(op Op, t *Type, a, b Word) Word {
	var r Word
	m := t.mask()
	for i := 0; i < t.Lanes; i++ {
		x, y := a.Lanes[i], b.Lanes[i]
		var v uint32
		switch op {
		case OpAdd:
			v = x + y
		case OpSub:
			v = x - y
		case OpMul:
			v = x * y
		case OpAnd:
			v = x & y
		case OpOr:
			v = x | y
		case OpXor:
			v = x ^ y
		case OpShl:
			v = x << (y & 31)
		case OpLShr:
			v = (x & m) >> (y & 31)
		case OpAShr:
			v = uint32(signExtend(t, x) >> (y & 31))
		case OpSMin:
			v = x
			if signExtend(t, y) < signExtend(t, x) {
				v = y
			}
		case OpSMax:
			v = x
			if signExtend(t, y) > signExtend(t, x) {
				v = y
			}
		case OpUMin:
			v = x
			if y&m < x&m {
				v = y
			}
		case OpFAdd:
			v = math.Float32bits(math.Float32frombits(x) + math.Float32frombits(y))
		case OpFMul:
			v = math.Float32bits(math.Float32frombits(x) * math.Float32frombits(y))
		default:
			panic("ir: not a binary op: " + op.String())
		}
		if !t.IsFloat() {
			v &= m
		}
		r.Lanes[i] = v
	}
	return r
}

// evalICmp compares lane 0 of a and b.
func evalICmp(p Pred, t *Type, a, b Word) bool {
	x, y := a.Lanes[0]&t.mask(), b.Lanes[0]&t.mask()
	sx, sy := signExtend(t, x), signExtend(t, y)
	switch p {
	case EQ:
		return x == y
	case NE:
		return x != y
	case ULT:
		return x < y
	case ULE:
		return x <= y
	case UGT:
		return x > y
	case UGE:
		return x >= y
	case SLT:
		return sx < sy
	case SLE:
		return sx <= sy
	case SGT:
		return sx > sy
	case SGE:
		return sx >= sy
	}
	panic("ir: unknown predicate " + p.String())
}

// evalConvert converts float lanes to integers, truncating toward zero.
// NaN converts to 0; out-of-range values clamp to the destination range.
func evalConvert(op Op, t *Type, a Word) Word {
	var r Word
	for i := 0; i < t.Lanes; i++ {
		f := float64(math.Float32frombits(a.Lanes[i]))
		var v uint32
		switch {
		case math.IsNaN(f):
			v = 0
		case op == OpFPToSI:
			switch {
			case f >= math.MaxInt32:
				v = math.MaxInt32
			case f <= math.MinInt32:
				v = 1 << 31
			default:
				v = uint32(int32(f))
			}
		case op == OpFPToUI:
			switch {
			case f <= 0:
				v = 0
			case f >= math.MaxUint32:
				v = math.MaxUint32
			default:
				v = uint32(f)
			}
		default:
			panic("ir: not a conversion: " + op.String())
		}
		r.Lanes[i] = v
	}
	return r
}

func boolWord(v bool) Word {
	if v {
		return Word{Lanes: [Lanes]uint32{1}}
	}
	return Word{}
}
