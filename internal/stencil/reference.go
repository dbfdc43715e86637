package stencil

// ApplyRef returns the stencil value after op, as emitted by EmitOp.
func ApplyRef(op Op, s, ref uint8) uint8 {
	switch op {
	case OpZero:
		return 0
	case OpKeep:
		return s
	case OpReplace:
		return ref
	case OpIncr:
		if s == 255 {
			return s
		}
		return s + 1
	case OpDecr:
		if s == 0 {
			return s
		}
		return s - 1
	case OpInvert:
		return ^s
	case OpIncrWrap:
		return s + 1
	case OpDecrWrap:
		return s - 1
	}
	panic("stencil: unknown op " + op.String())
}

// TestRef reports whether ref passes fn against value, unsigned.
func TestRef(fn Func, ref, value uint8) bool {
	return compareRef(fn, int64(ref), int64(value))
}

// DepthTestRef reports whether the incoming depth z passes fn against the
// stored depth, signed.
func DepthTestRef(fn Func, z, stored int32) bool {
	return compareRef(fn, int64(z), int64(stored))
}

func compareRef(fn Func, x, y int64) bool {
	switch fn {
	case Never:
		return false
	case Less:
		return x < y
	case Equal:
		return x == y
	case LessEqual:
		return x <= y
	case Greater:
		return x > y
	case NotEqual:
		return x != y
	case GreaterEqual:
		return x >= y
	case Always:
		return true
	}
	panic("stencil: unknown func " + fn.String())
}
