package ir

import (
	"fmt"
	"math"
	"strings"
)

// Word is the runtime representation of any value: up to four 32-bit
// lanes (floats are stored as their IEEE-754 bits) or a pointer.
type Word struct {
	Lanes [Lanes]uint32
	Ptr   Pointer
}

// Pointer addresses a byte offset inside a memory region.
type Pointer struct {
	Region Region
	Off    int
}

// Value is anything an instruction can take as an operand.
type Value interface {
	Type() *Type
	String() string
}

// Const is a compile-time constant.
type Const struct {
	typ *Type
	w   Word
}

func (c *Const) Type() *Type { return c.typ }

// Word returns the constant's runtime representation.
func (c *Const) Word() Word { return c.w }

// Int returns lane i as a signed 32-bit integer.
func (c *Const) Int(i int) int32 {
	return signExtend(c.typ, c.w.Lanes[i])
}

// Uint returns lane i zero-extended.
func (c *Const) Uint(i int) uint32 { return c.w.Lanes[i] }

// Bool reports whether an i1 constant is true.
func (c *Const) Bool() bool { return c.w.Lanes[0] != 0 }

func (c *Const) String() string {
	lane := func(i int) string {
		if c.typ.IsFloat() {
			return fmt.Sprint(math.Float32frombits(c.w.Lanes[i]))
		}
		if c.typ.Kind == KindI1 {
			return fmt.Sprint(c.w.Lanes[i] != 0)
		}
		return fmt.Sprint(c.Int(i))
	}
	if !c.typ.IsVector() {
		return c.typ.String() + " " + lane(0)
	}
	parts := make([]string, Lanes)
	for i := range parts {
		parts[i] = lane(i)
	}
	return c.typ.String() + " <" + strings.Join(parts, ", ") + ">"
}

// ConstInt returns a scalar integer constant of type t.
func ConstInt(t *Type, v int64) *Const {
	return &Const{typ: t, w: Word{Lanes: [Lanes]uint32{uint32(v) & t.mask()}}}
}

// ConstInts returns an i32x4 constant.
func ConstInts(a, b, c, d int32) *Const {
	return &Const{typ: I32x4, w: Word{Lanes: [Lanes]uint32{uint32(a), uint32(b), uint32(c), uint32(d)}}}
}

// ConstFloats returns an f32x4 constant.
func ConstFloats(a, b, c, d float32) *Const {
	return &Const{typ: F32x4, w: Word{Lanes: [Lanes]uint32{
		math.Float32bits(a), math.Float32bits(b), math.Float32bits(c), math.Float32bits(d),
	}}}
}

// ConstBool returns an i1 constant.
func ConstBool(v bool) *Const {
	if v {
		return ConstInt(I1, 1)
	}
	return ConstInt(I1, 0)
}

// Null returns the all-zero constant of type t.
func Null(t *Type) *Const { return &Const{typ: t} }

// IsConst reports whether v is a constant and returns it.
func IsConst(v Value) (*Const, bool) {
	c, ok := v.(*Const)
	return c, ok
}

// Param is a function parameter.
type Param struct {
	typ   *Type
	name  string
	index int
	slot  int
}

func (p *Param) Type() *Type    { return p.typ }
func (p *Param) String() string { return "%" + p.name }

// Global is a module-level pointer cell. Every invocation of a Program
// receives fresh storage for each global, shared by the whole call tree.
type Global struct {
	typ   *Type // pointer to Elem
	name  string
	index int
}

func (g *Global) Type() *Type    { return g.typ }
func (g *Global) String() string { return "@" + g.name }

// Name returns the global's name.
func (g *Global) Name() string { return g.name }

// Op is an instruction opcode.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpAnd
	OpOr
	OpXor
	OpShl
	OpLShr
	OpAShr
	OpSMin
	OpSMax
	OpUMin
	OpFAdd
	OpFMul
	OpFPToSI
	OpFPToUI
	OpBitCast
	OpICmp
	OpExtract
	OpInsert
	OpAlloca
	OpLoad
	OpStore
	OpGEP
	OpCall
	OpBr
	OpCondBr
	OpRet
)

var opNames = [...]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpAnd: "and", OpOr: "or",
	OpXor: "xor", OpShl: "shl", OpLShr: "lshr", OpAShr: "ashr",
	OpSMin: "smin", OpSMax: "smax", OpUMin: "umin",
	OpFAdd: "fadd", OpFMul: "fmul", OpFPToSI: "fptosi", OpFPToUI: "fptoui",
	OpBitCast: "bitcast", OpICmp: "icmp", OpExtract: "extract", OpInsert: "insert",
	OpAlloca: "alloca", OpLoad: "load", OpStore: "store", OpGEP: "gep", OpCall: "call",
	OpBr: "br", OpCondBr: "condbr", OpRet: "ret",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// isTerminator reports whether op ends a block.
func (op Op) isTerminator() bool { return op == OpBr || op == OpCondBr || op == OpRet }

// Pred is an integer comparison predicate.
type Pred uint8

const (
	EQ Pred = iota
	NE
	ULT
	ULE
	UGT
	UGE
	SLT
	SLE
	SGT
	SGE
)

var predNames = [...]string{"eq", "ne", "ult", "ule", "ugt", "uge", "slt", "sle", "sgt", "sge"}

func (p Pred) String() string {
	if int(p) < len(predNames) {
		return predNames[p]
	}
	return fmt.Sprintf("pred(%d)", uint8(p))
}

// Instr is a single emitted instruction. Instructions producing a value
// are themselves Values.
type Instr struct {
	Op      Op
	Pred    Pred
	Args    []Value
	Index   int // lane for Extract/Insert, element offset for GEP
	Callee  *Function
	Targets []*Block

	typ  *Type
	name string
	slot int
}

func (in *Instr) Type() *Type { return in.typ }

func (in *Instr) String() string {
	if in.name != "" {
		return fmt.Sprintf("%%%s.%d", in.name, in.slot)
	}
	return fmt.Sprintf("%%%d", in.slot)
}

// SetName attaches a debug name to v if it is an instruction result and
// returns v.
func SetName(v Value, name string) Value {
	if in, ok := v.(*Instr); ok {
		in.name = name
	}
	return v
}

func signExtend(t *Type, v uint32) int32 {
	switch t.Kind {
	case KindI8:
		return int32(int8(v))
	case KindI1:
		return -int32(v & 1)
	default:
		return int32(v)
	}
}
