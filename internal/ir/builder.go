package ir

import "fmt"

// Builder appends instructions to a function at an insertion block.
//
// Every operation whose operands are all constants is evaluated
// immediately and returns a *Const instead of emitting an instruction.
// Type mismatches are programming errors and panic.
type Builder struct {
	fn    *Function
	block *Block
}

// NewBuilder returns a builder positioned at a fresh "entry" block of fn.
func NewBuilder(fn *Function) *Builder {
	if fn.native != nil {
		panic(fmt.Sprintf("ir: cannot build native function %q", fn.name))
	}
	b := &Builder{fn: fn}
	b.block = fn.newBlock("entry")
	return b
}

// Function returns the function being built.
func (b *Builder) Function() *Function { return b.fn }

// Module returns the module owning the function being built.
func (b *Builder) Module() *Module { return b.fn.module }

// Block returns the current insertion block.
func (b *Builder) Block() *Block { return b.block }

// NewBlock creates an empty block without moving the insertion point.
func (b *Builder) NewBlock(name string) *Block { return b.fn.newBlock(name) }

// SetInsertPoint moves the insertion point to the end of blk.
func (b *Builder) SetInsertPoint(blk *Block) {
	if blk.fn != b.fn {
		panic("ir: block belongs to another function")
	}
	b.block = blk
}

func (b *Builder) emit(in *Instr) *Instr {
	if b.block.Terminated() {
		panic(fmt.Sprintf("ir: emit %s after terminator in %s", in.Op, b.block))
	}
	if in.typ != nil && in.typ.Kind != KindVoid {
		in.slot = b.fn.newSlot()
	}
	b.block.instrs = append(b.block.instrs, in)
	return in
}

func sameType(op string, x, y Value) {
	if !x.Type().Equal(y.Type()) {
		panic(fmt.Sprintf("ir: %s operand types differ: %s vs %s", op, x.Type(), y.Type()))
	}
}

func (b *Builder) binary(op Op, x, y Value) Value {
	sameType(op.String(), x, y)
	t := x.Type()
	if op == OpFAdd || op == OpFMul {
		if !t.IsFloat() {
			panic(fmt.Sprintf("ir: %s on %s", op, t))
		}
	} else if !t.IsInt() {
		panic(fmt.Sprintf("ir: %s on %s", op, t))
	}
	cx, okx := IsConst(x)
	cy, oky := IsConst(y)
	if okx && oky {
		return &Const{typ: t, w: evalBinary(op, t, cx.w, cy.w)}
	}
	return b.emit(&Instr{Op: op, Args: []Value{x, y}, typ: t})
}

func (b *Builder) Add(x, y Value) Value  { return b.binary(OpAdd, x, y) }
func (b *Builder) Sub(x, y Value) Value  { return b.binary(OpSub, x, y) }
func (b *Builder) Mul(x, y Value) Value  { return b.binary(OpMul, x, y) }
func (b *Builder) And(x, y Value) Value  { return b.binary(OpAnd, x, y) }
func (b *Builder) Or(x, y Value) Value   { return b.binary(OpOr, x, y) }
func (b *Builder) Xor(x, y Value) Value  { return b.binary(OpXor, x, y) }
func (b *Builder) Shl(x, y Value) Value  { return b.binary(OpShl, x, y) }
func (b *Builder) LShr(x, y Value) Value { return b.binary(OpLShr, x, y) }
func (b *Builder) AShr(x, y Value) Value { return b.binary(OpAShr, x, y) }
func (b *Builder) SMin(x, y Value) Value { return b.binary(OpSMin, x, y) }
func (b *Builder) SMax(x, y Value) Value { return b.binary(OpSMax, x, y) }
func (b *Builder) UMin(x, y Value) Value { return b.binary(OpUMin, x, y) }
func (b *Builder) FAdd(x, y Value) Value { return b.binary(OpFAdd, x, y) }
func (b *Builder) FMul(x, y Value) Value { return b.binary(OpFMul, x, y) }

// Not returns the bitwise complement of x.
func (b *Builder) Not(x Value) Value {
	t := x.Type()
	ones := &Const{typ: t}
	for i := 0; i < t.Lanes; i++ {
		ones.w.Lanes[i] = t.mask()
	}
	return b.Xor(x, ones)
}

func (b *Builder) convert(op Op, x Value, to *Type) Value {
	if !x.Type().IsFloat() || !to.IsInt() || to.Lanes != x.Type().Lanes {
		panic(fmt.Sprintf("ir: %s %s to %s", op, x.Type(), to))
	}
	if c, ok := IsConst(x); ok {
		return &Const{typ: to, w: evalConvert(op, to, c.w)}
	}
	return b.emit(&Instr{Op: op, Args: []Value{x}, typ: to})
}

// FPToSI converts floats to signed integers, truncating toward zero.
func (b *Builder) FPToSI(x Value, to *Type) Value { return b.convert(OpFPToSI, x, to) }

// FPToUI converts floats to unsigned integers, truncating toward zero.
func (b *Builder) FPToUI(x Value, to *Type) Value { return b.convert(OpFPToUI, x, to) }

// BitCast reinterprets a pointer as pointing to another type.
func (b *Builder) BitCast(p Value, to *Type) Value {
	if !p.Type().IsPtr() || !to.IsPtr() {
		panic(fmt.Sprintf("ir: bitcast %s to %s", p.Type(), to))
	}
	return b.emit(&Instr{Op: OpBitCast, Args: []Value{p}, typ: to})
}

// ICmp compares two integer scalars and yields an i1.
func (b *Builder) ICmp(p Pred, x, y Value) Value {
	sameType("icmp", x, y)
	if !x.Type().IsInt() || x.Type().IsVector() {
		panic(fmt.Sprintf("ir: icmp on %s", x.Type()))
	}
	cx, okx := IsConst(x)
	cy, oky := IsConst(y)
	if okx && oky {
		return ConstBool(evalICmp(p, x.Type(), cx.w, cy.w))
	}
	return b.emit(&Instr{Op: OpICmp, Pred: p, Args: []Value{x, y}, typ: I1})
}

// Extract returns lane i of vector v.
func (b *Builder) Extract(v Value, i int) Value {
	t := v.Type()
	if !t.IsVector() || i < 0 || i >= Lanes {
		panic(fmt.Sprintf("ir: extract lane %d of %s", i, t))
	}
	if c, ok := IsConst(v); ok {
		return &Const{typ: t.Scalar(), w: Word{Lanes: [Lanes]uint32{c.w.Lanes[i]}}}
	}
	return b.emit(&Instr{Op: OpExtract, Args: []Value{v}, Index: i, typ: t.Scalar()})
}

// Insert returns v with lane i replaced by s.
func (b *Builder) Insert(v, s Value, i int) Value {
	t := v.Type()
	if !t.IsVector() || !t.Scalar().Equal(s.Type()) || i < 0 || i >= Lanes {
		panic(fmt.Sprintf("ir: insert %s into lane %d of %s", s.Type(), i, t))
	}
	cv, okv := IsConst(v)
	cs, oks := IsConst(s)
	if okv && oks {
		r := &Const{typ: t, w: cv.w}
		r.w.Lanes[i] = cs.w.Lanes[0]
		return r
	}
	return b.emit(&Instr{Op: OpInsert, Args: []Value{v, s}, Index: i, typ: t})
}

// Vector assembles a vector from four scalars of the same type.
func (b *Builder) Vector(x, y, z, w Value) Value {
	var v Value = Null(x.Type().Vector())
	for i, s := range []Value{x, y, z, w} {
		v = b.Insert(v, s, i)
	}
	return v
}

// Splat broadcasts s to every lane.
func (b *Builder) Splat(s Value) Value { return b.Vector(s, s, s, s) }

// Alloca reserves a private cell of type t for the lifetime of one
// invocation and returns a pointer to it. Cells are created on entry,
// independent of where Alloca is called.
func (b *Builder) Alloca(t *Type, name string) Value {
	in := &Instr{Op: OpAlloca, typ: PointerTo(t), name: name, slot: b.fn.newSlot()}
	b.fn.allocs = append(b.fn.allocs, in)
	return in
}

// Load reads the value p points to.
func (b *Builder) Load(p Value, name ...string) Value {
	if !p.Type().IsPtr() {
		panic(fmt.Sprintf("ir: load from %s", p.Type()))
	}
	in := b.emit(&Instr{Op: OpLoad, Args: []Value{p}, typ: p.Type().Elem})
	if len(name) > 0 {
		in.name = name[0]
	}
	return in
}

// Store writes v to the location p points to.
func (b *Builder) Store(v, p Value) {
	if !p.Type().IsPtr() || !p.Type().Elem.Equal(v.Type()) {
		panic(fmt.Sprintf("ir: store %s to %s", v.Type(), p.Type()))
	}
	b.emit(&Instr{Op: OpStore, Args: []Value{v, p}, typ: Void})
}

// GEP offsets pointer p by n elements of its pointee type.
func (b *Builder) GEP(p Value, n int) Value {
	if !p.Type().IsPtr() {
		panic(fmt.Sprintf("ir: gep on %s", p.Type()))
	}
	return b.emit(&Instr{Op: OpGEP, Args: []Value{p}, Index: n, typ: p.Type()})
}

// Call invokes a parameterless function.
func (b *Builder) Call(fn *Function) {
	if len(fn.params) != 0 {
		panic(fmt.Sprintf("ir: call of %q with parameters", fn.name))
	}
	if fn.module != b.fn.module {
		panic(fmt.Sprintf("ir: call of %q across modules", fn.name))
	}
	b.emit(&Instr{Op: OpCall, Callee: fn, typ: Void})
}

// Br ends the current block with a jump to target.
func (b *Builder) Br(target *Block) {
	b.emit(&Instr{Op: OpBr, Targets: []*Block{target}, typ: Void})
}

// CondBr ends the current block with a two-way branch. A constant
// condition is emitted as an unconditional jump to the taken side.
func (b *Builder) CondBr(cond Value, then, els *Block) {
	if !cond.Type().Equal(I1) {
		panic(fmt.Sprintf("ir: branch on %s", cond.Type()))
	}
	if c, ok := IsConst(cond); ok {
		if c.Bool() {
			b.Br(then)
		} else {
			b.Br(els)
		}
		return
	}
	b.emit(&Instr{Op: OpCondBr, Args: []Value{cond}, Targets: []*Block{then, els}, typ: Void})
}

// RetVoid ends the current block by returning.
func (b *Builder) RetVoid() {
	b.emit(&Instr{Op: OpRet, typ: Void})
}
