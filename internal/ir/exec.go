package ir

import "fmt"

// Program is an executable form of a Function. A Program holds no
// per-call state, so Invoke may run concurrently from many goroutines as
// long as the memory regions passed in do not overlap.
type Program struct {
	fn *Function
	c  *compiled
}

type frame struct {
	vals []Word
	env  *Env
}

type getter func(fr *frame) Word

type step func(fr *frame)

type cblock struct {
	steps []step
	term  func(fr *frame) int
}

type compiled struct {
	fn     *Function
	native NativeFunc
	blocks []cblock
}

// Compile lowers fn and every function it calls into Go closures. It
// fails if a reachable block lacks a terminator, a callee has no body or
// was removed from the module, or the call graph is recursive.
func Compile(fn *Function) (*Program, error) {
	cc := &compiler{done: make(map[*Function]*compiled), active: make(map[*Function]bool)}
	c, err := cc.compile(fn)
	if err != nil {
		return nil, err
	}
	return &Program{fn: fn, c: c}, nil
}

// Function returns the compiled function.
func (p *Program) Function() *Function { return p.fn }

// Invoke runs the program with the given arguments. Globals start zeroed
// for every invocation.
func (p *Program) Invoke(args ...Word) {
	if len(args) != len(p.fn.params) {
		panic(fmt.Sprintf("ir: %q takes %d arguments, got %d", p.fn.name, len(p.fn.params), len(args)))
	}
	env := &Env{globals: make([]*cell, len(p.fn.module.globals))}
	for i := range env.globals {
		env.globals[i] = &cell{}
	}
	p.c.run(env, args)
}

func (c *compiled) run(env *Env, args []Word) {
	if c.native != nil {
		c.native(env)
		return
	}
	fr := &frame{vals: make([]Word, c.fn.slots), env: env}
	for i, p := range c.fn.params {
		fr.vals[p.slot] = args[i]
	}
	for _, a := range c.fn.allocs {
		fr.vals[a.slot] = PointerWord(&cell{})
	}
	for bi := 0; bi >= 0; {
		b := &c.blocks[bi]
		for _, s := range b.steps {
			s(fr)
		}
		bi = b.term(fr)
	}
}

type compiler struct {
	done   map[*Function]*compiled
	active map[*Function]bool
}

func (cc *compiler) compile(fn *Function) (*compiled, error) {
	if c, ok := cc.done[fn]; ok {
		return c, nil
	}
	if cc.active[fn] {
		return nil, fmt.Errorf("ir: recursive call to %q", fn.name)
	}
	if fn.module.Function(fn.name) != fn {
		return nil, fmt.Errorf("ir: function %q is not registered", fn.name)
	}
	c := &compiled{fn: fn, native: fn.native}
	if fn.native != nil {
		cc.done[fn] = c
		return c, nil
	}
	if len(fn.blocks) == 0 {
		return nil, fmt.Errorf("ir: function %q has no body", fn.name)
	}
	cc.active[fn] = true
	defer delete(cc.active, fn)

	reach := reachable(fn)
	c.blocks = make([]cblock, len(fn.blocks))
	for i, b := range fn.blocks {
		if !reach[i] {
			c.blocks[i].term = func(*frame) int { panic("ir: unreachable block executed") }
			continue
		}
		if !b.Terminated() {
			return nil, fmt.Errorf("ir: block %s of %q has no terminator", b, fn.name)
		}
		for _, in := range b.instrs {
			if in.Op.isTerminator() {
				c.blocks[i].term = cc.terminator(in)
				continue
			}
			s, err := cc.step(in)
			if err != nil {
				return nil, fmt.Errorf("ir: %q: %w", fn.name, err)
			}
			c.blocks[i].steps = append(c.blocks[i].steps, s)
		}
	}
	cc.done[fn] = c
	return c, nil
}

func reachable(fn *Function) []bool {
	seen := make([]bool, len(fn.blocks))
	work := []*Block{fn.blocks[0]}
	seen[0] = true
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		if !b.Terminated() {
			continue
		}
		for _, t := range b.instrs[len(b.instrs)-1].Targets {
			if !seen[t.index] {
				seen[t.index] = true
				work = append(work, t)
			}
		}
	}
	return seen
}

func operand(v Value) getter {
	switch v := v.(type) {
	case *Const:
		w := v.w
		return func(*frame) Word { return w }
	case *Param:
		s := v.slot
		return func(fr *frame) Word { return fr.vals[s] }
	case *Instr:
		s := v.slot
		return func(fr *frame) Word { return fr.vals[s] }
	case *Global:
		i := v.index
		return func(fr *frame) Word { return Word{Ptr: Pointer{Region: fr.env.globals[i]}} }
	}
	panic(fmt.Sprintf("ir: unknown operand %T", v))
}

func deref(w Word, in *Instr) Pointer {
	if w.Ptr.Region == nil {
		panic(fmt.Sprintf("ir: %s through nil pointer", in.Op))
	}
	return w.Ptr
}

func (cc *compiler) step(in *Instr) (step, error) {
	slot := in.slot
	switch in.Op {
	case OpAdd, OpSub, OpMul, OpAnd, OpOr, OpXor, OpShl, OpLShr, OpAShr,
		OpSMin, OpSMax, OpUMin, OpFAdd, OpFMul:
		op, t := in.Op, in.typ
		x, y := operand(in.Args[0]), operand(in.Args[1])
		return func(fr *frame) { fr.vals[slot] = evalBinary(op, t, x(fr), y(fr)) }, nil
	case OpFPToSI, OpFPToUI:
		op, t := in.Op, in.typ
		x := operand(in.Args[0])
		return func(fr *frame) { fr.vals[slot] = evalConvert(op, t, x(fr)) }, nil
	case OpBitCast:
		x := operand(in.Args[0])
		return func(fr *frame) { fr.vals[slot] = x(fr) }, nil
	case OpICmp:
		p, t := in.Pred, in.Args[0].Type()
		x, y := operand(in.Args[0]), operand(in.Args[1])
		return func(fr *frame) { fr.vals[slot] = boolWord(evalICmp(p, t, x(fr), y(fr))) }, nil
	case OpExtract:
		lane := in.Index
		x := operand(in.Args[0])
		return func(fr *frame) {
			fr.vals[slot] = Word{Lanes: [Lanes]uint32{x(fr).Lanes[lane]}}
		}, nil
	case OpInsert:
		lane := in.Index
		x, s := operand(in.Args[0]), operand(in.Args[1])
		return func(fr *frame) {
			w := x(fr)
			w.Lanes[lane] = s(fr).Lanes[0]
			fr.vals[slot] = w
		}, nil
	case OpLoad:
		t := in.typ
		x := operand(in.Args[0])
		return func(fr *frame) {
			p := deref(x(fr), in)
			fr.vals[slot] = p.Region.Load(t, p.Off)
		}, nil
	case OpStore:
		t := in.Args[0].Type()
		v, x := operand(in.Args[0]), operand(in.Args[1])
		return func(fr *frame) {
			p := deref(x(fr), in)
			p.Region.Store(t, p.Off, v(fr))
		}, nil
	case OpGEP:
		delta := in.Index * in.typ.Elem.Size()
		x := operand(in.Args[0])
		return func(fr *frame) {
			w := x(fr)
			w.Ptr.Off += delta
			fr.vals[slot] = w
		}, nil
	case OpCall:
		callee, err := cc.compile(in.Callee)
		if err != nil {
			return nil, err
		}
		return func(fr *frame) { callee.run(fr.env, nil) }, nil
	}
	return nil, fmt.Errorf("unsupported instruction %s", in.Op)
}

func (cc *compiler) terminator(in *Instr) func(fr *frame) int {
	switch in.Op {
	case OpBr:
		t := in.Targets[0].index
		return func(*frame) int { return t }
	case OpCondBr:
		c := operand(in.Args[0])
		t, f := in.Targets[0].index, in.Targets[1].index
		return func(fr *frame) int {
			if c(fr).Lanes[0] != 0 {
				return t
			}
			return f
		}
	default:
		return func(*frame) int { return -1 }
	}
}
