package ir

import (
	"fmt"
	"sort"
)

// Module is a registry of functions and globals. It is not safe for
// concurrent mutation; callers serialize generation against one Module.
type Module struct {
	funcs   map[string]*Function
	globals []*Global
	byName  map[string]*Global
}

// NewModule returns an empty module.
func NewModule() *Module {
	return &Module{
		funcs:  make(map[string]*Function),
		byName: make(map[string]*Global),
	}
}

// Function returns the function registered under name, or nil.
func (m *Module) Function(name string) *Function { return m.funcs[name] }

// Functions returns the registered function names in sorted order.
func (m *Module) Functions() []string {
	names := make([]string, 0, len(m.funcs))
	for n := range m.funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewFunction declares a function with the given parameter types and
// names. It fails if the name is taken.
func (m *Module) NewFunction(name string, params []*Type, paramNames ...string) (*Function, error) {
	if _, ok := m.funcs[name]; ok {
		return nil, fmt.Errorf("ir: function %q already exists", name)
	}
	f := &Function{name: name, module: m}
	for i, t := range params {
		pn := fmt.Sprintf("arg%d", i)
		if i < len(paramNames) {
			pn = paramNames[i]
		}
		f.params = append(f.params, &Param{typ: t, name: pn, index: i, slot: f.newSlot()})
	}
	m.funcs[name] = f
	return f, nil
}

// NewNativeFunction registers a parameterless function implemented in Go.
func (m *Module) NewNativeFunction(name string, body NativeFunc) (*Function, error) {
	if body == nil {
		return nil, fmt.Errorf("ir: native function %q has no body", name)
	}
	f, err := m.NewFunction(name, nil)
	if err != nil {
		return nil, err
	}
	f.native = body
	return f, nil
}

// Remove deletes a function from the module.
func (m *Module) Remove(name string) { delete(m.funcs, name) }

// Global returns the module global with the given name, declaring it with
// pointee type elem on first use. Redeclaring with a different type panics.
func (m *Module) Global(name string, elem *Type) *Global {
	if g, ok := m.byName[name]; ok {
		if !g.typ.Elem.Equal(elem) {
			panic(fmt.Sprintf("ir: global %q redeclared as %s, was %s", name, elem, g.typ.Elem))
		}
		return g
	}
	g := &Global{typ: PointerTo(elem), name: name, index: len(m.globals)}
	m.globals = append(m.globals, g)
	m.byName[name] = g
	return g
}

// NativeFunc is the body of a function implemented in Go.
type NativeFunc func(env *Env)

// Env gives native functions access to the invocation's globals.
type Env struct {
	globals []*cell
}

// Load reads the current value of a global.
func (e *Env) Load(g *Global) Word { return e.globals[g.index].w }

// Store writes the value of a global.
func (e *Env) Store(g *Global, w Word) { e.globals[g.index].w = w }

// Function is a routine made of basic blocks, or a native Go body.
type Function struct {
	name   string
	module *Module
	params []*Param
	blocks []*Block
	allocs []*Instr
	native NativeFunc
	slots  int
}

// Name returns the function name.
func (f *Function) Name() string { return f.name }

// Params returns the function parameters.
func (f *Function) Params() []*Param { return f.params }

// Param returns parameter i.
func (f *Function) Param(i int) *Param { return f.params[i] }

// Blocks returns the function's basic blocks in creation order.
func (f *Function) Blocks() []*Block { return f.blocks }

// IsNative reports whether f has a Go body.
func (f *Function) IsNative() bool { return f.native != nil }

// Count returns how many instructions with the given opcode were emitted.
func (f *Function) Count(op Op) int {
	n := 0
	for _, b := range f.blocks {
		for _, in := range b.instrs {
			if in.Op == op {
				n++
			}
		}
	}
	return n
}

// Instructions returns the total number of emitted instructions.
func (f *Function) Instructions() int {
	n := len(f.allocs)
	for _, b := range f.blocks {
		n += len(b.instrs)
	}
	return n
}

func (f *Function) newSlot() int {
	s := f.slots
	f.slots++
	return s
}

func (f *Function) newBlock(name string) *Block {
	b := &Block{name: name, index: len(f.blocks), fn: f}
	f.blocks = append(f.blocks, b)
	return b
}

// Block is a straight-line instruction sequence ending in a terminator.
type Block struct {
	name   string
	index  int
	fn     *Function
	instrs []*Instr
}

// Name returns the block label.
func (b *Block) Name() string { return b.name }

// Instrs returns the block's instructions.
func (b *Block) Instrs() []*Instr { return b.instrs }

// Terminated reports whether the block already ends in a terminator.
func (b *Block) Terminated() bool {
	return len(b.instrs) > 0 && b.instrs[len(b.instrs)-1].Op.isTerminator()
}

func (b *Block) String() string { return fmt.Sprintf("%s.%d", b.name, b.index) }
