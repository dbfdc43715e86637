package ir

import "fmt"

type scopeKind uint8

const (
	scopeIf scopeKind = iota
	scopeLoop
)

type scope struct {
	kind   scopeKind
	els    *Block // if: false side
	end    *Block // if: join block, loop: exit block
	head   *Block // loop: header
	inElse bool
}

// Flow layers structured if/else/loop/break on top of a Builder.
//
// Scopes form a stack: every IfCond must be closed by EndIf and every
// BeginLoop by EndLoop before the enclosing scope closes. Violations
// panic at the offending call.
type Flow struct {
	b     *Builder
	stack []*scope
}

// NewFlow returns a control-flow helper emitting through b.
func NewFlow(b *Builder) *Flow { return &Flow{b: b} }

// Depth returns the number of open scopes.
func (f *Flow) Depth() int { return len(f.stack) }

func (f *Flow) top(kind scopeKind, op string) *scope {
	if len(f.stack) == 0 {
		panic(fmt.Sprintf("ir: %s with no open scope", op))
	}
	s := f.stack[len(f.stack)-1]
	if s.kind != kind {
		panic(fmt.Sprintf("ir: %s does not close the innermost scope", op))
	}
	return s
}

// jump branches to target unless the current block already ended.
func (f *Flow) jump(target *Block) {
	if !f.b.block.Terminated() {
		f.b.Br(target)
	}
}

// IfCond opens a conditional scope; subsequent code runs when cond holds.
// Optional names label the then and else blocks.
func (f *Flow) IfCond(cond Value, names ...string) {
	thenName, elseName := "if_true", "if_false"
	if len(names) > 0 {
		thenName = names[0]
	}
	if len(names) > 1 {
		elseName = names[1]
	}
	then := f.b.NewBlock(thenName)
	s := &scope{kind: scopeIf, els: f.b.NewBlock(elseName), end: f.b.NewBlock("endif")}
	f.b.CondBr(cond, then, s.els)
	f.b.SetInsertPoint(then)
	f.stack = append(f.stack, s)
}

// Else switches the innermost conditional to its false side.
func (f *Flow) Else() {
	s := f.top(scopeIf, "Else")
	if s.inElse {
		panic("ir: Else called twice for one IfCond")
	}
	f.jump(s.end)
	f.b.SetInsertPoint(s.els)
	s.inElse = true
}

// EndIf closes the innermost conditional scope.
func (f *Flow) EndIf() {
	s := f.top(scopeIf, "EndIf")
	f.jump(s.end)
	if !s.inElse {
		f.b.SetInsertPoint(s.els)
		f.jump(s.end)
	}
	f.b.SetInsertPoint(s.end)
	f.stack = f.stack[:len(f.stack)-1]
}

// BeginLoop opens an infinite loop scope; only Break leaves it.
func (f *Flow) BeginLoop() {
	s := &scope{kind: scopeLoop, head: f.b.NewBlock("loop"), end: f.b.NewBlock("endloop")}
	f.jump(s.head)
	f.b.SetInsertPoint(s.head)
	f.stack = append(f.stack, s)
}

// Break leaves the innermost loop. Code emitted after Break until the
// enclosing scope closes is unreachable.
func (f *Flow) Break() {
	for i := len(f.stack) - 1; i >= 0; i-- {
		if s := f.stack[i]; s.kind == scopeLoop {
			f.jump(s.end)
			f.b.SetInsertPoint(f.b.NewBlock("after_break"))
			return
		}
	}
	panic("ir: Break outside of a loop")
}

// EndLoop closes the innermost loop scope, jumping back to its header.
func (f *Flow) EndLoop() {
	s := f.top(scopeLoop, "EndLoop")
	f.jump(s.head)
	f.b.SetInsertPoint(s.end)
	f.stack = f.stack[:len(f.stack)-1]
}

// Close asserts that every opened scope has been closed.
func (f *Flow) Close() {
	if len(f.stack) != 0 {
		panic(fmt.Sprintf("ir: %d control-flow scopes left open", len(f.stack)))
	}
}

// If emits then under cond.
func (f *Flow) If(cond Value, then func()) {
	f.IfCond(cond)
	f.nested(then)
	f.EndIf()
}

// IfElse emits then under cond and els otherwise.
func (f *Flow) IfElse(cond Value, then, els func()) {
	f.IfCond(cond)
	f.nested(then)
	f.Else()
	f.nested(els)
	f.EndIf()
}

// Loop emits body inside a loop scope.
func (f *Flow) Loop(body func()) {
	f.BeginLoop()
	f.nested(body)
	f.EndLoop()
}

func (f *Flow) nested(body func()) {
	depth := len(f.stack)
	body()
	if len(f.stack) != depth {
		panic(fmt.Sprintf("ir: nested body changed scope depth from %d to %d", depth, len(f.stack)))
	}
}
