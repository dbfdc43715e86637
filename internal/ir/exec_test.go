package ir

import (
	"strings"
	"sync"
	"testing"

	"golang.org/x/image/math/f32"
)

// buildSum emits: *out = sum of n words starting at p.
func buildSum(t *testing.T, m *Module) *Function {
	t.Helper()
	fn, err := m.NewFunction("sum", []*Type{PointerTo(I32), I32, PointerTo(I32)}, "p", "n", "out")
	if err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(fn)
	f := NewFlow(b)

	cur := b.Alloca(PointerTo(I32), "cur")
	b.Store(fn.Param(0), cur)
	cnt := b.Alloca(I32, "cnt")
	b.Store(fn.Param(1), cnt)
	acc := b.Alloca(I32, "acc")
	b.Store(ConstInt(I32, 0), acc)

	f.Loop(func() {
		n := b.Load(cnt, "n")
		f.If(b.ICmp(EQ, n, ConstInt(I32, 0)), f.Break)
		p := b.Load(cur, "p")
		b.Store(b.Add(b.Load(acc), b.Load(p)), acc)
		b.Store(b.GEP(p, 1), cur)
		b.Store(b.Sub(n, ConstInt(I32, 1)), cnt)
	})
	b.Store(b.Load(acc), fn.Param(2))
	b.RetVoid()
	f.Close()
	return fn
}

func i32Word(v int32) Word { return Word{Lanes: [Lanes]uint32{uint32(v)}} }

func TestProgramLoop(t *testing.T) {
	prog, err := Compile(buildSum(t, NewModule()))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		data []uint32
		n    int32
		want uint32
	}{
		{[]uint32{1, 2, 3, 4, 5}, 5, 15},
		{[]uint32{1, 2, 3, 4, 5}, 2, 3},
		{[]uint32{7}, 0, 0},
		{nil, 0, 0},
	}
	for _, tt := range tests {
		out := Words[uint32]{99}
		prog.Invoke(PointerWord(Words[uint32](tt.data)), i32Word(tt.n), PointerWord(out))
		if out[0] != tt.want {
			t.Errorf("sum(%v, %d) = %d, want %d", tt.data, tt.n, out[0], tt.want)
		}
	}
}

func TestProgramConcurrentInvoke(t *testing.T) {
	prog, err := Compile(buildSum(t, NewModule()))
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	results := make([]Words[uint32], 16)
	for i := range results {
		results[i] = Words[uint32]{0}
		wg.Add(1)
		go func() {
			defer wg.Done()
			data := Words[uint32]{uint32(i), uint32(i), uint32(i)}
			prog.Invoke(PointerWord(data), i32Word(3), PointerWord(results[i]))
		}()
	}
	wg.Wait()
	for i, r := range results {
		if r[0] != uint32(3*i) {
			t.Errorf("invocation %d = %d, want %d", i, r[0], 3*i)
		}
	}
}

func TestProgramCallsNative(t *testing.T) {
	m := NewModule()
	g := m.Global("value", I32)
	calls := 0
	native, err := m.NewNativeFunction("produce", func(env *Env) {
		calls++
		env.Store(g, i32Word(42))
	})
	if err != nil {
		t.Fatal(err)
	}

	fn, _ := m.NewFunction("caller", []*Type{PointerTo(I32)}, "out")
	b := NewBuilder(fn)
	b.Call(native)
	b.Store(b.Add(b.Load(g), ConstInt(I32, 1)), fn.Param(0))
	b.RetVoid()

	prog, err := Compile(fn)
	if err != nil {
		t.Fatal(err)
	}
	out := Words[int32]{0}
	prog.Invoke(PointerWord(out))
	if out[0] != 43 || calls != 1 {
		t.Errorf("out = %d after %d calls, want 43 after 1", out[0], calls)
	}
}

func TestGlobalsStartZeroed(t *testing.T) {
	m := NewModule()
	g := m.Global("counter", I32)
	fn, _ := m.NewFunction("bump", []*Type{PointerTo(I32)}, "out")
	b := NewBuilder(fn)
	v := b.Add(b.Load(g), ConstInt(I32, 1))
	b.Store(v, g)
	b.Store(v, fn.Param(0))
	b.RetVoid()

	prog, err := Compile(fn)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		out := Words[int32]{0}
		prog.Invoke(PointerWord(out))
		if out[0] != 1 {
			t.Fatalf("invocation %d saw %d, want 1", i, out[0])
		}
	}
}

func TestCompileErrors(t *testing.T) {
	t.Run("missing terminator", func(t *testing.T) {
		fn, _ := NewModule().NewFunction("f", nil)
		NewBuilder(fn)
		if _, err := Compile(fn); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("removed callee", func(t *testing.T) {
		m := NewModule()
		callee, _ := m.NewFunction("callee", nil)
		NewBuilder(callee).RetVoid()
		caller, _ := m.NewFunction("caller", nil)
		b := NewBuilder(caller)
		b.Call(callee)
		b.RetVoid()
		m.Remove("callee")
		if _, err := Compile(caller); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("recursion", func(t *testing.T) {
		m := NewModule()
		a, _ := m.NewFunction("a", nil)
		c, _ := m.NewFunction("c", nil)
		ba := NewBuilder(a)
		ba.Call(c)
		ba.RetVoid()
		bc := NewBuilder(c)
		bc.Call(a)
		bc.RetVoid()
		if _, err := Compile(a); err == nil || !strings.Contains(err.Error(), "recursive") {
			t.Errorf("Compile() = %v, want recursion error", err)
		}
	})
	t.Run("duplicate name", func(t *testing.T) {
		m := NewModule()
		if _, err := m.NewFunction("f", nil); err != nil {
			t.Fatal(err)
		}
		if _, err := m.NewFunction("f", nil); err == nil {
			t.Error("expected error")
		}
	})
}

func TestRegions(t *testing.T) {
	block := Vec4s{{1, 2, 3, 4}, {5, 6, 7, 8}}
	w := block.Load(F32, 8)
	if got := (&Const{typ: F32, w: w}).String(); got != "f32 3" {
		t.Errorf("lane 2 = %s, want f32 3", got)
	}
	block.Store(F32x4, 16, ConstFloats(9, 9, 9, 9).Word())
	if block[1] != (f32.Vec4{9, 9, 9, 9}) {
		t.Errorf("slot 1 = %v after store", block[1])
	}

	p := Pointer{Region: block, Off: 16}
	s, ok := p.Vec4Slice()
	if !ok || len(s) != 1 {
		t.Fatalf("Vec4Slice() = %v, %v", s, ok)
	}
	if _, ok := (Pointer{Region: block, Off: 4}).Vec4Slice(); ok {
		t.Error("Vec4Slice() accepted an offset inside a slot")
	}

	bytes := Bytes{0, 0}
	bytes.Store(I8, 1, ConstInt(I8, 200).Word())
	if bytes[1] != 200 {
		t.Errorf("byte 1 = %d, want 200", bytes[1])
	}
}

func TestPrint(t *testing.T) {
	fn := buildSum(t, NewModule())
	s := fn.String()
	for _, want := range []string{"func sum(i32* %p, i32 %n, i32* %out) {", "alloca i32", "icmp eq", "ret"} {
		if !strings.Contains(s, want) {
			t.Errorf("listing lacks %q:\n%s", want, s)
		}
	}
}
