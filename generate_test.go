package flinger

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/flinger/internal/blend"
	"github.com/gogpu/flinger/shader"
)

func blocks(info shader.Info) (start, step []f32.Vec4) {
	return make([]f32.Vec4, info.BlockLen()), make([]f32.Vec4, info.BlockLen())
}

func fill[T any](n int, v T) []T {
	s := make([]T, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func generate(t *testing.T, reg *Registry, prog Program, cfg PipelineConfig, name string) *Routine {
	t.Helper()
	r, err := Generate(reg, prog, cfg, name)
	if err != nil {
		t.Fatalf("Generate(%q) error = %v", name, err)
	}
	return r
}

func run(t *testing.T, r *Routine, start, step []f32.Vec4, frame []uint32, depth []int32, sbuf []uint8, state StencilState, count int) {
	t.Helper()
	if err := r.Run(start, step, frame, depth, sbuf, state, count); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

var opaqueRed = blend.PackBytes([4]uint8{255, 0, 0, 255})

func TestScanlineNoTests(t *testing.T) {
	reg := NewRegistry()
	prog, err := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	r := generate(t, reg, prog, PipelineConfig{}, "plain")

	start, step := blocks(prog.Info)
	frame := fill(8, uint32(0xdeadbeef))
	depth := fill(8, int32(7))
	sbuf := fill(8, uint8(3))
	run(t, r, start, step, frame, depth, sbuf, StencilState{}, 5)

	for i, px := range frame {
		want := uint32(0xdeadbeef)
		if i < 5 {
			want = opaqueRed
		}
		if px != want {
			t.Errorf("frame[%d] = %#08x, want %#08x", i, px, want)
		}
	}
	for i := range depth {
		if depth[i] != 7 || sbuf[i] != 3 {
			t.Fatalf("disabled buffers touched at %d: depth %d stencil %d", i, depth[i], sbuf[i])
		}
	}
}

func TestScanlineZeroCount(t *testing.T) {
	reg := NewRegistry()
	prog, _ := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})
	r := generate(t, reg, prog, PipelineConfig{}, "plain")
	start, step := blocks(prog.Info)
	frame := []uint32{1}
	run(t, r, start, step, frame, nil, nil, StencilState{}, 0)
	if frame[0] != 1 {
		t.Errorf("zero-length span wrote %#08x", frame[0])
	}
}

func TestScanlineDepthLess(t *testing.T) {
	reg := NewRegistry()
	prog, _ := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})
	cfg := PipelineConfig{Buffer: BufferState{DepthTest: true, DepthFunc: Less}}
	r := generate(t, reg, prog, cfg, "depth_less")

	tests := []struct {
		name       string
		z, dz      float32
		stored     float32
		passing    int
		wantStored []float32
	}{
		{"nearer passes", 0.25, 0, 0.5, 4, []float32{0.25, 0.25, 0.25, 0.25}},
		{"farther fails", 0.75, 0, 0.5, 0, []float32{0.5, 0.5, 0.5, 0.5}},
		{"ramp", 0, 0.25, 0.5, 2, []float32{0, 0.25, 0.5, 0.5}},
		{"negative ramp", -1, 0.5, -0.75, 1, []float32{-1, -0.75, -0.75, -0.75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, step := blocks(prog.Info)
			start[shader.SlotFragCoord][shader.DepthLane] = tt.z
			step[shader.SlotFragCoord][shader.DepthLane] = tt.dz
			frame := fill(4, uint32(0))
			depth := fill(4, DepthKey(tt.stored))
			run(t, r, start, step, frame, depth, nil, StencilState{}, 4)

			for i := range frame {
				wantPx := uint32(0)
				if i < tt.passing {
					wantPx = opaqueRed
				}
				if frame[i] != wantPx {
					t.Errorf("frame[%d] = %#08x, want %#08x", i, frame[i], wantPx)
				}
				if want := DepthKey(tt.wantStored[i]); depth[i] != want {
					t.Errorf("depth[%d] = %d, want %d (%v)", i, depth[i], want, tt.wantStored[i])
				}
			}
			if got, want := start[shader.SlotFragCoord][shader.DepthLane], tt.z+4*tt.dz; got != want {
				t.Errorf("depth advanced to %v, want %v", got, want)
			}
		})
	}
}

func TestDepthKeyOrdering(t *testing.T) {
	values := []float32{-1e30, -2, -1, -0.5, -1e-30, 0, 1e-30, 0.5, 1, 2, 1e30}
	for i := 1; i < len(values); i++ {
		a, b := DepthKey(values[i-1]), DepthKey(values[i])
		if a >= b {
			t.Errorf("DepthKey(%v) = %d >= DepthKey(%v) = %d", values[i-1], a, values[i], b)
		}
	}
}

func TestScanlineStencilIncr(t *testing.T) {
	reg := NewRegistry()
	prog, _ := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})
	var cfg PipelineConfig
	cfg.Buffer.StencilTest = true
	cfg.SetStencil(StencilFace{Func: Always, Ref: 5, Mask: 0xff, DepthPass: StencilIncr})
	r := generate(t, reg, prog, cfg, "stencil_incr")

	start, step := blocks(prog.Info)
	frame := []uint32{0, 0}
	sbuf := []uint8{10, 255}
	run(t, r, start, step, frame, nil, sbuf, cfg.ForFace(true), 2)

	if sbuf[0] != 11 || sbuf[1] != 255 {
		t.Errorf("stencil = %v, want [11 255]", sbuf)
	}
	if frame[0] != opaqueRed {
		t.Errorf("frame[0] = %#08x, want %#08x", frame[0], opaqueRed)
	}
}

func TestScanlineStencilMask(t *testing.T) {
	reg := NewRegistry()
	prog, _ := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})
	var cfg PipelineConfig
	cfg.Buffer.StencilTest = true
	cfg.SetStencil(StencilFace{Func: Equal, Ref: 3, Mask: 0x0f, Fail: StencilKeep, DepthPass: StencilKeep})
	r := generate(t, reg, prog, cfg, "stencil_mask")

	start, step := blocks(prog.Info)
	frame := []uint32{0, 0}
	sbuf := []uint8{0xf3, 0xf4}
	run(t, r, start, step, frame, nil, sbuf, cfg.ForFace(true), 2)

	// Updates act on the masked value.
	if want := []uint8{0x03, 0x04}; !slices.Equal(sbuf, want) {
		t.Errorf("stencil = %#v, want %#v", sbuf, want)
	}
	if frame[0] != opaqueRed || frame[1] != 0 {
		t.Errorf("frame = %#08x, want [%#08x 0]", frame, opaqueRed)
	}
}

func TestScanlineStencilFaces(t *testing.T) {
	reg := NewRegistry()
	prog, _ := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})
	cfg := PipelineConfig{
		Buffer: BufferState{StencilTest: true},
		Front:  StencilFace{Func: Always, Ref: 1, Mask: 0xff, DepthPass: StencilIncr},
		Back:   StencilFace{Func: Never, Ref: 9, Mask: 0xff, Fail: StencilReplace},
	}
	r := generate(t, reg, prog, cfg, "two_sided")

	tests := []struct {
		front     bool
		wantS     uint8
		wantFrame uint32
	}{
		{true, 11, opaqueRed},
		{false, 9, 0},
	}
	for _, tt := range tests {
		start, step := blocks(prog.Info)
		frame := []uint32{0}
		sbuf := []uint8{10}
		run(t, r, start, step, frame, nil, sbuf, cfg.ForFace(tt.front), 1)
		if sbuf[0] != tt.wantS || frame[0] != tt.wantFrame {
			t.Errorf("front=%v: stencil %d frame %#08x, want %d %#08x", tt.front, sbuf[0], frame[0], tt.wantS, tt.wantFrame)
		}
	}
}

func TestScanlineStencilDepthFail(t *testing.T) {
	reg := NewRegistry()
	prog, _ := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})
	var cfg PipelineConfig
	cfg.Buffer = BufferState{DepthTest: true, DepthFunc: Never, StencilTest: true}
	cfg.SetStencil(StencilFace{Func: Always, Ref: 42, Mask: 0xff, DepthFail: StencilReplace, DepthPass: StencilZero})
	r := generate(t, reg, prog, cfg, "depth_fail")

	start, step := blocks(prog.Info)
	frame, depth, sbuf := []uint32{0}, []int32{5}, []uint8{1}
	run(t, r, start, step, frame, depth, sbuf, cfg.ForFace(true), 1)
	if sbuf[0] != 42 || frame[0] != 0 || depth[0] != 5 {
		t.Errorf("stencil %d frame %#08x depth %d, want 42 0 5", sbuf[0], frame[0], depth[0])
	}
}

func TestScanlineAlphaBlend(t *testing.T) {
	reg := NewRegistry()
	prog, _ := reg.ConstantColorShader("half", [4]float32{1, 0.5, 0, 0.5})
	cfg := PipelineConfig{Blend: BlendState{
		Enable:   true,
		SrcColor: BlendSrcAlpha, DstColor: BlendOneMinusSrcAlpha,
		SrcAlpha: BlendSrcAlpha, DstAlpha: BlendOneMinusSrcAlpha,
	}}
	r := generate(t, reg, prog, cfg, "alpha")

	start, step := blocks(prog.Info)
	frame := []uint32{blend.PackBytes([4]uint8{0, 100, 200, 255})}
	run(t, r, start, step, frame, nil, nil, StencilState{}, 1)

	// src converts to (255, 127, 0, 127).
	if got, want := blend.UnpackBytes(frame[0]), [4]uint8{126, 113, 100, 191}; got != want {
		t.Errorf("blended = %v, want %v", got, want)
	}
}

func TestScanlineAdvancesAttributes(t *testing.T) {
	reg := NewRegistry()
	prog, err := reg.VaryingColorShader("varying", 0)
	if err != nil {
		t.Fatal(err)
	}
	r := generate(t, reg, prog, PipelineConfig{}, "gradient")

	start, step := blocks(prog.Info)
	start[shader.SlotVaryings] = f32.Vec4{0, 0, 0, 1}
	step[shader.SlotVaryings] = f32.Vec4{0.25, 0, 0, 0}
	step[shader.SlotFragCoord] = f32.Vec4{1, 0, 1, 0}
	frame := make([]uint32, 5)
	run(t, r, start, step, frame, nil, nil, StencilState{}, 5)

	for i, red := range []uint8{0, 63, 127, 191, 255} {
		if got := blend.UnpackBytes(frame[i]); got != [4]uint8{red, 0, 0, 255} {
			t.Errorf("frame[%d] = %v, want red %d", i, got, red)
		}
	}
	if start[shader.SlotVaryings][0] != 1.25 {
		t.Errorf("varying advanced to %v, want 1.25", start[shader.SlotVaryings][0])
	}
	// Neither the shader nor a depth test reads the position.
	if start[shader.SlotFragCoord] != (f32.Vec4{}) {
		t.Errorf("frag coord advanced to %v", start[shader.SlotFragCoord])
	}
}

func TestScanlineFragCoordAdvance(t *testing.T) {
	tests := []struct {
		name      string
		info      shader.Info
		depthTest bool
		want      f32.Vec4
	}{
		{"unused", shader.Info{}, false, f32.Vec4{}},
		{"depth only", shader.Info{}, true, f32.Vec4{0, 0, 3, 0}},
		{"full", shader.Info{UsesFragCoord: true}, false, f32.Vec4{3, 0, 3, 6}},
		{"point coord", shader.Info{UsesPointCoord: true}, false, f32.Vec4{}},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			prog, err := reg.NativeShader("s", tt.info, func([]f32.Vec4) {})
			if err != nil {
				t.Fatal(err)
			}
			cfg := PipelineConfig{Buffer: BufferState{DepthTest: tt.depthTest, DepthFunc: Always}}
			r := generate(t, reg, prog, cfg, fmt.Sprintf("advance%d", i))

			start, step := blocks(prog.Info)
			step[shader.SlotFragCoord] = f32.Vec4{1, 0, 1, 2}
			step[shader.SlotPointCoord] = f32.Vec4{0.5, 0.5, 0, 0}
			run(t, r, start, step, make([]uint32, 3), make([]int32, 3), nil, StencilState{}, 3)

			if start[shader.SlotFragCoord] != tt.want {
				t.Errorf("frag coord = %v, want %v", start[shader.SlotFragCoord], tt.want)
			}
			wantPC := f32.Vec4{}
			if tt.info.UsesPointCoord {
				wantPC = f32.Vec4{1.5, 1.5, 0, 0}
			}
			if start[shader.SlotPointCoord] != wantPC {
				t.Errorf("point coord = %v, want %v", start[shader.SlotPointCoord], wantPC)
			}
		})
	}
}

func TestGenerateIdempotent(t *testing.T) {
	reg := NewRegistry()
	red, _ := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})
	green, _ := reg.ConstantColorShader("green", [4]float32{0, 1, 0, 1})

	first := generate(t, reg, red, PipelineConfig{}, "span")
	names := reg.Names()
	second := generate(t, reg, green, PipelineConfig{Buffer: BufferState{DepthTest: true}}, "span")
	if first != second {
		t.Error("second Generate built a new routine")
	}
	if !slices.Equal(names, reg.Names()) {
		t.Errorf("registry changed: %v -> %v", names, reg.Names())
	}

	start, step := blocks(shader.Info{})
	frame := []uint32{0}
	run(t, reg.Routine("span"), start, step, frame, nil, nil, StencilState{}, 1)
	if frame[0] != opaqueRed {
		t.Errorf("frame = %#08x, want the first routine's red", frame[0])
	}
}

func TestGenerateUnknownCode(t *testing.T) {
	tests := []struct {
		name string
		cfg  PipelineConfig
	}{
		{"blend factor", PipelineConfig{Blend: BlendState{Enable: true, SrcColor: 20}}},
		{"blend alpha factor", PipelineConfig{Blend: BlendState{Enable: true, DstAlpha: 15}}},
		{"blend equation", PipelineConfig{Blend: BlendState{Enable: true, ColorEquation: 2}}},
		{"depth func", PipelineConfig{Buffer: BufferState{DepthTest: true, DepthFunc: 9}}},
		{"stencil func", PipelineConfig{
			Buffer: BufferState{StencilTest: true},
			Back:   StencilFace{Func: 12},
		}},
		{"stencil op", PipelineConfig{
			Buffer: BufferState{StencilTest: true},
			Front:  StencilFace{DepthPass: 8},
			Back:   StencilFace{DepthPass: 8},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			prog, _ := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})

			if err := tt.cfg.Validate(); !errors.Is(err, ErrUnknownCode) {
				t.Errorf("Validate() = %v, want ErrUnknownCode", err)
			}
			r, err := Generate(reg, prog, tt.cfg, "bad")
			if !errors.Is(err, ErrUnknownCode) {
				t.Fatalf("Generate() error = %v, want ErrUnknownCode", err)
			}
			if r != nil || reg.Routine("bad") != nil || slices.Contains(reg.Names(), "bad") {
				t.Fatal("failed generation left a routine behind")
			}
			// The name is free again.
			generate(t, reg, prog, PipelineConfig{}, "bad")
		})
	}
}

func TestGenerateDisabledStateIsNotChecked(t *testing.T) {
	reg := NewRegistry()
	prog, _ := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})
	cfg := PipelineConfig{
		Blend:  BlendState{SrcColor: 99},
		Buffer: BufferState{DepthFunc: 99},
		Front:  StencilFace{Func: 99},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	generate(t, reg, prog, cfg, "ignored")
}

func TestGenerateShaderNotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := Generate(reg, Program{Name: "missing"}, PipelineConfig{}, "span")
	if !errors.Is(err, ErrShaderNotFound) {
		t.Errorf("Generate() error = %v, want ErrShaderNotFound", err)
	}
}

func TestGenerateNameTakenByShader(t *testing.T) {
	reg := NewRegistry()
	prog, _ := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})
	if _, err := Generate(reg, prog, PipelineConfig{}, "red"); err == nil {
		t.Error("Generate() reused a shader's name")
	}
}

func TestMustGenerate(t *testing.T) {
	reg := NewRegistry()
	prog, _ := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})
	if r := MustGenerate(reg, prog, PipelineConfig{}, "ok"); r.Name() != "ok" {
		t.Errorf("Name() = %q", r.Name())
	}
	defer func() {
		if recover() == nil {
			t.Error("MustGenerate did not panic")
		}
	}()
	MustGenerate(reg, Program{Name: "missing"}, PipelineConfig{}, "nope")
}

func TestGenerateOptions(t *testing.T) {
	reg := NewRegistry()
	prog, _ := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})

	var logs, dump bytes.Buffer
	l := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r, err := Generate(reg, prog, PipelineConfig{}, "dumped", WithLogger(l), WithDump(&dump))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dump.String(), "func dumped(") || dump.String() != r.String() {
		t.Errorf("dump does not hold the listing:\n%s", dump.String())
	}
	if !strings.Contains(logs.String(), "routine=dumped") {
		t.Errorf("no generation log: %s", logs.String())
	}
	if r.Instructions() == 0 {
		t.Error("Instructions() = 0")
	}

	logs.Reset()
	dump.Reset()
	if _, err := Generate(reg, prog, PipelineConfig{}, "dumped", WithLogger(l), WithDump(&dump)); err != nil {
		t.Fatal(err)
	}
	if dump.Len() != 0 {
		t.Error("existing routine was dumped again")
	}
	if !strings.Contains(logs.String(), "already generated") {
		t.Errorf("no idempotency log: %s", logs.String())
	}
}

func TestGenerateSpecializes(t *testing.T) {
	reg := NewRegistry()
	prog, _ := reg.ConstantColorShader("red", [4]float32{1, 0, 0, 1})
	plain := generate(t, reg, prog, PipelineConfig{}, "plain")

	var cfg PipelineConfig
	cfg.Buffer = BufferState{DepthTest: true, DepthFunc: Less, StencilTest: true}
	cfg.SetStencil(StencilFace{Func: Always, Mask: 0xff, DepthPass: StencilIncr})
	full := generate(t, reg, prog, cfg, "full")

	if plain.Instructions() >= full.Instructions() {
		t.Errorf("plain routine has %d instructions, full %d", plain.Instructions(), full.Instructions())
	}
	// Configuration is folded away: no stencil or depth code remains in
	// the plain routine.
	for _, s := range []string{"sFace", "sPtr", "depthZ", "zPtr", "frameColor"} {
		if strings.Contains(plain.String(), s) {
			t.Errorf("plain routine mentions %q", s)
		}
	}
}

func TestRunErrors(t *testing.T) {
	reg := NewRegistry()
	prog, _ := reg.VaryingColorShader("v", 1)
	var cfg PipelineConfig
	cfg.Buffer = BufferState{DepthTest: true, DepthFunc: Always, StencilTest: true}
	cfg.SetStencil(StencilFace{Func: Always})
	r := generate(t, reg, prog, cfg, "checked")

	start, step := blocks(prog.Info)
	tests := []struct {
		name  string
		start []f32.Vec4
		frame []uint32
		depth []int32
		sbuf  []uint8
		count int
	}{
		{"short frame", start, make([]uint32, 1), make([]int32, 2), make([]uint8, 2), 2},
		{"missing depth", start, make([]uint32, 2), nil, make([]uint8, 2), 2},
		{"short stencil", start, make([]uint32, 2), make([]int32, 2), make([]uint8, 1), 2},
		{"short block", start[:2], make([]uint32, 2), make([]int32, 2), make([]uint8, 2), 2},
	}
	for _, tt := range tests {
		err := r.Run(tt.start, step, tt.frame, tt.depth, tt.sbuf, StencilState{}, tt.count)
		if !errors.Is(err, ErrShortBuffer) {
			t.Errorf("%s: Run() = %v, want ErrShortBuffer", tt.name, err)
		}
	}
	if err := r.Run(start, step, nil, nil, nil, StencilState{}, -1); err == nil {
		t.Error("Run() accepted a negative count")
	}
}

// TestScanlineMatchesReference runs random pipelines against the Go model.
func TestScanlineMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	equations := []BlendEquation{FuncAdd, FuncSubtract, FuncReverseSubtract}
	face := func() StencilFace {
		return StencilFace{
			Func:      CompareFunc(rng.Intn(8)),
			Ref:       uint8(rng.Intn(256)),
			Mask:      []uint8{0xff, 0x0f, uint8(rng.Intn(256))}[rng.Intn(3)],
			Fail:      StencilOp(rng.Intn(8)),
			DepthFail: StencilOp(rng.Intn(8)),
			DepthPass: StencilOp(rng.Intn(8)),
		}
	}
	shade := func(block []f32.Vec4) { block[shader.SlotFragColor] = block[shader.SlotVaryings] }

	reg := NewRegistry()
	for i := 0; i < 150; i++ {
		cfg := PipelineConfig{
			Blend: BlendState{
				Enable:        rng.Intn(3) != 0,
				SrcColor:      BlendFactor(rng.Intn(15)),
				DstColor:      BlendFactor(rng.Intn(15)),
				SrcAlpha:      BlendFactor(rng.Intn(15)),
				DstAlpha:      BlendFactor(rng.Intn(15)),
				ColorEquation: equations[rng.Intn(3)],
				AlphaEquation: equations[rng.Intn(3)],
				Constant:      [4]uint8{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))},
			},
			Buffer: BufferState{
				DepthTest:   rng.Intn(2) == 0,
				DepthFunc:   CompareFunc(rng.Intn(8)),
				StencilTest: rng.Intn(2) == 0,
			},
			Front: face(),
			Back:  face(),
		}
		if rng.Intn(2) == 0 {
			cfg.Back = cfg.Front
		}
		info := shader.Info{UsesFragCoord: rng.Intn(2) == 0, VaryingSlots: 1 + rng.Intn(2)}
		prog, err := reg.NativeShader(fmt.Sprintf("shader%d", i), info, shade)
		if err != nil {
			t.Fatal(err)
		}
		r := generate(t, reg, prog, cfg, fmt.Sprintf("scanline%d", i))

		const n = 16
		start, step := blocks(info)
		for s := range start {
			for l := 0; l < 4; l++ {
				start[s][l] = rng.Float32()*1.4 - 0.2
				step[s][l] = rng.Float32()*0.2 - 0.1
			}
		}
		start[shader.SlotFragCoord][shader.DepthLane] = rng.Float32()*2 - 1
		frame, depth, sbuf := make([]uint32, n), make([]int32, n), make([]uint8, n)
		for j := range frame {
			frame[j] = rng.Uint32()
			depth[j] = DepthKey(rng.Float32()*2 - 1)
			sbuf[j] = uint8(rng.Intn(256))
		}
		state := cfg.ForFace(rng.Intn(2) == 0)

		wantStart, wantFrame := slices.Clone(start), slices.Clone(frame)
		wantDepth, wantS := slices.Clone(depth), slices.Clone(sbuf)
		ReferenceScanline(cfg, info, shade, wantStart, step, wantFrame, wantDepth, wantS, state, n)
		run(t, r, start, step, frame, depth, sbuf, state, n)

		if !slices.Equal(frame, wantFrame) || !slices.Equal(depth, wantDepth) ||
			!slices.Equal(sbuf, wantS) || !slices.Equal(start, wantStart) {
			t.Fatalf("pipeline %d (%+v, %+v, state %+v) diverges from the reference:\nframe %x\nwant  %x\ndepth %v\nwant  %v\nstencil %v\nwant    %v",
				i, cfg, info, state, frame, wantFrame, depth, wantDepth, sbuf, wantS)
		}
	}
}

func TestWGSLShader(t *testing.T) {
	const src = `
@fragment
fn main(@builtin(position) pos: vec4<f32>, @location(1) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(uv, pos.z, 1.0);
}
`
	reg := NewRegistry()
	prog, err := reg.WGSLShader("uv", src, func(block []f32.Vec4) {
		uv, pos := block[shader.SlotVaryings+1], block[shader.SlotFragCoord]
		block[shader.SlotFragColor] = f32.Vec4{uv[0], uv[1], pos[2], 1}
	})
	if err != nil {
		t.Fatalf("WGSLShader() error = %v", err)
	}
	if want := (shader.Info{UsesFragCoord: true, VaryingSlots: 2}); prog.Info != want {
		t.Fatalf("Info = %+v, want %+v", prog.Info, want)
	}
	r := generate(t, reg, prog, PipelineConfig{}, "uv_span")

	start, step := blocks(prog.Info)
	start[shader.SlotVaryings+1] = f32.Vec4{1, 0, 0, 0}
	step[shader.SlotVaryings+1] = f32.Vec4{-0.5, 0.5, 0, 0}
	step[shader.SlotFragCoord] = f32.Vec4{1, 0, 0.5, 0}
	frame := make([]uint32, 3)
	run(t, r, start, step, frame, nil, nil, StencilState{}, 3)

	want := [][4]uint8{{255, 0, 0, 255}, {127, 127, 127, 255}, {0, 255, 255, 255}}
	for i := range want {
		if got := blend.UnpackBytes(frame[i]); got != want[i] {
			t.Errorf("frame[%d] = %v, want %v", i, got, want[i])
		}
	}
	if start[shader.SlotFragCoord][0] != 3 {
		t.Errorf("frag coord x advanced to %v, want 3", start[shader.SlotFragCoord][0])
	}

	if _, err := reg.WGSLShader("broken", "fn broken( {", func([]f32.Vec4) {}); err == nil {
		t.Error("WGSLShader() accepted invalid WGSL")
	}
}
