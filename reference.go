package flinger

import (
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/flinger/internal/blend"
	"github.com/gogpu/flinger/internal/stencil"
	"github.com/gogpu/flinger/shader"
)

// DepthKey returns the depth buffer value for depth z: the float bits
// reinterpreted as int32, with negative values remapped so that signed
// integer order matches float order.
func DepthKey(z float32) int32 {
	k := int32(math.Float32bits(z))
	if k < 0 {
		k ^= depthSignFix
	}
	return k
}

// ReferenceScanline runs the pipeline described by cfg directly in Go,
// with the same integer semantics as a routine generated from cfg. shade
// plays the role of the shader. Buffers must be large enough for count
// fragments; no lengths are checked.
func ReferenceScanline(cfg PipelineConfig, info shader.Info, shade func(block []f32.Vec4),
	start, step []f32.Vec4, frame []uint32, depth []int32, sbuf []uint8, state StencilState, count int) {
	front := state.Face == 0
	pickByte := func(f, b, runtime uint8) uint8 {
		if f == b {
			return f
		}
		return runtime
	}
	pickOp := func(f, b stencil.Op) stencil.Op {
		if f == b || front {
			return f
		}
		return b
	}
	ref := pickByte(cfg.Front.Ref, cfg.Back.Ref, state.Ref)
	mask := pickByte(cfg.Front.Mask, cfg.Back.Mask, state.Mask)
	fn := cfg.Front.Func
	if cfg.Front.Func != cfg.Back.Func && !front {
		fn = cfg.Back.Func
	}

	for i := 0; i < count; i++ {
		var s uint8
		sPass := true
		if cfg.Buffer.StencilTest {
			s = sbuf[i] & mask
			sPass = stencil.TestRef(fn, ref, s)
		}
		var z int32
		zPass := true
		if cfg.Buffer.DepthTest {
			z = DepthKey(start[shader.SlotFragCoord][shader.DepthLane])
			zPass = stencil.DepthTestRef(cfg.Buffer.DepthFunc, z, depth[i])
		}

		switch {
		case sPass && zPass:
			shade(start)
			frame[i] = blend.Reference(cfg.Blend, [4]float32(start[shader.SlotFragColor]), frame[i])
			if cfg.Buffer.DepthTest {
				depth[i] = z
			}
			if cfg.Buffer.StencilTest {
				sbuf[i] = stencil.ApplyRef(pickOp(cfg.Front.DepthPass, cfg.Back.DepthPass), s, ref)
			}
		case sPass:
			if cfg.Buffer.StencilTest {
				sbuf[i] = stencil.ApplyRef(pickOp(cfg.Front.DepthFail, cfg.Back.DepthFail), s, ref)
			}
		default:
			if cfg.Buffer.StencilTest {
				sbuf[i] = stencil.ApplyRef(pickOp(cfg.Front.Fail, cfg.Back.Fail), s, ref)
			}
		}

		switch {
		case info.UsesFragCoord:
			addSlot(start, step, shader.SlotFragCoord)
		case cfg.Buffer.DepthTest:
			start[shader.SlotFragCoord][shader.DepthLane] += step[shader.SlotFragCoord][shader.DepthLane]
		}
		if info.UsesPointCoord {
			addSlot(start, step, shader.SlotPointCoord)
		}
		for v := 0; v < info.VaryingSlots; v++ {
			addSlot(start, step, shader.SlotVaryings+v)
		}
	}
}

func addSlot(start, step []f32.Vec4, i int) {
	for l := range start[i] {
		start[i][l] += step[i][l]
	}
}
