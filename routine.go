package flinger

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/flinger/internal/ir"
)

// Routine is a generated scanline routine. It holds no per-call state:
// Run may be called from many goroutines at once provided each call gets
// its own buffers.
type Routine struct {
	name        string
	fn          *ir.Function
	prog        *ir.Program
	depthTest   bool
	stencilTest bool
	blockLen    int
}

// Name returns the name the routine was registered under.
func (r *Routine) Name() string { return r.name }

// Run processes count fragments. start and step are the attribute block
// of the first fragment and its per-fragment derivative; start is
// advanced in place. frame, depth and stencil are the buffer spans
// starting at the first fragment. depth and stencil may be nil when the
// matching test is disabled. state selects the face and supplies the
// per-face stencil values that front and back disagree on.
func (r *Routine) Run(start, step []f32.Vec4, frame []uint32, depth []int32, stencil []uint8, state StencilState, count int) error {
	if count < 0 || count > math.MaxInt32 {
		return fmt.Errorf("flinger: %s: count %d out of range", r.name, count)
	}
	if len(start) < r.blockLen || len(step) < r.blockLen {
		return fmt.Errorf("%w: %s: attribute blocks have %d and %d slots, want %d",
			ErrShortBuffer, r.name, len(start), len(step), r.blockLen)
	}
	if len(frame) < count {
		return fmt.Errorf("%w: %s: frame %d < %d", ErrShortBuffer, r.name, len(frame), count)
	}
	if r.depthTest && len(depth) < count {
		return fmt.Errorf("%w: %s: depth %d < %d", ErrShortBuffer, r.name, len(depth), count)
	}
	if r.stencilTest && len(stencil) < count {
		return fmt.Errorf("%w: %s: stencil %d < %d", ErrShortBuffer, r.name, len(stencil), count)
	}

	r.prog.Invoke(
		ir.PointerWord(ir.Vec4s(start)),
		ir.PointerWord(ir.Vec4s(step)),
		ir.PointerWord(ir.Words[uint32](frame)),
		ir.PointerWord(ir.Words[int32](depth)),
		ir.PointerWord(ir.Bytes(stencil)),
		ir.PointerWord(ir.Bytes(state.bytes())),
		ir.Word{Lanes: [ir.Lanes]uint32{uint32(count)}},
	)
	return nil
}

// Instructions returns the number of instructions in the routine.
func (r *Routine) Instructions() int { return r.fn.Instructions() }

// String returns the routine's IR listing.
func (r *Routine) String() string { return r.fn.String() }
