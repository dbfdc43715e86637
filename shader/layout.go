// Package shader describes fragment shader programs as seen by the
// scanline generator: which inputs they read and where the interpolated
// attribute block keeps them.
//
// # Attribute block
//
// The block is an array of f32.Vec4 slots in a fixed order:
//
//	slot 0       fragment coordinate (x, y, z, w); z is the depth
//	slot 1       fragment color output
//	slot 2       point coordinate
//	slot 3..3+n  varyings
//
// A scanline routine receives two blocks: "start" with the values for the
// current fragment and "step" with their per-fragment derivatives.
// Shaders read inputs from and write outputs to "start".
package shader

import "fmt"

// Slot indices in the attribute block.
const (
	SlotFragCoord  = 0
	SlotFragColor  = 1
	SlotPointCoord = 2
	SlotVaryings   = 3
)

// SlotSize is the size of one attribute slot in bytes.
const SlotSize = 16

// MaxVaryings is the largest number of varying slots a program may use.
const MaxVaryings = 8

// DepthLane is the lane of the fragment coordinate holding depth.
const DepthLane = 2

// BlockLen returns the number of slots in a block with n varyings.
func BlockLen(n int) int { return SlotVaryings + n }

// Info records which parts of the attribute block a program reads. It
// drives which slots the scanline advances per fragment.
type Info struct {
	UsesFragCoord  bool
	UsesPointCoord bool
	VaryingSlots   int
}

// Validate checks the varying count against MaxVaryings.
func (i Info) Validate() error {
	if i.VaryingSlots < 0 || i.VaryingSlots > MaxVaryings {
		return fmt.Errorf("shader: %d varying slots, want 0..%d", i.VaryingSlots, MaxVaryings)
	}
	return nil
}

// BlockLen returns the number of slots a block for this program needs.
func (i Info) BlockLen() int { return BlockLen(i.VaryingSlots) }
