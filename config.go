package flinger

import (
	"fmt"

	"github.com/gogpu/flinger/internal/blend"
	"github.com/gogpu/flinger/internal/stencil"
)

// BlendState configures blending. Factors and equations are used as
// given; Constant is the RGBA blend color in [0,255].
type BlendState = blend.State

// StencilFace is the stencil configuration of one polygon face.
type StencilFace = stencil.Face

// BufferState enables the depth and stencil tests.
type BufferState struct {
	DepthTest   bool
	DepthFunc   CompareFunc
	StencilTest bool
}

// PipelineConfig is the fixed-function state a scanline routine is
// specialized for. It is read only during generation; the generated
// routine never consults it.
type PipelineConfig struct {
	Blend  BlendState
	Buffer BufferState
	Front  StencilFace
	Back   StencilFace
}

// Validate reports the first unrecognized code in c, wrapped in
// ErrUnknownCode. Only state that generation will read is checked.
func (c PipelineConfig) Validate() error {
	if c.Blend.Enable {
		if err := c.Blend.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnknownCode, err)
		}
	}
	if c.Buffer.DepthTest && !c.Buffer.DepthFunc.Valid() {
		return fmt.Errorf("%w: depth func %d", ErrUnknownCode, uint8(c.Buffer.DepthFunc))
	}
	if c.Buffer.StencilTest {
		if err := c.Front.Validate(); err != nil {
			return fmt.Errorf("%w: front %v", ErrUnknownCode, err)
		}
		if err := c.Back.Validate(); err != nil {
			return fmt.Errorf("%w: back %v", ErrUnknownCode, err)
		}
	}
	return nil
}

// SetStencil configures both faces identically.
func (c *PipelineConfig) SetStencil(f StencilFace) {
	c.Front = f
	c.Back = f
}

// StencilState is the per-primitive block a routine reads at run time
// when the front and back stencil state diverge. Face 0 selects front.
type StencilState struct {
	Face uint8
	Ref  uint8
	Mask uint8
	Func CompareFunc
}

// Byte offsets inside the encoded stencil state block.
const (
	stencilStateFace = iota
	stencilStateRef
	stencilStateMask
	stencilStateFunc
	stencilStateSize
)

// bytes encodes s as the routine expects it.
func (s StencilState) bytes() []byte {
	b := make([]byte, stencilStateSize)
	b[stencilStateFace] = s.Face
	b[stencilStateRef] = s.Ref
	b[stencilStateMask] = s.Mask
	b[stencilStateFunc] = uint8(s.Func)
	return b
}

// ForFace returns the state block for drawing a front (front == true) or
// back face under c.
func (c PipelineConfig) ForFace(front bool) StencilState {
	f, face := c.Front, uint8(0)
	if !front {
		f, face = c.Back, 1
	}
	return StencilState{Face: face, Ref: f.Ref, Mask: f.Mask, Func: f.Func}
}
