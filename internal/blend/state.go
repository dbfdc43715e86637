// Package blend emits the fixed-function blending stage of a scanline
// routine.
//
// Blending works on 4-lane 32-bit integer vectors in the [0,255] domain.
// Factors are scaled by 256/255 with factor += factor>>7 so that the
// product can be renormalized with a single >>8 instead of a division.
//
// References:
//   - OpenGL ES 2.0 specification, section 4.1.6 "Blending"
//   - Alpha blending without division: https://arxiv.org/abs/2202.02864
package blend

import "fmt"

// Factor selects a blend factor. Values are compact pipeline-state codes,
// not raw GLenums: color factors precede alpha factors for each operand.
type Factor uint8

const (
	FactorZero Factor = iota
	FactorOne
	FactorSrcColor
	FactorOneMinusSrcColor
	FactorDstColor
	FactorOneMinusDstColor
	FactorSrcAlpha
	FactorOneMinusSrcAlpha
	FactorDstAlpha
	FactorOneMinusDstAlpha
	FactorSrcAlphaSaturate // color channels only; the alpha channel uses 1
	FactorConstantColor
	FactorOneMinusConstantColor
	FactorConstantAlpha
	FactorOneMinusConstantAlpha
)

var factorNames = [...]string{
	"ZERO", "ONE", "SRC_COLOR", "ONE_MINUS_SRC_COLOR", "DST_COLOR",
	"ONE_MINUS_DST_COLOR", "SRC_ALPHA", "ONE_MINUS_SRC_ALPHA", "DST_ALPHA",
	"ONE_MINUS_DST_ALPHA", "SRC_ALPHA_SATURATE", "CONSTANT_COLOR",
	"ONE_MINUS_CONSTANT_COLOR", "CONSTANT_ALPHA", "ONE_MINUS_CONSTANT_ALPHA",
}

// Valid reports whether f is a known factor.
func (f Factor) Valid() bool { return int(f) < len(factorNames) }

func (f Factor) String() string {
	if f.Valid() {
		return factorNames[f]
	}
	return fmt.Sprintf("Factor(%d)", uint8(f))
}

// Equation selects how weighted source and destination combine. Values
// are offsets from GL_FUNC_ADD.
type Equation uint8

const (
	EquationAdd             Equation = 0 // GL_FUNC_ADD
	EquationSubtract        Equation = 4 // GL_FUNC_SUBTRACT
	EquationReverseSubtract Equation = 5 // GL_FUNC_REVERSE_SUBTRACT
)

// Valid reports whether e is a known equation.
func (e Equation) Valid() bool {
	return e == EquationAdd || e == EquationSubtract || e == EquationReverseSubtract
}

func (e Equation) String() string {
	switch e {
	case EquationAdd:
		return "FUNC_ADD"
	case EquationSubtract:
		return "FUNC_SUBTRACT"
	case EquationReverseSubtract:
		return "FUNC_REVERSE_SUBTRACT"
	}
	return fmt.Sprintf("Equation(%d)", uint8(e))
}

// State is the blend portion of a pipeline configuration. It is consumed
// entirely while emitting; generated code never reads it.
type State struct {
	Enable bool

	SrcColor, DstColor Factor
	SrcAlpha, DstAlpha Factor

	ColorEquation Equation
	AlphaEquation Equation

	// Constant is the constant blend color, RGBA in [0,255].
	Constant [4]uint8
}

// ReadsDestination reports whether blending needs the framebuffer value.
func (s State) ReadsDestination() bool {
	return s.Enable && (s.DstColor != FactorZero || s.DstAlpha != FactorZero)
}

// Validate checks every code in s.
func (s State) Validate() error {
	for _, f := range []Factor{s.SrcColor, s.DstColor, s.SrcAlpha, s.DstAlpha} {
		if !f.Valid() {
			return fmt.Errorf("blend factor %d", uint8(f))
		}
	}
	for _, e := range []Equation{s.ColorEquation, s.AlphaEquation} {
		if !e.Valid() {
			return fmt.Errorf("blend equation %d", uint8(e))
		}
	}
	return nil
}
