package flinger

import (
	"fmt"

	"github.com/gogpu/flinger/internal/blend"
	"github.com/gogpu/flinger/internal/stencil"
)

// BlendFactor selects a blend factor, GL_ZERO .. GL_ONE_MINUS_CONSTANT_ALPHA.
type BlendFactor = blend.Factor

const (
	BlendZero                  = blend.FactorZero
	BlendOne                   = blend.FactorOne
	BlendSrcColor              = blend.FactorSrcColor
	BlendOneMinusSrcColor      = blend.FactorOneMinusSrcColor
	BlendDstColor              = blend.FactorDstColor
	BlendOneMinusDstColor      = blend.FactorOneMinusDstColor
	BlendSrcAlpha              = blend.FactorSrcAlpha
	BlendOneMinusSrcAlpha      = blend.FactorOneMinusSrcAlpha
	BlendDstAlpha              = blend.FactorDstAlpha
	BlendOneMinusDstAlpha      = blend.FactorOneMinusDstAlpha
	BlendSrcAlphaSaturate      = blend.FactorSrcAlphaSaturate
	BlendConstantColor         = blend.FactorConstantColor
	BlendOneMinusConstantColor = blend.FactorOneMinusConstantColor
	BlendConstantAlpha         = blend.FactorConstantAlpha
	BlendOneMinusConstantAlpha = blend.FactorOneMinusConstantAlpha
)

// BlendEquation selects how weighted colors combine.
type BlendEquation = blend.Equation

const (
	FuncAdd             = blend.EquationAdd
	FuncSubtract        = blend.EquationSubtract
	FuncReverseSubtract = blend.EquationReverseSubtract
)

// CompareFunc is a stencil or depth comparison.
type CompareFunc = stencil.Func

const (
	Never        = stencil.Never
	Less         = stencil.Less
	Equal        = stencil.Equal
	LessEqual    = stencil.LessEqual
	Greater      = stencil.Greater
	NotEqual     = stencil.NotEqual
	GreaterEqual = stencil.GreaterEqual
	Always       = stencil.Always
)

// StencilOp is a stencil buffer update.
type StencilOp = stencil.Op

const (
	StencilZero     = stencil.OpZero
	StencilKeep     = stencil.OpKeep
	StencilReplace  = stencil.OpReplace
	StencilIncr     = stencil.OpIncr
	StencilDecr     = stencil.OpDecr
	StencilInvert   = stencil.OpInvert
	StencilIncrWrap = stencil.OpIncrWrap
	StencilDecrWrap = stencil.OpDecrWrap
)

// GL enum values accepted by the *FromGL converters.
const (
	glZero                  = 0
	glOne                   = 1
	glSrcColor              = 0x0300
	glOneMinusSrcColor      = 0x0301
	glSrcAlpha              = 0x0302
	glOneMinusSrcAlpha      = 0x0303
	glDstAlpha              = 0x0304
	glOneMinusDstAlpha      = 0x0305
	glDstColor              = 0x0306
	glOneMinusDstColor      = 0x0307
	glSrcAlphaSaturate      = 0x0308
	glConstantColor         = 0x8001
	glOneMinusConstantColor = 0x8002
	glConstantAlpha         = 0x8003
	glOneMinusConstantAlpha = 0x8004

	glFuncAdd             = 0x8006
	glFuncSubtract        = 0x800A
	glFuncReverseSubtract = 0x800B

	glNever  = 0x0200
	glAlways = 0x0207

	glKeep     = 0x1E00
	glReplace  = 0x1E01
	glIncr     = 0x1E02
	glDecr     = 0x1E03
	glInvert   = 0x150A
	glIncrWrap = 0x8507
	glDecrWrap = 0x8508
)

var glBlendFactors = map[uint32]BlendFactor{
	glZero:                  BlendZero,
	glOne:                   BlendOne,
	glSrcColor:              BlendSrcColor,
	glOneMinusSrcColor:      BlendOneMinusSrcColor,
	glSrcAlpha:              BlendSrcAlpha,
	glOneMinusSrcAlpha:      BlendOneMinusSrcAlpha,
	glDstAlpha:              BlendDstAlpha,
	glOneMinusDstAlpha:      BlendOneMinusDstAlpha,
	glDstColor:              BlendDstColor,
	glOneMinusDstColor:      BlendOneMinusDstColor,
	glSrcAlphaSaturate:      BlendSrcAlphaSaturate,
	glConstantColor:         BlendConstantColor,
	glOneMinusConstantColor: BlendOneMinusConstantColor,
	glConstantAlpha:         BlendConstantAlpha,
	glOneMinusConstantAlpha: BlendOneMinusConstantAlpha,
}

var glStencilOps = map[uint32]StencilOp{
	glZero:     StencilZero,
	glKeep:     StencilKeep,
	glReplace:  StencilReplace,
	glIncr:     StencilIncr,
	glDecr:     StencilDecr,
	glInvert:   StencilInvert,
	glIncrWrap: StencilIncrWrap,
	glDecrWrap: StencilDecrWrap,
}

// BlendFactorFromGL converts a GLenum such as GL_SRC_ALPHA.
func BlendFactorFromGL(e uint32) (BlendFactor, error) {
	if f, ok := glBlendFactors[e]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: blend factor 0x%04X", ErrUnknownCode, e)
}

// BlendEquationFromGL converts GL_FUNC_ADD, GL_FUNC_SUBTRACT or
// GL_FUNC_REVERSE_SUBTRACT.
func BlendEquationFromGL(e uint32) (BlendEquation, error) {
	switch e {
	case glFuncAdd, glFuncSubtract, glFuncReverseSubtract:
		return BlendEquation(e - glFuncAdd), nil
	}
	return 0, fmt.Errorf("%w: blend equation 0x%04X", ErrUnknownCode, e)
}

// CompareFuncFromGL converts GL_NEVER .. GL_ALWAYS.
func CompareFuncFromGL(e uint32) (CompareFunc, error) {
	if e >= glNever && e <= glAlways {
		return CompareFunc(e & 0x7), nil
	}
	return 0, fmt.Errorf("%w: compare func 0x%04X", ErrUnknownCode, e)
}

// StencilOpFromGL converts GL_ZERO, GL_KEEP .. GL_DECR_WRAP.
func StencilOpFromGL(e uint32) (StencilOp, error) {
	if op, ok := glStencilOps[e]; ok {
		return op, nil
	}
	return 0, fmt.Errorf("%w: stencil op 0x%04X", ErrUnknownCode, e)
}
