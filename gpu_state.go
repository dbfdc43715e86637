package flinger

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// BlendStateFromGPU converts a WebGPU blend state into an enabled
// BlendState with the given constant color. Min and Max operations have
// no fixed-function equivalent here and return ErrUnsupported.
func BlendStateFromGPU(s gputypes.BlendState, constant [4]uint8) (BlendState, error) {
	var (
		out BlendState
		err error
	)
	out.Enable = true
	out.Constant = constant
	if out.SrcColor, err = blendFactorFromGPU(s.Color.SrcFactor); err != nil {
		return BlendState{}, fmt.Errorf("color src: %w", err)
	}
	if out.DstColor, err = blendFactorFromGPU(s.Color.DstFactor); err != nil {
		return BlendState{}, fmt.Errorf("color dst: %w", err)
	}
	if out.SrcAlpha, err = blendFactorFromGPU(s.Alpha.SrcFactor); err != nil {
		return BlendState{}, fmt.Errorf("alpha src: %w", err)
	}
	if out.DstAlpha, err = blendFactorFromGPU(s.Alpha.DstFactor); err != nil {
		return BlendState{}, fmt.Errorf("alpha dst: %w", err)
	}
	if out.ColorEquation, err = blendOperationFromGPU(s.Color.Operation); err != nil {
		return BlendState{}, fmt.Errorf("color: %w", err)
	}
	if out.AlphaEquation, err = blendOperationFromGPU(s.Alpha.Operation); err != nil {
		return BlendState{}, fmt.Errorf("alpha: %w", err)
	}
	return out, nil
}

// WebGPU has no separate constant-alpha factors; Constant maps to
// CONSTANT_COLOR, which uses the constant's alpha for the alpha channel.
func blendFactorFromGPU(f gputypes.BlendFactor) (BlendFactor, error) {
	switch f {
	case gputypes.BlendFactorZero:
		return BlendZero, nil
	case gputypes.BlendFactorOne:
		return BlendOne, nil
	case gputypes.BlendFactorSrc:
		return BlendSrcColor, nil
	case gputypes.BlendFactorOneMinusSrc:
		return BlendOneMinusSrcColor, nil
	case gputypes.BlendFactorSrcAlpha:
		return BlendSrcAlpha, nil
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return BlendOneMinusSrcAlpha, nil
	case gputypes.BlendFactorDst:
		return BlendDstColor, nil
	case gputypes.BlendFactorOneMinusDst:
		return BlendOneMinusDstColor, nil
	case gputypes.BlendFactorDstAlpha:
		return BlendDstAlpha, nil
	case gputypes.BlendFactorOneMinusDstAlpha:
		return BlendOneMinusDstAlpha, nil
	case gputypes.BlendFactorSrcAlphaSaturated:
		return BlendSrcAlphaSaturate, nil
	case gputypes.BlendFactorConstant:
		return BlendConstantColor, nil
	case gputypes.BlendFactorOneMinusConstant:
		return BlendOneMinusConstantColor, nil
	}
	return 0, fmt.Errorf("%w: blend factor %v", ErrUnsupported, f)
}

func blendOperationFromGPU(op gputypes.BlendOperation) (BlendEquation, error) {
	switch op {
	case gputypes.BlendOperationAdd:
		return FuncAdd, nil
	case gputypes.BlendOperationSubtract:
		return FuncSubtract, nil
	case gputypes.BlendOperationReverseSubtract:
		return FuncReverseSubtract, nil
	}
	return 0, fmt.Errorf("%w: blend operation %v", ErrUnsupported, op)
}

// CompareFuncFromGPU converts a WebGPU compare function.
func CompareFuncFromGPU(f gputypes.CompareFunction) (CompareFunc, error) {
	switch f {
	case gputypes.CompareFunctionNever:
		return Never, nil
	case gputypes.CompareFunctionLess:
		return Less, nil
	case gputypes.CompareFunctionEqual:
		return Equal, nil
	case gputypes.CompareFunctionLessEqual:
		return LessEqual, nil
	case gputypes.CompareFunctionGreater:
		return Greater, nil
	case gputypes.CompareFunctionNotEqual:
		return NotEqual, nil
	case gputypes.CompareFunctionGreaterEqual:
		return GreaterEqual, nil
	case gputypes.CompareFunctionAlways:
		return Always, nil
	}
	return 0, fmt.Errorf("%w: compare function %v", ErrUnsupported, f)
}
