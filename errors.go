package flinger

import "errors"

var (
	// ErrUnknownCode reports an unrecognized blend, stencil or compare code.
	// Configurations are expected to be validated before generation.
	ErrUnknownCode = errors.New("flinger: unrecognized configuration code")

	// ErrShaderNotFound is returned when the program's shader is not in
	// the registry.
	ErrShaderNotFound = errors.New("flinger: shader not found")

	// ErrUnsupported reports pipeline state the scanline stage cannot express.
	ErrUnsupported = errors.New("flinger: unsupported pipeline state")

	// ErrShortBuffer is returned by Routine.Run when a buffer cannot hold
	// the requested fragments.
	ErrShortBuffer = errors.New("flinger: buffer too short")
)
