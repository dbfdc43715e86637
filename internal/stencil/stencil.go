// Package stencil emits stencil tests and stencil buffer updates.
//
// Stencil values are i8. Comparisons put the reference on the left:
// LESS passes when ref < value, using unsigned ordering.
package stencil

import "fmt"

// Func is a comparison function code, GL_NEVER..GL_ALWAYS masked to 3 bits.
// Depth testing uses the same codes.
type Func uint8

const (
	Never Func = iota
	Less
	Equal
	LessEqual
	Greater
	NotEqual
	GreaterEqual
	Always
)

var funcNames = [...]string{"NEVER", "LESS", "EQUAL", "LEQUAL", "GREATER", "NOTEQUAL", "GEQUAL", "ALWAYS"}

// Valid reports whether f is a known comparison.
func (f Func) Valid() bool { return int(f) < len(funcNames) }

func (f Func) String() string {
	if f.Valid() {
		return funcNames[f]
	}
	return fmt.Sprintf("Func(%d)", uint8(f))
}

// Op is a stencil update operation code.
type Op uint8

const (
	OpZero Op = iota
	OpKeep
	OpReplace
	OpIncr
	OpDecr
	OpInvert
	OpIncrWrap
	OpDecrWrap
)

var opNames = [...]string{"ZERO", "KEEP", "REPLACE", "INCR", "DECR", "INVERT", "INCR_WRAP", "DECR_WRAP"}

// Valid reports whether o is a known operation.
func (o Op) Valid() bool { return int(o) < len(opNames) }

func (o Op) String() string {
	if o.Valid() {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Face is the stencil state of one polygon face.
type Face struct {
	Func Func
	Ref  uint8
	Mask uint8

	Fail      Op // stencil test failed
	DepthFail Op // stencil passed, depth failed
	DepthPass Op // both passed
}

// Validate checks every code in f.
func (f Face) Validate() error {
	if !f.Func.Valid() {
		return fmt.Errorf("stencil func %d", uint8(f.Func))
	}
	for _, op := range []Op{f.Fail, f.DepthFail, f.DepthPass} {
		if !op.Valid() {
			return fmt.Errorf("stencil op %d", uint8(op))
		}
	}
	return nil
}
