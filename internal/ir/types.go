// Package ir is a small typed intermediate representation used to emit
// specialized per-fragment routines.
//
// A Function is built with a Builder, which folds operations on constant
// operands as they are emitted, so configuration decisions never survive
// as instructions. Functions live in a Module and are executed through a
// Program produced by Compile.
package ir

import "fmt"

// Kind is the scalar kind of a type.
type Kind uint8

const (
	KindVoid Kind = iota
	KindI1
	KindI8
	KindI32
	KindF32
	KindPtr
)

// Lanes is the width of every vector type.
const Lanes = 4

// Type describes the type of a value. Scalars have Lanes == 1, vectors
// have Lanes == 4. Pointer types carry the pointee in Elem.
type Type struct {
	Kind  Kind
	Lanes int
	Elem  *Type
}

// Predeclared types.
var (
	Void  = &Type{Kind: KindVoid}
	I1    = &Type{Kind: KindI1, Lanes: 1}
	I8    = &Type{Kind: KindI8, Lanes: 1}
	I32   = &Type{Kind: KindI32, Lanes: 1}
	F32   = &Type{Kind: KindF32, Lanes: 1}
	I32x4 = &Type{Kind: KindI32, Lanes: Lanes}
	F32x4 = &Type{Kind: KindF32, Lanes: Lanes}
)

// PointerTo returns the pointer type with pointee t.
func PointerTo(t *Type) *Type {
	return &Type{Kind: KindPtr, Lanes: 1, Elem: t}
}

// Equal reports whether t and u describe the same type.
func (t *Type) Equal(u *Type) bool {
	if t == u {
		return true
	}
	if t == nil || u == nil || t.Kind != u.Kind || t.Lanes != u.Lanes {
		return false
	}
	if t.Kind == KindPtr {
		return t.Elem.Equal(u.Elem)
	}
	return true
}

// IsVector reports whether t is a 4-lane vector.
func (t *Type) IsVector() bool { return t.Lanes == Lanes }

// IsInt reports whether t is an integer scalar or vector (i1 included).
func (t *Type) IsInt() bool {
	return t.Kind == KindI1 || t.Kind == KindI8 || t.Kind == KindI32
}

// IsFloat reports whether t is a float scalar or vector.
func (t *Type) IsFloat() bool { return t.Kind == KindF32 }

// IsPtr reports whether t is a pointer.
func (t *Type) IsPtr() bool { return t.Kind == KindPtr }

// Scalar returns the lane type of a vector, or t itself.
func (t *Type) Scalar() *Type {
	if !t.IsVector() {
		return t
	}
	return &Type{Kind: t.Kind, Lanes: 1}
}

// Vector returns the 4-lane vector type with t's kind.
func (t *Type) Vector() *Type {
	return &Type{Kind: t.Kind, Lanes: Lanes}
}

// Size returns the in-memory size of a value of type t in bytes.
func (t *Type) Size() int {
	var n int
	switch t.Kind {
	case KindI1, KindI8:
		n = 1
	case KindI32, KindF32:
		n = 4
	case KindPtr:
		n = 8
	default:
		return 0
	}
	return n * t.Lanes
}

// mask is the bit mask keeping one lane of t normalized.
func (t *Type) mask() uint32 {
	switch t.Kind {
	case KindI1:
		return 1
	case KindI8:
		return 0xff
	default:
		return 0xffffffff
	}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var s string
	switch t.Kind {
	case KindVoid:
		return "void"
	case KindI1:
		s = "i1"
	case KindI8:
		s = "i8"
	case KindI32:
		s = "i32"
	case KindF32:
		s = "f32"
	case KindPtr:
		return t.Elem.String() + "*"
	}
	if t.IsVector() {
		return fmt.Sprintf("%sx%d", s, t.Lanes)
	}
	return s
}
