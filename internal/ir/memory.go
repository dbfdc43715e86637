package ir

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f32"
)

// Region is addressable memory reachable through a Pointer. Offsets are
// in bytes; each implementation decides which typed accesses it allows.
type Region interface {
	Load(t *Type, off int) Word
	Store(t *Type, off int, w Word)
}

// PointerWord returns a pointer word addressing the start of r.
func PointerWord(r Region) Word {
	return Word{Ptr: Pointer{Region: r}}
}

// Bytes is a byte-addressed region holding i8 values.
type Bytes []byte

func (m Bytes) Load(t *Type, off int) Word {
	if t.Kind != KindI8 || t.IsVector() {
		panic(fmt.Sprintf("ir: load %s from byte region", t))
	}
	return Word{Lanes: [Lanes]uint32{uint32(m[off])}}
}

func (m Bytes) Store(t *Type, off int, w Word) {
	if t.Kind != KindI8 || t.IsVector() {
		panic(fmt.Sprintf("ir: store %s to byte region", t))
	}
	m[off] = byte(w.Lanes[0])
}

// Words is a region of 32-bit words. Scalars and 4-lane vectors may be
// accessed at any word-aligned offset.
type Words[T ~uint32 | ~int32] []T

func (m Words[T]) Load(t *Type, off int) Word {
	i := wordIndex(t, off)
	var w Word
	for l := 0; l < t.Lanes; l++ {
		w.Lanes[l] = uint32(m[i+l])
	}
	return w
}

func (m Words[T]) Store(t *Type, off int, w Word) {
	i := wordIndex(t, off)
	for l := 0; l < t.Lanes; l++ {
		m[i+l] = T(w.Lanes[l])
	}
}

// Vec4s is a region of float vectors, such as an interpolated attribute
// block. Scalar i32/f32 accesses address a single lane.
type Vec4s []f32.Vec4

func (m Vec4s) Load(t *Type, off int) Word {
	i := wordIndex(t, off)
	var w Word
	for l := 0; l < t.Lanes; l++ {
		w.Lanes[l] = math.Float32bits(m[(i+l)/Lanes][(i+l)%Lanes])
	}
	return w
}

func (m Vec4s) Store(t *Type, off int, w Word) {
	i := wordIndex(t, off)
	for l := 0; l < t.Lanes; l++ {
		m[(i+l)/Lanes][(i+l)%Lanes] = math.Float32frombits(w.Lanes[l])
	}
}

func wordIndex(t *Type, off int) int {
	if (t.Kind != KindI32 && t.Kind != KindF32) || off%4 != 0 {
		panic(fmt.Sprintf("ir: unaligned or non-word access %s at %d", t, off))
	}
	return off / 4
}

// cell holds exactly one value of any type. Allocas and globals are cells.
type cell struct{ w Word }

func (c *cell) Load(t *Type, off int) Word {
	if off != 0 {
		panic(fmt.Sprintf("ir: cell access at offset %d", off))
	}
	return c.w
}

func (c *cell) Store(t *Type, off int, w Word) {
	if off != 0 {
		panic(fmt.Sprintf("ir: cell access at offset %d", off))
	}
	c.w = w
}

// Vec4Slice returns the attribute slots starting at p when p points into
// a Vec4s region at a slot boundary.
func (p Pointer) Vec4Slice() ([]f32.Vec4, bool) {
	m, ok := p.Region.(Vec4s)
	if !ok || p.Off%16 != 0 {
		return nil, false
	}
	return m[p.Off/16:], true
}
