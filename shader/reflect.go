package shader

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

// SPIR-V constants used by reflection.
const (
	spirvMagic = 0x07230203

	opEntryPoint = 15
	opVariable   = 59
	opDecorate   = 71

	execModelFragment = 4
	storageInput      = 1

	decorationBuiltIn  = 11
	decorationLocation = 30

	builtInFragCoord  = 15
	builtInPointCoord = 16
)

// ErrNoFragmentEntry is returned when a module has no fragment entry point.
var ErrNoFragmentEntry = errors.New("shader: no fragment entry point")

// Reflect compiles WGSL source and reports what its fragment entry point
// reads.
func Reflect(wgsl string) (Info, error) {
	code, err := naga.Compile(wgsl)
	if err != nil {
		return Info{}, fmt.Errorf("shader: compile: %w", err)
	}
	if len(code)%4 != 0 {
		return Info{}, fmt.Errorf("shader: SPIR-V size %d is not a multiple of 4", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return ReflectSPIRV(words)
}

// ReflectSPIRV inspects a SPIR-V module. Only Input variables listed by
// the first fragment entry point are considered: BuiltIn FragCoord and
// PointCoord set the matching flags, and the varying count is one past
// the highest Location.
func ReflectSPIRV(words []uint32) (Info, error) {
	if len(words) < 5 || words[0] != spirvMagic {
		return Info{}, errors.New("shader: not a SPIR-V module")
	}

	var (
		iface     []uint32
		found     bool
		inputs    = map[uint32]bool{}
		builtins  = map[uint32]uint32{}
		locations = map[uint32]uint32{}
	)
	for pos := 5; pos < len(words); {
		n := int(words[pos] >> 16)
		op := words[pos] & 0xffff
		if n == 0 || pos+n > len(words) {
			return Info{}, fmt.Errorf("shader: bad instruction length at word %d", pos)
		}
		args := words[pos+1 : pos+n]
		switch op {
		case opEntryPoint:
			if !found && len(args) >= 2 && args[0] == execModelFragment {
				found = true
				iface = args[2+stringWords(args[2:]):]
			}
		case opVariable:
			if len(args) >= 3 && args[2] == storageInput {
				inputs[args[1]] = true
			}
		case opDecorate:
			if len(args) >= 3 {
				switch args[1] {
				case decorationBuiltIn:
					builtins[args[0]] = args[2]
				case decorationLocation:
					locations[args[0]] = args[2]
				}
			}
		}
		pos += n
	}
	if !found {
		return Info{}, ErrNoFragmentEntry
	}

	var info Info
	for _, id := range iface {
		if !inputs[id] {
			continue
		}
		if b, ok := builtins[id]; ok {
			switch b {
			case builtInFragCoord:
				info.UsesFragCoord = true
			case builtInPointCoord:
				info.UsesPointCoord = true
			}
		}
		if loc, ok := locations[id]; ok && int(loc)+1 > info.VaryingSlots {
			info.VaryingSlots = int(loc) + 1
		}
	}
	return info, info.Validate()
}

// stringWords returns how many words a nul-terminated literal string
// occupies at the start of w.
func stringWords(w []uint32) int {
	for i, word := range w {
		if word>>24 == 0 || word>>16&0xff == 0 || word>>8&0xff == 0 || word&0xff == 0 {
			return i + 1
		}
	}
	return len(w)
}
