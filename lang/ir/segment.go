package ir

import "fmt"

// Segment identifies a memory region addressable by push/pop and the
// derived ldd/sdd/tee/inc/dec/inv/poke opcodes, plus the two pseudo-segments
// synthesized by peephole rules 1 and 2 to fold a constant's bitwise-not or
// negation into the load site.
type Segment uint8

const ( //nolint:revive
	NoSegment Segment = iota
	Argument
	Local
	Static
	Constant
	This
	That
	Pointer
	Temp
	ConstantNot // constant~: D=!A of the literal
	ConstantNeg // constant-: D=-A of the literal
)

var segmentNames = [...]string{
	Argument:    "argument",
	Local:       "local",
	Static:      "static",
	Constant:    "constant",
	This:        "this",
	That:        "that",
	Pointer:     "pointer",
	Temp:        "temp",
	ConstantNot: "constant~",
	ConstantNeg: "constant-",
}

var reverseLookupSegment = func() map[string]Segment {
	m := make(map[string]Segment, len(segmentNames))
	for seg, s := range segmentNames {
		if s != "" {
			m[s] = Segment(seg)
		}
	}
	return m
}()

// LookupSegment returns the Segment named by s and true, or false if s is
// not a recognized segment name.
func LookupSegment(s string) (Segment, bool) {
	seg, ok := reverseLookupSegment[s]
	return seg, ok
}

func (s Segment) String() string {
	if int(s) < len(segmentNames) {
		if name := segmentNames[s]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal segment (%d)", uint8(s))
}

// PointerBased reports whether s is one of the four segments addressed
// through a base pointer held in LCL/ARG/THIS/THAT, the segments whose
// lowerings use shorter instruction sequences for small indices.
func (s Segment) PointerBased() bool {
	switch s {
	case Local, Argument, This, That:
		return true
	default:
		return false
	}
}

// BaseRegister returns the assembly symbol holding s's base pointer, for a
// PointerBased segment.
func (s Segment) BaseRegister() string {
	switch s {
	case Local:
		return "LCL"
	case Argument:
		return "ARG"
	case This:
		return "THIS"
	case That:
		return "THAT"
	default:
		panic(fmt.Sprintf("ir: BaseRegister called on non-pointer-based segment %s", s))
	}
}
