package ebml

import "math"

// RangeKind distinguishes the three shapes a declared value or length
// range can take, grounded on the original source's RangeDef<T> sum
// type (schema_types.rs) rather than a degenerate (min, max) pair: it
// can express "exactly one value", "any value except one", or a
// half-open/closed interval independently at each bound.
type RangeKind int

const (
	RangeUnbounded RangeKind = iota
	RangeIsExactly
	RangeExcludes
	RangeIsWithin
)

// Bound is one endpoint of a RangeIsWithin range.
type Bound struct {
	// Present is false for an unbounded (infinite) end.
	Present   bool
	Value     uint64
	Exclusive bool
}

// Range is a value or length constraint attached to a schema
// definition.
type Range struct {
	Kind  RangeKind
	Exact uint64 // for RangeIsExactly / RangeExcludes
	Low   Bound  // for RangeIsWithin
	High  Bound  // for RangeIsWithin
}

// Unbounded is the default, always-satisfied range.
var Unbounded = Range{Kind: RangeUnbounded}

// Exactly builds a RangeIsExactly range.
func Exactly(v uint64) Range { return Range{Kind: RangeIsExactly, Exact: v} }

// Excludes builds a RangeExcludes range.
func Excludes(v uint64) Range { return Range{Kind: RangeExcludes, Exact: v} }

// Contains reports whether v satisfies the range.
func (r Range) Contains(v uint64) bool {
	switch r.Kind {
	case RangeUnbounded:
		return true
	case RangeIsExactly:
		return v == r.Exact
	case RangeExcludes:
		return v != r.Exact
	case RangeIsWithin:
		if r.Low.Present {
			if r.Low.Exclusive && v <= r.Low.Value {
				return false
			}
			if !r.Low.Exclusive && v < r.Low.Value {
				return false
			}
		}
		if r.High.Present {
			if r.High.Exclusive && v >= r.High.Value {
				return false
			}
			if !r.High.Exclusive && v > r.High.Value {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Unbounded occurrence sentinel.
const MaxOccursUnbounded = math.MaxUint32

// Def is a single element definition: the runtime data the cursor
// walks instead of per-element generated types (§9 "Schema as data,
// not types").
type Def struct {
	ID   uint32
	Path string
	Kind Kind

	MinOccurs uint32
	MaxOccurs uint32 // MaxOccursUnbounded means no bound

	LengthRange Range
	ValueRange  Range
	Default     *Value

	Recurring bool

	MinVersion uint64
	MaxVersion uint64 // 0 means unbounded

	// Master-only fields.
	UnknownSizeAllowed bool
	Recursive          bool
}

// ChildRef is a lightweight view of a Def as seen from a particular
// parent, per §6.3. ChildRef repeats Def's per-parent fields
// (occurrence bounds, UnknownSizeAllowed, Recursive) next to a pointer
// to the shared Def; it exists as a distinct type so schema
// implementations are free to vary occurrence bounds per parent
// without mutating the shared Def (e.g. the same element legal under
// two different masters with different MaxOccurs).
type ChildRef struct {
	Def                *Def
	MinOccurs          uint32
	MaxOccurs          uint32
	UnknownSizeAllowed bool
	Recursive          bool
}

func childRefFromDef(d *Def) ChildRef {
	return ChildRef{
		Def:                d,
		MinOccurs:          d.MinOccurs,
		MaxOccurs:          d.MaxOccurs,
		UnknownSizeAllowed: d.UnknownSizeAllowed,
		Recursive:          d.Recursive,
	}
}

// Schema is the external collaborator interface the cursor consumes
// (§6.3). The core never hard-codes a schema; concrete schemas (such
// as package demoschema) implement this interface.
type Schema interface {
	RootChildren() []ChildRef
	Def(id uint32) (*Def, bool)
	ChildrenOf(master *Def) []ChildRef
}

// VoidID and CRC32ID are the two reserved global element IDs that are
// legal inside any master regardless of what the schema declares
// (§3.2, §6.3).
const (
	VoidID  uint32 = 0xEC
	CRC32ID uint32 = 0xBF
)

var voidDef = &Def{
	ID:        VoidID,
	Path:      "Void",
	Kind:      KindBinary,
	MinOccurs: 0,
	MaxOccurs: MaxOccursUnbounded,
}

var crc32Def = &Def{
	ID:          CRC32ID,
	Path:        "CRC32",
	Kind:        KindBinary,
	MinOccurs:   0,
	MaxOccurs:   1,
	LengthRange: Exactly(4),
}

// globalDef returns the always-registered Void/CRC32 definition for
// id, if id names one of them.
func globalDef(id uint32) (*Def, bool) {
	switch id {
	case VoidID:
		return voidDef, true
	case CRC32ID:
		return crc32Def, true
	}
	return nil, false
}
