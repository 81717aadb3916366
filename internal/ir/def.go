package ir

// Unit distinguishes whether a size or length is counted in bits or in
// whole bytes, mirroring the grammar's `:bits` and `:bytes` suffixes on
// a size or vector length (`(n:bits)`, `[n:bytes]`); with no suffix the
// parser uses bytes.
type Unit int

const (
	UnitBits Unit = iota
	UnitBytes
)

// Flags records the handful of independent boolean properties a
// definition can carry. They are bits on a single word rather than
// separate struct fields so that makeField's "clear flags on the
// promoted definition" step is one assignment.
type Flags uint8

const (
	// FlagOptional marks a member that may be entirely absent from the
	// wire encoding (preceded by a presence bit elsewhere in the struct).
	FlagOptional Flags = 1 << iota
	// FlagDistinctive marks the enum used to discriminate a Select.
	FlagDistinctive
	// FlagExtern marks a member whose definition lives outside this
	// file (the emitter resolves it against an externally supplied
	// type rather than one normalize or check can see).
	FlagExtern
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// SizeDef records an explicit `(n)` / `(n:bits)` / `(n:bytes)` size
// annotation attached to a definition. A nil *SizeDef means no annotation was
// given and the size is whatever the type naturally implies.
type SizeDef struct {
	Length IntElement
	Unit   Unit
}

// Def is one node of the type-definition tree. Every definition, built
// in or user written, top level or nested, is a Def living in some
// Collection's arena; Data holds the kind-specific fields as a tagged
// union (see kinds.go).
type Def struct {
	Name   string
	Parent Handle // InvalidHandle for top-level definitions
	Flags  Flags
	Size   *SizeDef
	Params []string

	// TypeID is the wire-format identifier assigned during dependency
	// sort. -1 means unassigned (built-ins never get one).
	TypeID int

	// Line is the 1-based source line this definition came from, used
	// for diagnostics. 0 for synthesized definitions.
	Line int

	Data DefData
}

// DefData is the marker interface implemented by each kind's data
// struct (UIntData, StructData, SelectData, ...). A Def's Kind is
// always derivable from the concrete type behind Data.
type DefData interface {
	Kind() Kind
}
