package ir

// Kind identifies which concrete DefData a Def carries. It exists so
// that packages outside ir can switch on kind without a type switch
// over every DefData implementation, and so that per-Kind capability
// tables (see capabilities.go and the promotion tables in normalize)
// have something small and comparable to key on.
type Kind int

const (
	KindUInt Kind = iota
	KindSInt
	KindBit
	KindByte
	KindOpaque
	KindConst
	KindInstance
	KindStaticVector
	KindDynamicVector
	KindFragment
	KindEnum
	KindStruct
	KindCase
	KindDefaultCase
	KindSelect
)

func (k Kind) String() string {
	switch k {
	case KindUInt:
		return "UInt"
	case KindSInt:
		return "SInt"
	case KindBit:
		return "Bit"
	case KindByte:
		return "Byte"
	case KindOpaque:
		return "Opaque"
	case KindConst:
		return "Const"
	case KindInstance:
		return "Instance"
	case KindStaticVector:
		return "StaticVector"
	case KindDynamicVector:
		return "DynamicVector"
	case KindFragment:
		return "Fragment"
	case KindEnum:
		return "Enum"
	case KindStruct:
		return "Struct"
	case KindCase:
		return "Case"
	case KindDefaultCase:
		return "DefaultCase"
	case KindSelect:
		return "Select"
	}
	return "Unknown"
}

// UIntData and SIntData back the built-in unsigned/signed integer
// types uint1..uint64 / sint1..sint64.
type UIntData struct{ Width int }

func (UIntData) Kind() Kind { return KindUInt }

type SIntData struct{ Width int }

func (SIntData) Kind() Kind { return KindSInt }

// BitData and ByteData back the `bit` and `byte` built-ins: raw,
// uninterpreted runs of the given size annotation.
type BitData struct{}

func (BitData) Kind() Kind { return KindBit }

type ByteData struct{}

func (ByteData) Kind() Kind { return KindByte }

// OpaqueData backs `opaque`, a run of bytes/bits whose length is given
// by a separate instance argument rather than a Size annotation.
type OpaqueData struct{}

func (OpaqueData) Kind() Kind { return KindOpaque }

// ConstData backs a named constant integer.
type ConstData struct {
	Value IntElement
}

func (ConstData) Kind() Kind { return KindConst }

// InstanceData backs a reference to another named type, optionally
// parameterized, as used for struct members, vector elements and
// fragment wrappees alike.
type InstanceData struct {
	TypeName string
	Args     map[string]IntElement
}

func (InstanceData) Kind() Kind { return KindInstance }

// StaticVectorData backs `elem[n]`: a fixed-length run of elements.
// normalize replaces a vector of opaque elements with a single opaque
// Instance, so such a vector never stays a StaticVectorData.
type StaticVectorData struct {
	Element    Handle
	Length     IntElement
	ItemBased  bool // true: Length counts elements; false: counts LengthUnit
	LengthUnit Unit
}

func (StaticVectorData) Kind() Kind { return KindStaticVector }

// DynamicVectorData backs `elem<min..max>`: a run of elements prefixed
// by its own length field once normalized.
type DynamicVectorData struct {
	Element    Handle
	LengthMin  IntElement
	LengthMax  IntElement
	ItemBased  bool
	LengthUnit Unit
}

func (DynamicVectorData) Kind() Kind { return KindDynamicVector }

// FragmentData backs a Fragment wrapper: a type that folds its
// element's fields into the enclosing struct rather than nesting. The
// surface parser has no syntax for it and never builds one.
type FragmentData struct {
	Element Handle
}

func (FragmentData) Kind() Kind { return KindFragment }

// EnumItem is one member of an EnumData: a named, optionally explicit
// value, or the single allowed fallback ("distinctive enum with an
// open tail") member.
type EnumItem struct {
	Name     string
	Value    IntElement // nil when no code is given (e.g. a fallback item); the width algebra then uses the item's index
	Fallback bool
}

// EnumData backs an `enum` definition.
type EnumData struct {
	Items []EnumItem
}

func (EnumData) Kind() Kind { return KindEnum }

// StructData backs a `struct` definition: an ordered list of member
// definitions (each itself a Def, held by handle so a struct member
// that is a nested anonymous type can live in the same arena).
type StructData struct {
	Members []Handle
}

func (StructData) Kind() Kind { return KindStruct }

// CaseData backs one `case` arm of a Select: the same member list as a
// Struct, plus the distinctive-enum item names that select this arm.
type CaseData struct {
	Members []Handle
	Cond    []string
}

func (CaseData) Kind() Kind { return KindCase }

// DefaultCaseData backs the single trailing `default` arm of a Select.
type DefaultCaseData struct {
	Members []Handle
}

func (DefaultCaseData) Kind() Kind { return KindDefaultCase }

// SelectData backs a `select` definition: a discriminated union keyed
// by the value of an enclosing distinctive enum member named by
// TestSymbol, with one Case per distinguished value and a trailing
// DefaultCase (the checker rejects a Select without exactly one).
type SelectData struct {
	TestSymbol string
	Cases      []Handle
}

func (SelectData) Kind() Kind { return KindSelect }
