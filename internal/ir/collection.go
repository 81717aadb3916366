package ir

import "fmt"

// State is the lifecycle stage of a Collection, following the
// Raw -> Normal -> Sorted -> Identified -> Validated progression:
// parsed definitions are normalized (nested types promoted to top
// level), the result is dependency-sorted, each top-level definition
// gets a TypeID, and finally the whole collection is checked.
type State int

const (
	StateRaw State = iota
	StateNormal
	StateSorted
	StateIdentified
	StateValidated
)

func (s State) String() string {
	switch s {
	case StateRaw:
		return "Raw"
	case StateNormal:
		return "Normal"
	case StateSorted:
		return "Sorted"
	case StateIdentified:
		return "Identified"
	case StateValidated:
		return "Validated"
	}
	return "Unknown"
}

// firstTypeID is the first TypeID handed out to a user-defined,
// top-level definition. IDs below it are reserved for built-ins,
// which never receive one (their TypeID stays -1).
const firstTypeID = 100

// Collection owns a flat arena of Def values plus the ordered list of
// top-level definitions. Order is tracked separately from arena index
// so that dependency sort can reorder top-level definitions by
// reassigning Order without moving any Def a nested Handle points at.
type Collection struct {
	defs  []Def
	Order []Handle

	globalSymbols map[string]bool

	// builtins maps a built-in type name (uint8, sint3, bit, byte,
	// opaque) to its Handle so normalize and the parser can resolve
	// references without a linear scan.
	builtins map[string]Handle

	State State
}

// NewCollection creates an empty Collection pre-populated with the
// built-in types (uint1..uint64, sint1..sint64, bit, byte, opaque) and
// the given set of externally-configured global symbol names (spec.md
// ProjectSettings and command-line instance parameters bind through
// here).
func NewCollection(globalSymbols []string) *Collection {
	c := &Collection{
		globalSymbols: make(map[string]bool, len(globalSymbols)),
		builtins:      make(map[string]Handle),
		State:         StateRaw,
	}
	for _, name := range globalSymbols {
		c.globalSymbols[name] = true
	}
	c.addBuiltins()
	return c
}

func (c *Collection) addBuiltins() {
	for w := 1; w <= 64; w++ {
		c.addBuiltin(fmt.Sprintf("uint%d", w), UIntData{Width: w})
		c.addBuiltin(fmt.Sprintf("sint%d", w), SIntData{Width: w})
	}
	c.addBuiltin("bit", BitData{})
	c.addBuiltin("byte", ByteData{})
	c.addBuiltin("opaque", OpaqueData{})
}

func (c *Collection) addBuiltin(name string, data DefData) {
	h := c.push(Def{Name: name, Parent: InvalidHandle, TypeID: -1, Data: data})
	c.builtins[name] = h
	// Built-ins are resolvable by name but are not part of the ordered,
	// sorted top-level definition list: they never need a TypeID and
	// dependency sort must not see them as sortable nodes.
}

func (c *Collection) push(d Def) Handle {
	h := NewHandle(len(c.defs))
	c.defs = append(c.defs, d)
	return h
}

// Add appends a new top-level definition, disambiguating its Name
// against every name already visible in the collection (built-ins,
// other top-level definitions, and global symbols) by appending _2,
// _3, ... as needed, and returns its Handle.
func (c *Collection) Add(d Def) Handle {
	d.Name = c.uniqueName(d.Name)
	h := c.push(d)
	c.Order = append(c.Order, h)
	return h
}

// AddNested appends a definition that is not itself top level (a
// struct member, enum item host, vector element, ...) without adding
// it to Order; the caller links it in via its own Handle list (e.g.
// StructData.Members).
func (c *Collection) AddNested(d Def) Handle {
	return c.push(d)
}

// PromoteToTopLevel disambiguates h's Name against every name already
// visible in the collection and appends it to Order. It is for a
// definition the parser built with AddNested because its final
// top-level identity (a plain type, or a vector/size wrapper around
// one) wasn't known until the trailing extensions after its name had
// been parsed.
func (c *Collection) PromoteToTopLevel(h Handle) {
	d := c.Def(h)
	d.Name = c.uniqueName(d.Name)
	c.Order = append(c.Order, h)
}

func (c *Collection) uniqueName(base string) string {
	if !c.nameTaken(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !c.nameTaken(candidate) {
			return candidate
		}
	}
}

func (c *Collection) nameTaken(name string) bool {
	if _, ok := c.builtins[name]; ok {
		return true
	}
	if c.globalSymbols[name] {
		return true
	}
	for _, h := range c.Order {
		if c.defs[h.Index()].Name == name {
			return true
		}
	}
	return false
}

// Def returns the definition a Handle refers to.
func (c *Collection) Def(h Handle) *Def {
	return &c.defs[h.Index()]
}

// IsBuiltin reports whether h names one of the built-in types.
func (c *Collection) IsBuiltin(h Handle) bool {
	d := c.Def(h)
	return d.Parent == InvalidHandle && d.TypeID == -1 && !c.inOrder(h)
}

func (c *Collection) inOrder(h Handle) bool {
	for _, o := range c.Order {
		if o == h {
			return true
		}
	}
	return false
}

// ByName resolves a type name to a Handle, searching built-ins first
// and then top-level definitions, matching the original compiler's
// name resolution order.
func (c *Collection) ByName(name string) (Handle, bool) {
	if h, ok := c.builtins[name]; ok {
		return h, true
	}
	for _, h := range c.Order {
		if c.defs[h.Index()].Name == name {
			return h, true
		}
	}
	return InvalidHandle, false
}

// GlobalSymbols returns the set of externally configured global symbol
// names (as opposed to symbols bound by some Def).
func (c *Collection) GlobalSymbols() map[string]bool {
	return c.globalSymbols
}

// TypeNames returns the names of every top-level, non-built-in
// definition in Order.
func (c *Collection) TypeNames() []string {
	names := make([]string, len(c.Order))
	for i, h := range c.Order {
		names[i] = c.defs[h.Index()].Name
	}
	return names
}

// Len reports the arena size, including built-ins and nested defs.
func (c *Collection) Len() int {
	return len(c.defs)
}
