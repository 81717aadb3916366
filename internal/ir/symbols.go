package ir

// Scope identifies what bound a known symbol: either the Collection
// itself (a global symbol configured from outside, e.g. a project
// setting or a command-line instance parameter) or a specific Def
// (a struct member, enum, or instantiated integer type whose own name
// is usable as a value by later siblings).
type Scope struct {
	IsCollection bool
	Handle       Handle
}

func mergeSymbols(dst, src map[string]bool) {
	for k := range src {
		dst[k] = true
	}
}

// RequiredSymbols returns the names h needs bound in its enclosing
// scope to make sense: names referenced by its Size annotation, its
// own data (a Const's value, an Instance's arguments, a vector's
// length bounds), and, for container kinds, whatever its members
// require that isn't satisfied by an earlier sibling's KnownSymbols.
func (c *Collection) RequiredSymbols(h Handle) map[string]bool {
	d := c.Def(h)
	req := map[string]bool{}

	if d.Size != nil {
		mergeSymbols(req, d.Size.Length.RequiredSymbols())
	}

	switch data := d.Data.(type) {
	case ConstData:
		mergeSymbols(req, data.Value.RequiredSymbols())
	case InstanceData:
		for _, v := range data.Args {
			mergeSymbols(req, v.RequiredSymbols())
		}
	case StaticVectorData:
		mergeSymbols(req, data.Length.RequiredSymbols())
		mergeSymbols(req, c.RequiredSymbols(data.Element))
	case DynamicVectorData:
		mergeSymbols(req, data.LengthMin.RequiredSymbols())
		mergeSymbols(req, data.LengthMax.RequiredSymbols())
		mergeSymbols(req, c.RequiredSymbols(data.Element))
	case FragmentData:
		mergeSymbols(req, c.RequiredSymbols(data.Element))
	case StructData:
		mergeSymbols(req, c.requiredSymbolsOfMembers(data.Members))
	case CaseData:
		mergeSymbols(req, c.requiredSymbolsOfMembers(data.Members))
	case DefaultCaseData:
		mergeSymbols(req, c.requiredSymbolsOfMembers(data.Members))
	case SelectData:
		req[data.TestSymbol] = true
		for _, caseH := range data.Cases {
			mergeSymbols(req, c.RequiredSymbols(caseH))
		}
	}

	return req
}

// requiredSymbolsOfMembers folds a member list left to right: a
// member's requirement only counts if no earlier sibling's
// KnownSymbols already satisfies it, matching the original compiler's
// member-by-member scope accumulation.
func (c *Collection) requiredSymbolsOfMembers(members []Handle) map[string]bool {
	req := map[string]bool{}
	known := map[string]bool{}
	for _, m := range members {
		for name := range c.RequiredSymbols(m) {
			if !known[name] {
				req[name] = true
			}
		}
		for name := range c.KnownSymbols(m) {
			known[name] = true
		}
	}
	return req
}

// KnownSymbols returns the symbols h itself makes available to later
// siblings: its own Name (for every kind except Fragment), plus, for
// Fragment and Struct, whatever its folded or nested members expose in
// turn.
func (c *Collection) KnownSymbols(h Handle) map[string]Scope {
	d := c.Def(h)
	known := map[string]Scope{}

	switch data := d.Data.(type) {
	case FragmentData:
		for name, scope := range c.KnownSymbols(data.Element) {
			known[name] = scope
		}
	case StructData:
		known[d.Name] = Scope{Handle: h}
		for _, m := range data.Members {
			for name, scope := range c.KnownSymbols(m) {
				known[name] = scope
			}
		}
	default:
		known[d.Name] = Scope{Handle: h}
	}

	return known
}

// CollectionKnownSymbols returns the names visible everywhere in the
// collection without needing to be passed down as a parameter: the
// externally configured global symbols, plus the name of every
// top-level Const definition, matching §4.1's "union of its registered
// global symbols and the names of every Const definition."
func (c *Collection) CollectionKnownSymbols() map[string]Scope {
	known := make(map[string]Scope, len(c.globalSymbols))
	for name := range c.globalSymbols {
		known[name] = Scope{IsCollection: true}
	}
	for _, h := range c.Order {
		if _, ok := c.Def(h).Data.(ConstData); ok {
			known[c.Def(h).Name] = Scope{IsCollection: true, Handle: h}
		}
	}
	return known
}

// UndefinedSymbols returns the subset of required that is not present
// in known, i.e. the symbol-closure violations the checker reports.
func UndefinedSymbols(required map[string]bool, known map[string]Scope) []string {
	var undefined []string
	for name := range required {
		if _, ok := known[name]; !ok {
			undefined = append(undefined, name)
		}
	}
	return undefined
}
