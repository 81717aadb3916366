// Package normalize implements the lowering pass between the Raw and
// Normal collection states: every nested, anonymous type definition
// (a struct's inline enum, a vector's element, a dynamic vector's
// length-prefix wrapper) is either folded flat into its parent or
// promoted to a new top-level definition and replaced in place by a
// reference to it, so that every later stage (dependency sort, type-ID
// assignment, the checker) only ever has to reason about top-level
// definitions and instance references between them.
package normalize

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/andreaswalz/etplc/internal/ir"
)

// mode records why normalizeInto is being asked to build a given
// definition, since that context decides whether the result stays
// inline or gets promoted to a fresh top-level type once built.
type mode int

const (
	modeTopLevel mode = iota
	modeStructMember
	modeVectorElement
	modeSelectCase
)

// Normalize runs the lowering pass over old (expected to be in
// ir.StateRaw) and returns a new Collection in ir.StateNormal. old is
// left untouched.
func Normalize(old *ir.Collection) (*ir.Collection, error) {
	globals := old.GlobalSymbols()
	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}

	newCol := ir.NewCollection(names)

	for _, oldH := range old.Order {
		oldDef := old.Def(oldH)
		if _, err := normalizeInto(newCol, old, oldH, ir.InvalidHandle, modeTopLevel, oldDef.Name); err != nil {
			return nil, err
		}
	}

	newCol.State = ir.StateNormal
	return newCol, nil
}

// normalizeInto builds the normalized form of old's definition at oldH
// into newCol, as a child of parent (ir.InvalidHandle for top level),
// using defaultName if the original definition carries no name of its
// own (an anonymous inline member). It returns the Handle callers
// should reference: for a definition that gets promoted, this is the
// original slot, which promote rewrites in place into an Instance
// pointing at the new top-level definition it created.
func normalizeInto(newCol, old *ir.Collection, oldH, parent ir.Handle, m mode, defaultName string) (ir.Handle, error) {
	oldDef := old.Def(oldH)
	name := oldDef.Name
	if name == "" {
		name = defaultName
	}

	skeleton := ir.Def{
		Name:   name,
		Parent: parent,
		Size:   oldDef.Size,
		Flags:  oldDef.Flags,
		Params: append([]string(nil), oldDef.Params...),
		Line:   oldDef.Line,
		TypeID: -1,
	}

	var h ir.Handle
	if m == modeTopLevel {
		h = newCol.Add(skeleton)
	} else {
		h = newCol.AddNested(skeleton)
	}

	data, err := buildData(newCol, old, oldDef, h)
	if err != nil {
		return ir.InvalidHandle, err
	}
	newCol.Def(h).Data = data

	if m != modeTopLevel && shouldPromote(data.Kind(), m) {
		if _, err := promote(newCol, h); err != nil {
			return ir.InvalidHandle, err
		}
	}

	return h, nil
}

// buildData constructs the normalized DefData for oldDef, recursing
// into children (struct members, vector elements, select cases) with h
// as their parent. h already has its final Name/Size/Flags/Params set
// by the caller; only Data is still to be filled in.
func buildData(newCol, old *ir.Collection, oldDef *ir.Def, h ir.Handle) (ir.DefData, error) {
	switch data := oldDef.Data.(type) {
	case ir.UIntData, ir.SIntData, ir.BitData, ir.ByteData, ir.OpaqueData, ir.ConstData:
		return data, nil

	case ir.InstanceData:
		return ir.InstanceData{TypeName: data.TypeName, Args: copyArgs(data.Args)}, nil

	case ir.EnumData:
		return ir.EnumData{Items: append([]ir.EnumItem(nil), data.Items...)}, nil

	case ir.StaticVectorData:
		return normalizeVector(newCol, old, h, data.Element, data.Length, data.ItemBased, data.LengthUnit)

	case ir.DynamicVectorData:
		return normalizeDynamicVector(newCol, old, h, data)

	case ir.FragmentData:
		elemH, err := normalizeInto(newCol, old, data.Element, h, modeStructMember, "_W")
		if err != nil {
			return nil, err
		}
		return ir.FragmentData{Element: elemH}, nil

	case ir.StructData:
		members, err := normalizeMembers(newCol, old, h, data.Members)
		if err != nil {
			return nil, err
		}
		return ir.StructData{Members: members}, nil

	case ir.CaseData:
		members, err := normalizeMembers(newCol, old, h, data.Members)
		if err != nil {
			return nil, err
		}
		return ir.CaseData{Members: members, Cond: append([]string(nil), data.Cond...)}, nil

	case ir.DefaultCaseData:
		members, err := normalizeMembers(newCol, old, h, data.Members)
		if err != nil {
			return nil, err
		}
		return ir.DefaultCaseData{Members: members}, nil

	case ir.SelectData:
		cases := make([]ir.Handle, len(data.Cases))
		for i, caseOldH := range data.Cases {
			caseH, err := normalizeInto(newCol, old, caseOldH, h, modeSelectCase, fmt.Sprintf("_C%d", i))
			if err != nil {
				return nil, err
			}
			cases[i] = caseH
		}
		return ir.SelectData{TestSymbol: data.TestSymbol, Cases: cases}, nil
	}

	return nil, fmt.Errorf("normalize: unhandled kind for %q", oldDef.Name)
}

func normalizeMembers(newCol, old *ir.Collection, parent ir.Handle, oldMembers []ir.Handle) ([]ir.Handle, error) {
	members := make([]ir.Handle, len(oldMembers))
	for i, oldMemberH := range oldMembers {
		h, err := normalizeInto(newCol, old, oldMemberH, parent, modeStructMember, fmt.Sprintf("_M%d", i))
		if err != nil {
			return nil, err
		}
		members[i] = h
	}
	return members, nil
}

// normalizeVector builds the normalized form of a static vector. An
// element that resolves (through any alias chain) to the built-in
// opaque type collapses the whole vector into a single
// Instance-of-opaque field rather than a one-element vector of
// uninterpreted bytes; anything else gets a normalized, possibly
// promoted, element.
func normalizeVector(newCol, old *ir.Collection, parent, oldElemH ir.Handle, length ir.IntElement, itemBased bool, unit ir.Unit) (ir.DefData, error) {
	if isOpaqueElement(old, oldElemH) {
		if itemBased {
			return nil, fmt.Errorf("normalize: item-based opaque vectors are not supported")
		}
		return ir.InstanceData{
			TypeName: "opaque",
			Args:     map[string]ir.IntElement{"nbytes": length},
		}, nil
	}

	elemH, err := normalizeInto(newCol, old, oldElemH, parent, modeVectorElement, "_E")
	if err != nil {
		return nil, err
	}
	return ir.StaticVectorData{Element: elemH, Length: length, ItemBased: itemBased, LengthUnit: unit}, nil
}

// isOpaqueElement reports whether h, followed through any Instance
// alias chain in old, ultimately names the built-in opaque type. A
// vector element written as `opaque x[4]` is itself an
// InstanceData{TypeName:"opaque"} (the parser never produces a literal
// ir.OpaqueData outside the Collection's own built-in entry), so the
// check has to resolve the reference rather than type-switch on it.
func isOpaqueElement(old *ir.Collection, h ir.Handle) bool {
	target, _, err := old.FollowInstantiation(h, nil)
	if err != nil {
		return false
	}
	_, ok := old.Def(target).Data.(ir.OpaqueData)
	return ok
}

// normalizeDynamicVector lowers elem<min..max> into a synthesized
// struct: a _N field wide enough to hold max, followed by _V, a static
// vector of length _N (or, for a stream of opaque elements, an opaque
// field of _N bytes). The synthesized struct takes over h; h's Data
// becomes a StructData rather than a DynamicVectorData.
func normalizeDynamicVector(newCol, old *ir.Collection, h ir.Handle, data ir.DynamicVectorData) (ir.DefData, error) {
	width := 32
	if lit, ok := data.LengthMax.(ir.IntLiteral); ok {
		width = bitsNeeded(lit.Value)
	}

	nH := newCol.AddNested(ir.Def{
		Name:   "_N",
		Parent: h,
		TypeID: -1,
		Data:   ir.InstanceData{TypeName: fmt.Sprintf("uint%d", width)},
	})

	var vData ir.DefData
	if !data.ItemBased && isOpaqueElement(old, data.Element) {
		vData = ir.InstanceData{
			TypeName: "opaque",
			Args:     map[string]ir.IntElement{"nbytes": ir.IntSymbol{Name: "_N"}},
		}
	} else {
		vElemH, err := normalizeInto(newCol, old, data.Element, h, modeVectorElement, "_E")
		if err != nil {
			return nil, err
		}
		vData = ir.StaticVectorData{
			Element:    vElemH,
			Length:     ir.IntSymbol{Name: "_N"},
			ItemBased:  data.ItemBased,
			LengthUnit: data.LengthUnit,
		}
	}
	vH := newCol.AddNested(ir.Def{
		Name:   "_V",
		Parent: h,
		TypeID: -1,
		Data:   vData,
	})

	return ir.StructData{Members: []ir.Handle{nH, vH}}, nil
}

// bitsNeeded returns the number of bits needed to represent every
// value in [0, max], i.e. ceil(log2(max+1)), with a floor of 1.
func bitsNeeded(max int64) int {
	if max <= 0 {
		return 1
	}
	n := bits.Len64(uint64(max))
	if int64(1)<<uint(n) == max+1 {
		return n
	}
	return n
}

// alwaysLeaf holds the kinds that never need promotion regardless of
// context: they are already references or terminal scalars, not
// anonymous structure that needs a name of its own.
var alwaysLeaf = map[ir.Kind]bool{
	ir.KindInstance: true,
	ir.KindConst:    true,
	ir.KindUInt:     true,
	ir.KindSInt:     true,
	ir.KindBit:      true,
	ir.KindByte:     true,
	ir.KindOpaque:   true,
}

// keepInlineAsMember additionally stays inline when used as a struct
// or fragment member: these wrap or discriminate without needing a
// name of their own at that position.
var keepInlineAsMember = map[ir.Kind]bool{
	ir.KindFragment:     true,
	ir.KindSelect:       true,
	ir.KindStaticVector: true,
}

func shouldPromote(k ir.Kind, m mode) bool {
	if alwaysLeaf[k] {
		return false
	}
	switch m {
	case modeStructMember:
		return !keepInlineAsMember[k]
	case modeVectorElement:
		return true
	case modeSelectCase:
		return false
	}
	return false
}

// promote detaches h's current Data into a brand-new top-level
// definition (named by its chained path and parameterized by its
// brokenRefs — the free symbols it required from its old surroundings
// whose binding scope is not the Collection itself, per spec.md
// §4.2's makeField step 2), then rewrites h in place into an Instance
// referencing that new definition, passing each broken symbol through
// as an argument of the same name. Symbols already visible everywhere
// (global symbols, top-level Consts) need no parameter: the promoted
// definition is itself top-level and sees them directly. A symbolic
// Size is excluded too: it stays on the Instance wrapper at h, not on
// the promoted definition, which never reads it.
func promote(newCol *ir.Collection, h ir.Handle) (ir.Handle, error) {
	// RequiredSymbols(h) as stored would also pull in whatever h's own
	// Size annotation references; that symbol is staying right here on
	// the Instance wrapper, not moving to the promoted definition's
	// Data, so it's excluded unless Data needs it too (i.e. the same
	// symbol appears in both, in which case Data still requires it).
	d := newCol.Def(h)
	savedSize := d.Size
	d.Size = nil
	required := newCol.RequiredSymbols(h)
	d.Size = savedSize

	collectionKnown := newCol.CollectionKnownSymbols()
	params := make([]string, 0, len(required))
	for name := range required {
		if _, ok := collectionKnown[name]; ok {
			continue
		}
		params = append(params, name)
	}
	sort.Strings(params)

	chainedName := newCol.ChainedName(h)
	original := *newCol.Def(h)

	promoted := newCol.Add(ir.Def{
		Name:   chainedName,
		Parent: ir.InvalidHandle,
		Params: params,
		Line:   original.Line,
		TypeID: -1,
		Data:   original.Data,
	})

	args := make(map[string]ir.IntElement, len(params))
	for _, p := range params {
		args[p] = ir.IntSymbol{Name: p}
	}

	*newCol.Def(h) = ir.Def{
		Name:   original.Name,
		Parent: original.Parent,
		Size:   original.Size,
		Flags:  original.Flags,
		Line:   original.Line,
		TypeID: -1,
		Data:   ir.InstanceData{TypeName: chainedName, Args: args},
	}

	return promoted, nil
}

func copyArgs(args map[string]ir.IntElement) map[string]ir.IntElement {
	if args == nil {
		return nil
	}
	out := make(map[string]ir.IntElement, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}
