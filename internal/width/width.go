// Package width implements the bit-width, dynamic-type-name and
// feature-path algebra run once a collection reaches ir.StateValidated:
// RawBitWidth computes how many bits a definition occupies on the
// wire for a given set of substituted arguments and select-case
// choices, DynamicTypeNames enumerates the composite names a
// definition can take on (the cartesian product of its distinctive
// enums' item names), and Features walks a root definition into the
// flat list of conditional-presence paths the code generator needs.
package width

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"

	"github.com/andreaswalz/etplc/internal/ir"
)

// Selections maps a Select's TestSymbol name to the case name chosen
// for that occurrence, letting RawBitWidth pick a single concrete case
// out of a union rather than reasoning about every arm at once.
type Selections map[string]string

// RawBitWidth returns the number of bits h occupies on the wire, given
// already-substituted instance arguments and select choices. It
// returns an error if it depends on a Select whose TestSymbol has no
// entry in selections.
func RawBitWidth(col *ir.Collection, h ir.Handle, args map[string]ir.IntElement, sel Selections) (int64, error) {
	d := col.Def(h)

	if d.Size != nil {
		n, err := literalValue(substitute(col, d.Size.Length, args))
		if err != nil {
			return 0, err
		}
		if d.Size.Unit == ir.UnitBytes {
			n *= 8
		}
		return n, nil
	}

	switch data := d.Data.(type) {
	case ir.UIntData:
		return int64(data.Width), nil
	case ir.SIntData:
		return int64(data.Width), nil
	case ir.BitData:
		return 1, nil
	case ir.ByteData:
		return 8, nil
	case ir.OpaqueData:
		return opaqueWidth(col, d.Name, args)
	case ir.ConstData:
		return 0, nil

	case ir.InstanceData:
		target, targetArgs, err := col.FollowInstantiation(h, args)
		if err != nil {
			return 0, err
		}
		if target == h {
			return 0, fmt.Errorf("width: %q did not resolve to a concrete type", d.Name)
		}
		return RawBitWidth(col, target, targetArgs, sel)

	case ir.StaticVectorData:
		elemWidth, err := RawBitWidth(col, data.Element, args, sel)
		if err != nil {
			return 0, err
		}
		n, err := literalValue(substitute(col, data.Length, args))
		if err != nil {
			return 0, err
		}
		if data.ItemBased {
			return n * elemWidth, nil
		}
		if data.LengthUnit == ir.UnitBytes {
			return n * 8, nil
		}
		return n, nil

	case ir.DynamicVectorData:
		return 0, fmt.Errorf("width: %q should have been lowered by normalize before width is computed", d.Name)

	case ir.FragmentData:
		return RawBitWidth(col, data.Element, args, sel)

	case ir.EnumData:
		return enumWidth(data), nil

	case ir.StructData:
		return sumMembers(col, data.Members, args, sel)
	case ir.CaseData:
		return sumMembers(col, data.Members, args, sel)
	case ir.DefaultCaseData:
		return sumMembers(col, data.Members, args, sel)

	case ir.SelectData:
		chosen, ok := sel[data.TestSymbol]
		if !ok {
			return 0, fmt.Errorf("width: select on %q has no chosen case in this context", data.TestSymbol)
		}
		for _, caseH := range data.Cases {
			cd := col.Def(caseH)
			if cd.Name == chosen {
				return RawBitWidth(col, caseH, args, sel)
			}
			if _, isDefault := cd.Data.(ir.DefaultCaseData); isDefault {
				return RawBitWidth(col, caseH, args, sel)
			}
		}
		return 0, fmt.Errorf("width: select on %q has no case named %q and no default", data.TestSymbol, chosen)
	}

	return 0, fmt.Errorf("width: unhandled kind for %q", d.Name)
}

func sumMembers(col *ir.Collection, members []ir.Handle, args map[string]ir.IntElement, sel Selections) (int64, error) {
	var total int64
	for _, m := range members {
		w, err := RawBitWidth(col, m, args, sel)
		if err != nil {
			return 0, err
		}
		total += w
	}
	return total, nil
}

// enumWidth is the smallest width that holds the largest item value,
// where an item with no explicit value counts as its index in Items
// (so three implicit items 0, 1, 2 need 2 bits).
func enumWidth(data ir.EnumData) int64 {
	var max int64
	for i, item := range data.Items {
		v := int64(i)
		if lit, ok := item.Value.(ir.IntLiteral); ok {
			v = lit.Value
		}
		if v > max {
			max = v
		}
	}
	return int64(bitsNeeded(max))
}

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

// substitute resolves a top-level IntSymbol against args, falling back
// to a Const definition of the same name in col (a const-length vector
// names a symbol no caller ever passes as an arg), and leaves anything
// else (a literal, or a symbol bound by neither) untouched.
func substitute(col *ir.Collection, e ir.IntElement, args map[string]ir.IntElement) ir.IntElement {
	sym, ok := e.(ir.IntSymbol)
	if !ok {
		return e
	}
	if v, ok := args[sym.Name]; ok {
		return substitute(col, v, args)
	}
	if h, ok := col.ByName(sym.Name); ok {
		if c, ok := col.Def(h).Data.(ir.ConstData); ok {
			return substitute(col, c.Value, args)
		}
	}
	return e
}

// opaqueWidth computes 8*nbytes + nbits for an opaque instance's
// resolved args, matching original_source/core.py's
// OpaqueDef.getRawBitWidth: an error only when neither argument is
// present at all, not merely when one of them is.
func opaqueWidth(col *ir.Collection, name string, args map[string]ir.IntElement) (int64, error) {
	nbytesArg, hasNbytes := args["nbytes"]
	nbitsArg, hasNbits := args["nbits"]
	if !hasNbytes && !hasNbits {
		return 0, fmt.Errorf("width: opaque %q has no size annotation", name)
	}

	var nbytes, nbits int64
	if hasNbytes {
		v, err := literalValue(substitute(col, nbytesArg, args))
		if err != nil {
			return 0, err
		}
		nbytes = v
	}
	if hasNbits {
		v, err := literalValue(substitute(col, nbitsArg, args))
		if err != nil {
			return 0, err
		}
		nbits = v
	}
	return 8*nbytes + nbits, nil
}

func literalValue(e ir.IntElement) (int64, error) {
	lit, ok := e.(ir.IntLiteral)
	if !ok {
		return 0, fmt.Errorf("width: %v did not resolve to a literal value", e)
	}
	return lit.Value, nil
}

// DynamicTypeNames enumerates the composite names h can present as at
// runtime: the cartesian product of the item names of every
// distinctive enum reachable from h, each combination joined with "+".
// A definition with no distinctive enum anywhere in it has exactly one
// dynamic type name, itself.
func DynamicTypeNames(col *ir.Collection, h ir.Handle) []string {
	enumNameSets := distinctiveEnumNames(col, h)
	if len(enumNameSets) == 0 {
		return []string{col.Def(h).Name}
	}

	combos := [][]string{{}}
	for _, names := range enumNameSets {
		var next [][]string
		for _, combo := range combos {
			for _, n := range names {
				next = append(next, append(append([]string(nil), combo...), n))
			}
		}
		combos = next
	}

	out := make([]string, len(combos))
	for i, combo := range combos {
		out[i] = strings.Join(combo, "+")
	}
	sort.Strings(out)
	return out
}

func distinctiveEnumNames(col *ir.Collection, h ir.Handle) [][]string {
	d := col.Def(h)
	var sets [][]string

	switch data := d.Data.(type) {
	case ir.EnumData:
		if d.Flags.Has(ir.FlagDistinctive) {
			names := make([]string, 0, len(data.Items))
			for _, item := range data.Items {
				names = append(names, item.Name)
			}
			sets = append(sets, names)
		}
	case ir.InstanceData:
		// After normalize, a distinctive struct member is an Instance
		// referencing the promoted Enum rather than holding EnumData
		// directly; the flag lives on this member, the item names on
		// the type it resolves to.
		if d.Flags.Has(ir.FlagDistinctive) {
			target, _, err := col.FollowInstantiation(h, nil)
			if err == nil {
				if enumData, ok := col.Def(target).Data.(ir.EnumData); ok {
					names := make([]string, 0, len(enumData.Items))
					for _, item := range enumData.Items {
						names = append(names, item.Name)
					}
					sets = append(sets, names)
				}
			}
		}
	case ir.StructData:
		for _, m := range data.Members {
			sets = append(sets, distinctiveEnumNames(col, m)...)
		}
	case ir.CaseData:
		for _, m := range data.Members {
			sets = append(sets, distinctiveEnumNames(col, m)...)
		}
	case ir.DefaultCaseData:
		for _, m := range data.Members {
			sets = append(sets, distinctiveEnumNames(col, m)...)
		}
	case ir.FragmentData:
		sets = append(sets, distinctiveEnumNames(col, data.Element)...)
	case ir.SelectData:
		for _, c := range data.Cases {
			sets = append(sets, distinctiveEnumNames(col, c)...)
		}
	}

	return sets
}
