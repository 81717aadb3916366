package width

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andreaswalz/etplc/internal/ir"
)

// Features walks root (expected to already be ir.StateValidated) and
// returns the feature-path set the code generator's FeatureEmitter
// needs, each entry in the raw `<path>[@<property>]` form and sorted
// by (property, path) as spec'd: every concrete member contributes its
// own disambiguated path, a dynamic-type-discriminated member
// additionally contributes one `<name>:<item>` path per possible item,
// a vector whose element is itself a Struct or Enum expands into a
// `%`-prefixed block of the element's own sub-features, and any member
// whose size annotation is symbolic rather than a literal contributes the synthetic
// `<path>@.overflow` / `<path>@.underflow` pair. The code generator's
// makeFeatures swaps this to the property-first `<property>@<path>`
// form it actually emits.
func Features(col *ir.Collection, root ir.Handle) []string {
	set := map[string]bool{}

	target, _, err := col.FollowInstantiation(root, nil)
	if err != nil {
		target = root
	}
	addOwnDynamicTypes(col, target, col.Def(root).Name, set)

	switch data := col.Def(target).Data.(type) {
	case ir.StructData:
		walkMembers(col, data.Members, "", set)
	case ir.EnumData:
		// handled by addOwnDynamicTypes above
	}

	return sortFeatures(set)
}

// addOwnDynamicTypes emits the `<name>:<item>` feature for every
// dynamic-type choice h can present as, whether h is itself an Enum or
// a Struct discriminated by one or more distinctive enum members.
func addOwnDynamicTypes(col *ir.Collection, h ir.Handle, name string, set map[string]bool) {
	switch data := col.Def(h).Data.(type) {
	case ir.EnumData:
		for _, item := range data.Items {
			set[fmt.Sprintf("%s:%s", name, item.Name)] = true
		}
	default:
		_ = data
		dtns := DynamicTypeNames(col, h)
		if len(dtns) > 0 && !(len(dtns) == 1 && dtns[0] == col.Def(h).Name) {
			for _, dtn := range dtns {
				set[fmt.Sprintf("%s:%s", name, dtn)] = true
			}
		}
	}
}

// walkMembers adds every member's own path (and any decorations its
// resolved type warrants) into set, then recurses into compound
// members. prefix is the "/"-joined chain of enclosing member names;
// "" at the top of a root Struct.
func walkMembers(col *ir.Collection, members []ir.Handle, prefix string, set map[string]bool) {
	for _, m := range members {
		md := col.Def(m)
		path := md.Name
		if prefix != "" {
			path = prefix + "/" + md.Name
		}

		if isDynamicLength(md) {
			set[path+"@.overflow"] = true
			set[path+"@.underflow"] = true
		}

		if sel, ok := md.Data.(ir.SelectData); ok {
			walkSelect(col, sel, prefix, set)
			continue
		}

		set[path] = true

		target, _, err := col.FollowInstantiation(m, nil)
		if err != nil {
			continue
		}

		switch data := col.Def(target).Data.(type) {
		case ir.StructData:
			if !md.Flags.Has(ir.FlagDistinctive) {
				addOwnDynamicTypes(col, target, path, set)
				walkMembers(col, data.Members, path, set)
			}
		case ir.EnumData:
			if !md.Flags.Has(ir.FlagDistinctive) {
				addOwnDynamicTypes(col, target, path, set)
			}
		case ir.StaticVectorData:
			expandVectorElement(col, data.Element, path, set)
		}
	}
}

// walkSelect folds a Select's cases into the enclosing path: each
// member of a Case is reachable directly at the enclosing path (per
// spec, disambiguated by the distinctive enum item name only when a
// same-named member already exists across cases).
func walkSelect(col *ir.Collection, sel ir.SelectData, prefix string, set map[string]bool) {
	seen := map[string]bool{}
	for _, caseH := range sel.Cases {
		cd := col.Def(caseH)
		var members []ir.Handle
		var label string
		switch c := cd.Data.(type) {
		case ir.CaseData:
			members = c.Members
			if len(c.Cond) > 0 {
				label = c.Cond[0]
			}
		case ir.DefaultCaseData:
			members = c.Members
			label = "default"
		}
		for _, m := range members {
			md := col.Def(m)
			if seen[md.Name] {
				walkMembers(col, []ir.Handle{m}, prefix+"/"+label, set)
				continue
			}
			seen[md.Name] = true
			walkMembers(col, []ir.Handle{m}, prefix, set)
		}
	}
}

// expandVectorElement implements the "struct/enum-valued vector
// element" rule: the element's dynamic types are emitted at path with
// a trailing `%`, and every sub-feature of the element is re-rooted
// under that prefix.
func expandVectorElement(col *ir.Collection, elemH ir.Handle, path string, set map[string]bool) {
	target, _, err := col.FollowInstantiation(elemH, nil)
	if err != nil {
		return
	}

	switch data := col.Def(target).Data.(type) {
	case ir.EnumData:
		for _, item := range data.Items {
			set[fmt.Sprintf("%s:%s%%", path, item.Name)] = true
		}
	case ir.StructData:
		dtns := DynamicTypeNames(col, target)
		if len(dtns) == 0 {
			dtns = []string{col.Def(target).Name}
		}
		for _, dtn := range dtns {
			prefix := fmt.Sprintf("%s:%s%%", path, dtn)
			set[prefix] = true
			sub := map[string]bool{}
			walkMembers(col, data.Members, "", sub)
			for f := range sub {
				set[prefix+"/"+f] = true
			}
		}
	}
}

// isDynamicLength reports whether md's own size annotation is
// symbolic rather than a literal, i.e. its wire length is not known
// until the value is actually parsed and can therefore overflow or
// underflow a configured bound.
func isDynamicLength(md *ir.Def) bool {
	if md.Size == nil {
		return false
	}
	_, literal := md.Size.Length.(ir.IntLiteral)
	return !literal
}

// sortFeatures orders features by (property, path): a plain path
// feature has an empty property and sorts before any `prop@path`
// feature naming the same path, matching the "explicit last = 0"
// variant of the original makeFeatures sorter spec.md's Design Notes
// call out as canonical.
func sortFeatures(set map[string]bool) []string {
	type kv struct{ prop, path, raw string }
	entries := make([]kv, 0, len(set))
	for f := range set {
		prop, path := "", f
		if idx := strings.Index(f, "@"); idx >= 0 {
			path, prop = f[:idx], f[idx+1:]
		}
		entries = append(entries, kv{prop: prop, path: path, raw: f})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].prop != entries[j].prop {
			return entries[i].prop < entries[j].prop
		}
		return entries[i].path < entries[j].path
	})
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.raw
	}
	return out
}
