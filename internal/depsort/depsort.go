// Package depsort implements the dependency-ordering and type-ID
// assignment pass between the Normal and Sorted/Identified collection
// states: every top-level definition is reordered so that anything it
// depends on (by Instance reference) comes first, then each is handed
// a monotonically increasing wire-format type ID.
package depsort

import (
	"fmt"
	"sort"

	"github.com/andreaswalz/etplc/internal/ir"
)

// firstTypeID mirrors the base the original compiler starts numbering
// user-defined types from; IDs below it are implicitly reserved for
// built-ins, which are never assigned one.
const firstTypeID = 100

// UnknownTypeError reports a type name referenced by some definition
// that does not resolve to any built-in or top-level definition.
type UnknownTypeError struct {
	Definition string
	TypeName   string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("depsort: %q references unknown type %q", e.Definition, e.TypeName)
}

// CycleError reports that the remaining unsorted definitions form a
// dependency cycle: none of them has every dependency already placed.
type CycleError struct {
	Remaining []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("depsort: dependency cycle among %v", e.Remaining)
}

// Sort reorders col.Order into dependency order (a type that names
// another in an Instance comes after it) and assigns each top-level
// definition's TypeID, starting at firstTypeID. col is expected to be
// in ir.StateNormal; on success its state becomes ir.StateIdentified.
func Sort(col *ir.Collection) error {
	if err := checkUnknownTypes(col); err != nil {
		return err
	}

	ordered, err := topologicalSort(col)
	if err != nil {
		return err
	}
	col.Order = ordered
	col.State = ir.StateSorted

	nextID := firstTypeID
	for _, h := range col.Order {
		col.Def(h).TypeID = nextID
		nextID++
	}
	col.State = ir.StateIdentified

	return nil
}

// checkUnknownTypes verifies every type name any top-level definition
// depends on resolves to something in the collection.
func checkUnknownTypes(col *ir.Collection) error {
	known := make(map[string]bool)
	for _, name := range col.TypeNames() {
		known[name] = true
	}
	for _, h := range col.Order {
		d := col.Def(h)
		for name := range col.DependsOnTypes(h) {
			if known[name] {
				continue
			}
			if _, ok := col.ByName(name); ok {
				continue
			}
			return &UnknownTypeError{Definition: d.Name, TypeName: name}
		}
	}
	return nil
}

// topologicalSort runs a fixed-point algorithm: repeatedly scan the
// remaining definitions in their current order and place the first one
// whose every type dependency is already placed, restarting the scan
// from the front each time something is placed. This gives a stable,
// deterministic order (ties broken by original position) rather than
// an arbitrary one, matching the original compiler's sort().
func topologicalSort(col *ir.Collection) ([]ir.Handle, error) {
	remaining := append([]ir.Handle(nil), col.Order...)
	placed := make(map[string]bool)
	result := make([]ir.Handle, 0, len(remaining))

	for len(remaining) > 0 {
		progressed := false

		for i, h := range remaining {
			deps := col.DependsOnTypes(h)
			if allSatisfied(deps, placed, col) {
				result = append(result, h)
				placed[col.Def(h).Name] = true
				remaining = append(remaining[:i], remaining[i+1:]...)
				progressed = true
				break
			}
		}

		if !progressed {
			names := make([]string, len(remaining))
			for i, h := range remaining {
				names[i] = col.Def(h).Name
			}
			sort.Strings(names)
			return nil, &CycleError{Remaining: names}
		}
	}

	return result, nil
}

// allSatisfied reports whether every name in deps is either a built-in
// type or a definition already placed in the output order.
func allSatisfied(deps map[string]bool, placed map[string]bool, col *ir.Collection) bool {
	for name := range deps {
		if placed[name] {
			continue
		}
		if h, ok := col.ByName(name); ok && col.IsBuiltin(h) {
			continue
		}
		return false
	}
	return true
}
