package depsort_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreaswalz/etplc/internal/depsort"
	"github.com/andreaswalz/etplc/internal/ir"
)

func instMember(col *ir.Collection, name, typeName string) ir.Handle {
	return col.AddNested(ir.Def{Name: name, Parent: ir.InvalidHandle, TypeID: -1, Data: ir.InstanceData{TypeName: typeName}})
}

func TestSortOrdersDependenciesBeforeDependents(t *testing.T) {
	col := ir.NewCollection(nil)
	// B is added before A, but A depends on B's name through its member.
	col.Add(ir.Def{Name: "B", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{
		Members: []ir.Handle{instMember(col, "x", "uint8")},
	}})
	col.Add(ir.Def{Name: "A", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{
		Members: []ir.Handle{instMember(col, "b", "B")},
	}})

	require.NoError(t, depsort.Sort(col))
	require.Len(t, col.Order, 2)

	bH, _ := col.ByName("B")
	aH, _ := col.ByName("A")
	bIdx, aIdx := indexOf(col.Order, bH), indexOf(col.Order, aH)
	assert.Less(t, bIdx, aIdx, "B must be ordered before A since A depends on it")
}

func TestSortAssignsContiguousTypeIDsStartingAtBase(t *testing.T) {
	col := ir.NewCollection(nil)
	col.Add(ir.Def{Name: "A", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{}})
	col.Add(ir.Def{Name: "B", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{}})
	col.Add(ir.Def{Name: "C", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{}})

	require.NoError(t, depsort.Sort(col))
	assert.Equal(t, ir.StateIdentified, col.State)

	ids := make(map[int]bool)
	for _, h := range col.Order {
		id := col.Def(h).TypeID
		assert.GreaterOrEqual(t, id, 100)
		ids[id] = true
	}
	assert.Equal(t, map[int]bool{100: true, 101: true, 102: true}, ids, "the three definitions must receive the contiguous IDs 100, 101, 102")
}

func TestSortDetectsCycle(t *testing.T) {
	col := ir.NewCollection(nil)
	aH := col.Add(ir.Def{Name: "A", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{
		Members: []ir.Handle{instMember(col, "b", "B")},
	}})
	col.Add(ir.Def{Name: "B", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{
		Members: []ir.Handle{instMember(col, "a", "A")},
	}})
	_ = aH

	err := depsort.Sort(col)
	require.Error(t, err)
	var cycleErr *depsort.CycleError
	assert.ErrorAs(t, err, &cycleErr)
}

func TestSortRejectsUnknownType(t *testing.T) {
	col := ir.NewCollection(nil)
	col.Add(ir.Def{Name: "A", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{
		Members: []ir.Handle{instMember(col, "x", "Nonexistent")},
	}})

	err := depsort.Sort(col)
	require.Error(t, err)
	var unknownErr *depsort.UnknownTypeError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "Nonexistent", unknownErr.TypeName)
}

func TestSortAcceptsBuiltinReferences(t *testing.T) {
	col := ir.NewCollection(nil)
	col.Add(ir.Def{Name: "A", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{
		Members: []ir.Handle{instMember(col, "x", "uint8")},
	}})

	assert.NoError(t, depsort.Sort(col))
}

func indexOf(handles []ir.Handle, h ir.Handle) int {
	for i, candidate := range handles {
		if candidate == h {
			return i
		}
	}
	return -1
}
