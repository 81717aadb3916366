package ir_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreaswalz/etplc/internal/ir"
)

func TestNewCollectionHasBuiltins(t *testing.T) {
	col := ir.NewCollection(nil)

	for w := 1; w <= 64; w++ {
		_, ok := col.ByName(fmt.Sprintf("uint%d", w))
		assert.True(t, ok, "uint%d should be a built-in", w)
		_, ok = col.ByName(fmt.Sprintf("sint%d", w))
		assert.True(t, ok, "sint%d should be a built-in", w)
	}
	for _, name := range []string{"bit", "byte", "opaque"} {
		h, ok := col.ByName(name)
		require.True(t, ok, "%s should be a built-in", name)
		assert.True(t, col.IsBuiltin(h))
	}
}

func TestAddDisambiguatesDuplicateNames(t *testing.T) {
	col := ir.NewCollection(nil)

	h1 := col.Add(ir.Def{Name: "Foo", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{}})
	h2 := col.Add(ir.Def{Name: "Foo", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{}})

	assert.Equal(t, "Foo", col.Def(h1).Name)
	assert.Equal(t, "Foo_2", col.Def(h2).Name)
}

func TestAddDisambiguatesNameCollidingWithBuiltin(t *testing.T) {
	col := ir.NewCollection(nil)
	h := col.Add(ir.Def{Name: "uint8", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{}})
	assert.Equal(t, "uint8_2", col.Def(h).Name)
}

func TestPromoteToTopLevelDisambiguatesAndOrders(t *testing.T) {
	col := ir.NewCollection(nil)
	col.Add(ir.Def{Name: "Msg", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{}})

	nested := col.AddNested(ir.Def{Name: "Msg", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{}})
	col.PromoteToTopLevel(nested)

	assert.Equal(t, "Msg_2", col.Def(nested).Name)
	assert.Contains(t, col.TypeNames(), "Msg_2")
}

func TestIsBuiltinFalseForTopLevelDefinition(t *testing.T) {
	col := ir.NewCollection(nil)
	h := col.Add(ir.Def{Name: "Foo", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{}})
	assert.False(t, col.IsBuiltin(h))
}
