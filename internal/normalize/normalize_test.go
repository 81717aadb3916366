package normalize_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreaswalz/etplc/internal/codegen"
	"github.com/andreaswalz/etplc/internal/ir"
	"github.com/andreaswalz/etplc/internal/normalize"
)

// uint8Ref builds an InstanceData reference to the built-in uint8, as
// the parser would produce for a plain `uint8 name;` member.
func uint8Ref(col *ir.Collection, name string) ir.Handle {
	return col.AddNested(ir.Def{Name: name, Parent: ir.InvalidHandle, TypeID: -1, Data: ir.InstanceData{TypeName: "uint8"}})
}

func dump(t *testing.T, col *ir.Collection) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, codegen.TreeDumpEmitter{}.EmitParserTree(&buf, col))
	return buf.String()
}

func TestNormalizePromotesNestedEnumToTopLevel(t *testing.T) {
	col := ir.NewCollection(nil)
	enumMember := col.AddNested(ir.Def{
		Name: "color", Parent: ir.InvalidHandle, TypeID: -1,
		Data: ir.EnumData{Items: []ir.EnumItem{{Name: "red"}, {Name: "green"}}},
	})
	x := uint8Ref(col, "x")
	col.Add(ir.Def{Name: "S", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{Members: []ir.Handle{enumMember, x}}})

	newCol, err := normalize.Normalize(col)
	require.NoError(t, err)
	assert.Equal(t, ir.StateNormal, newCol.State)

	sH, ok := newCol.ByName("S")
	require.True(t, ok)
	sData := newCol.Def(sH).Data.(ir.StructData)
	require.Len(t, sData.Members, 2)

	colorMember := newCol.Def(sData.Members[0])
	assert.Equal(t, "color", colorMember.Name)
	inst, ok := colorMember.Data.(ir.InstanceData)
	require.True(t, ok, "promoted enum member should become an Instance reference")
	assert.Equal(t, "S_color", inst.TypeName)

	promotedH, ok := newCol.ByName("S_color")
	require.True(t, ok, "the enum should have been promoted to a top-level definition named by its chained path")
	_, isEnum := newCol.Def(promotedH).Data.(ir.EnumData)
	assert.True(t, isEnum)
}

func TestNormalizeOpaqueVectorCollapsesToSingleField(t *testing.T) {
	col := ir.NewCollection(nil)
	opaqueElem := col.AddNested(ir.Def{Parent: ir.InvalidHandle, TypeID: -1, Data: ir.InstanceData{TypeName: "opaque"}})
	vec := col.AddNested(ir.Def{
		Name: "payload", Parent: ir.InvalidHandle, TypeID: -1,
		Data: ir.StaticVectorData{Element: opaqueElem, Length: ir.IntLiteral{Value: 4}, LengthUnit: ir.UnitBytes},
	})
	col.Add(ir.Def{Name: "S", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{Members: []ir.Handle{vec}}})

	newCol, err := normalize.Normalize(col)
	require.NoError(t, err)

	sH, _ := newCol.ByName("S")
	sData := newCol.Def(sH).Data.(ir.StructData)
	require.Len(t, sData.Members, 1)

	payload := newCol.Def(sData.Members[0])
	assert.Equal(t, "payload", payload.Name)
	inst, ok := payload.Data.(ir.InstanceData)
	require.True(t, ok, "an opaque vector must collapse into a single Instance-of-opaque field")
	assert.Equal(t, "opaque", inst.TypeName)
	assert.Equal(t, ir.IntLiteral{Value: 4}, inst.Args["nbytes"])
}

func TestNormalizeItemBasedOpaqueVectorRejected(t *testing.T) {
	col := ir.NewCollection(nil)
	opaqueElem := col.AddNested(ir.Def{Parent: ir.InvalidHandle, TypeID: -1, Data: ir.InstanceData{TypeName: "opaque"}})
	vec := col.AddNested(ir.Def{
		Name: "payload", Parent: ir.InvalidHandle, TypeID: -1,
		Data: ir.StaticVectorData{Element: opaqueElem, Length: ir.IntLiteral{Value: 4}, ItemBased: true},
	})
	col.Add(ir.Def{Name: "S", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{Members: []ir.Handle{vec}}})

	_, err := normalize.Normalize(col)
	assert.Error(t, err)
}

func TestNormalizeDynamicVectorLowering(t *testing.T) {
	col := ir.NewCollection(nil)
	elem := uint8Ref(col, "")
	v := col.AddNested(ir.Def{
		Name: "v", Parent: ir.InvalidHandle, TypeID: -1,
		Data: ir.DynamicVectorData{
			Element: elem, LengthMin: ir.IntLiteral{Value: 0}, LengthMax: ir.IntLiteral{Value: 255},
			LengthUnit: ir.UnitBytes,
		},
	})
	col.Add(ir.Def{Name: "S", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{Members: []ir.Handle{v}}})

	newCol, err := normalize.Normalize(col)
	require.NoError(t, err)

	sH, _ := newCol.ByName("S")
	sData := newCol.Def(sH).Data.(ir.StructData)
	require.Len(t, sData.Members, 1)

	vMember := newCol.Def(sData.Members[0])
	assert.Equal(t, "v", vMember.Name)
	inst, ok := vMember.Data.(ir.InstanceData)
	require.True(t, ok, "a dynamic vector struct member must be promoted to an Instance reference")

	promotedH, ok := newCol.ByName(inst.TypeName)
	require.True(t, ok)
	lowered := newCol.Def(promotedH).Data.(ir.StructData)
	require.Len(t, lowered.Members, 2, "a dynamic vector lowers to a length field plus an inner vector")

	nField := newCol.Def(lowered.Members[0])
	assert.Equal(t, "_N", nField.Name)
	nInst, ok := nField.Data.(ir.InstanceData)
	require.True(t, ok)
	assert.Equal(t, "uint8", nInst.TypeName, "255 needs exactly 8 bits, ceil(log2(256))")

	vField := newCol.Def(lowered.Members[1])
	assert.Equal(t, "_V", vField.Name)
	vVec, ok := vField.Data.(ir.StaticVectorData)
	require.True(t, ok)
	assert.Equal(t, ir.IntSymbol{Name: "_N"}, vVec.Length)
}

func TestNormalizeDynamicVectorOfOpaqueLowersInnerToOpaque(t *testing.T) {
	col := ir.NewCollection(nil)
	elem := col.AddNested(ir.Def{Parent: ir.InvalidHandle, TypeID: -1, Data: ir.InstanceData{TypeName: "opaque"}})
	v := col.AddNested(ir.Def{
		Name: "blob", Parent: ir.InvalidHandle, TypeID: -1,
		Data: ir.DynamicVectorData{
			Element: elem, LengthMin: ir.IntLiteral{Value: 0}, LengthMax: ir.IntLiteral{Value: 1023},
			LengthUnit: ir.UnitBytes,
		},
	})
	col.Add(ir.Def{Name: "S", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{Members: []ir.Handle{v}}})

	newCol, err := normalize.Normalize(col)
	require.NoError(t, err)

	sH, _ := newCol.ByName("S")
	sData := newCol.Def(sH).Data.(ir.StructData)
	inst := newCol.Def(sData.Members[0]).Data.(ir.InstanceData)

	promotedH, _ := newCol.ByName(inst.TypeName)
	lowered := newCol.Def(promotedH).Data.(ir.StructData)
	require.Len(t, lowered.Members, 2)

	vField := newCol.Def(lowered.Members[1])
	vInst, ok := vField.Data.(ir.InstanceData)
	require.True(t, ok, "an opaque-element dynamic vector's inner field must become an Opaque instance, not a vector")
	assert.Equal(t, "opaque", vInst.TypeName)
	assert.Equal(t, ir.IntSymbol{Name: "_N"}, vInst.Args["nbytes"])
}

func TestNormalizeIsIdempotent(t *testing.T) {
	col := ir.NewCollection(nil)
	enumMember := col.AddNested(ir.Def{
		Name: "kind", Parent: ir.InvalidHandle, TypeID: -1, Flags: ir.FlagDistinctive,
		Data: ir.EnumData{Items: []ir.EnumItem{{Name: "a"}, {Name: "b"}}},
	})
	dynElem := uint8Ref(col, "")
	dyn := col.AddNested(ir.Def{
		Name: "payload", Parent: ir.InvalidHandle, TypeID: -1,
		Data: ir.DynamicVectorData{
			Element: dynElem, LengthMin: ir.IntLiteral{Value: 0}, LengthMax: ir.IntLiteral{Value: 15},
			LengthUnit: ir.UnitBytes,
		},
	})
	col.Add(ir.Def{Name: "Msg", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{Members: []ir.Handle{enumMember, dyn}}})

	once, err := normalize.Normalize(col)
	require.NoError(t, err)
	twice, err := normalize.Normalize(once)
	require.NoError(t, err)

	// ir.Collection has no exported fields go-cmp can walk directly
	// (Handles are only meaningful within their own arena), so the two
	// passes' tree-dump strings stand in as the comparable snapshot.
	if diff := cmp.Diff(dump(t, once), dump(t, twice)); diff != "" {
		t.Errorf("normalize is not idempotent (-once +twice):\n%s", diff)
	}
}
