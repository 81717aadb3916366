package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreaswalz/etplc/internal/diag"
	"github.com/andreaswalz/etplc/internal/ir"
	"github.com/andreaswalz/etplc/internal/parser"
	"github.com/andreaswalz/etplc/pkg/etplapi"
)

func TestParseStructWithNestedEnumAndSelect(t *testing.T) {
	col, err := parser.Parse(diag.Source{Path: "t.etpl", Contents: `
struct {
    distinctive enum { a(0), b(1) } kind;
    select (kind) {
        case a:
            uint8 x;
        default:
            uint16 y;
    } payload;
} Msg;
`}, nil)
	require.NoError(t, err)
	assert.Equal(t, ir.StateRaw, col.State)

	h, ok := col.ByName("Msg")
	require.True(t, ok)
	_, isStruct := col.Def(h).Data.(ir.StructData)
	assert.True(t, isStruct)

	result, err := etplapi.Compile(col, etplapi.Options{})
	require.NoError(t, err)
	assert.Equal(t, ir.StateValidated, result.Collection.State)
}

func TestParseDynamicVectorMember(t *testing.T) {
	col, err := parser.Parse(diag.Source{Path: "t.etpl", Contents: `
struct {
    uint8 data<0..255>;
} Blob;
`}, nil)
	require.NoError(t, err)

	result, err := etplapi.Compile(col, etplapi.Options{})
	require.NoError(t, err)
	assert.Equal(t, ir.StateValidated, result.Collection.State)
}

func TestParseConstDefinition(t *testing.T) {
	col, err := parser.Parse(diag.Source{Path: "t.etpl", Contents: `
const N = 4;
struct {
    uint8 items[N];
} Simple;
`}, nil)
	require.NoError(t, err)

	_, ok := col.ByName("N")
	require.True(t, ok)

	result, err := etplapi.Compile(col, etplapi.Options{})
	require.NoError(t, err)
	assert.Equal(t, ir.StateValidated, result.Collection.State)
}

func TestParseRejectsMissingSemicolon(t *testing.T) {
	_, err := parser.Parse(diag.Source{Path: "t.etpl", Contents: `
struct {
    uint8 x
} Simple;
`}, nil)
	require.Error(t, err)
	var syntaxErr *parser.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestParseGlobalSymbolsSeedCollection(t *testing.T) {
	col, err := parser.Parse(diag.Source{Path: "t.etpl", Contents: `
struct {
    uint8 items[MaxItems];
} Simple;
`}, []string{"MaxItems"})
	require.NoError(t, err)

	_, err = etplapi.Compile(col, etplapi.Options{})
	require.NoError(t, err)
}
