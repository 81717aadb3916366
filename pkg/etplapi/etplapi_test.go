package etplapi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreaswalz/etplc/internal/diag"
	"github.com/andreaswalz/etplc/internal/ir"
	"github.com/andreaswalz/etplc/internal/parser"
	"github.com/andreaswalz/etplc/pkg/etplapi"
)

func parse(t *testing.T, src string) *ir.Collection {
	t.Helper()
	col, err := parser.Parse(diag.Source{Path: "test.etpl", Contents: src}, nil)
	require.NoError(t, err)
	return col
}

func TestCompileEndToEnd(t *testing.T) {
	col := parse(t, `
struct {
    uint8 x;
    uint8 y[4];
} Simple;
`)

	result, err := etplapi.Compile(col, etplapi.Options{})
	require.NoError(t, err)
	assert.Equal(t, ir.StateValidated, result.Collection.State)

	h, ok := result.Collection.ByName("Simple")
	require.True(t, ok)
	assert.GreaterOrEqual(t, result.Collection.Def(h).TypeID, 100)
}

func TestCompileWithBaseTypeComputesFeatures(t *testing.T) {
	col := parse(t, `
struct {
    uint8 x;
    uint8 y[4];
} Simple;
`)

	result, err := etplapi.Compile(col, etplapi.Options{BaseType: "Simple"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, result.Features)
}

func TestCompileUnknownBaseTypeError(t *testing.T) {
	col := parse(t, `
struct {
    uint8 x;
} Simple;
`)

	_, err := etplapi.Compile(col, etplapi.Options{BaseType: "Nope"})
	require.Error(t, err)
	var unknownErr *etplapi.UnknownBaseTypeError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestCompileSurfacesCheckErrors(t *testing.T) {
	col := parse(t, `
struct {
    distinctive uint8 t;
} Bad;
`)

	_, err := etplapi.Compile(col, etplapi.Options{})
	require.Error(t, err)
	var checkErrs *etplapi.CheckErrors
	require.ErrorAs(t, err, &checkErrs)
	assert.NotEmpty(t, checkErrs.Errors)
}

func TestCompileLeavesInputCollectionUntouched(t *testing.T) {
	col := parse(t, `
struct {
    uint8 x;
} Simple;
`)

	_, err := etplapi.Compile(col, etplapi.Options{})
	require.NoError(t, err)
	assert.Equal(t, ir.StateRaw, col.State)
}
