package check_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreaswalz/etplc/internal/check"
	"github.com/andreaswalz/etplc/internal/ir"
)

// uintMember builds a plain "uint8 name;"-shaped member: an Instance of
// a built-in integer type, named name.
func uintMember(col *ir.Collection, name string, flags ir.Flags) ir.Handle {
	return col.AddNested(ir.Def{
		Name:   name,
		Parent: ir.InvalidHandle,
		TypeID: -1,
		Flags:  flags,
		Data:   ir.InstanceData{TypeName: "uint8"},
	})
}

func vectorMember(col *ir.Collection, name string, lengthSymbol string) ir.Handle {
	elem := col.AddNested(ir.Def{Parent: ir.InvalidHandle, TypeID: -1, Data: ir.InstanceData{TypeName: "uint8"}})
	return col.AddNested(ir.Def{
		Name:   name,
		Parent: ir.InvalidHandle,
		TypeID: -1,
		Data: ir.StaticVectorData{
			Element:    elem,
			Length:     ir.IntSymbol{Name: lengthSymbol},
			LengthUnit: ir.UnitBytes,
		},
	})
}

func addStruct(col *ir.Collection, name string, members []ir.Handle) ir.Handle {
	h := col.Add(ir.Def{Name: name, Parent: ir.InvalidHandle, TypeID: -1, Data: ir.StructData{Members: members}})
	return h
}

func TestSymbolVisibility(t *testing.T) {
	col := ir.NewCollection(nil)
	n := uintMember(col, "n", 0)
	v := vectorMember(col, "v", "n")
	w := vectorMember(col, "w", "n")
	addStruct(col, "S", []ir.Handle{n, v, w})

	errs := check.Check(col)
	require.Empty(t, errs)
}

func TestSymbolVisibilityViolationWhenUsedBeforeDefined(t *testing.T) {
	col := ir.NewCollection(nil)
	n := uintMember(col, "n", 0)
	v := vectorMember(col, "v", "n")
	// v comes before n: v's required symbol "n" is not yet known.
	addStruct(col, "S", []ir.Handle{v, n})

	errs := check.Check(col)
	require.NotEmpty(t, errs)
	assert.Equal(t, check.RuleUnknownSymbol, errs[0].Rule)
}

func TestOptionalMustNotPrecedeRequiredMember(t *testing.T) {
	col := ir.NewCollection(nil)
	opt := uintMember(col, "a", ir.FlagOptional)
	req := uintMember(col, "b", 0)
	addStruct(col, "S", []ir.Handle{opt, req})

	errs := check.Check(col)
	require.Len(t, errs, 1)
	assert.Equal(t, check.RuleOptionalOrder, errs[0].Rule)
}

func TestDuplicateMemberNameRejected(t *testing.T) {
	col := ir.NewCollection(nil)
	a := uintMember(col, "a", 0)
	b := uintMember(col, "a", 0)
	addStruct(col, "S", []ir.Handle{a, b})

	errs := check.Check(col)
	require.NotEmpty(t, errs)
	assert.Equal(t, check.RuleDuplicateMemberName, errs[0].Rule)
}

func TestDistinctiveMemberMustResolveToEnum(t *testing.T) {
	col := ir.NewCollection(nil)
	notEnum := uintMember(col, "t", ir.FlagDistinctive)
	addStruct(col, "S", []ir.Handle{notEnum})

	errs := check.Check(col)
	require.NotEmpty(t, errs)
	assert.Equal(t, check.RuleDistinctiveNotEnum, errs[0].Rule)
}

func TestDistinctiveMemberResolvingToEnumPasses(t *testing.T) {
	col := ir.NewCollection(nil)
	enumH := col.Add(ir.Def{
		Name: "E", Parent: ir.InvalidHandle, TypeID: -1,
		Data: ir.EnumData{Items: []ir.EnumItem{{Name: "a", Value: ir.IntLiteral{Value: 1}}}},
	})
	t_ := col.AddNested(ir.Def{
		Name: "t", Parent: ir.InvalidHandle, TypeID: -1, Flags: ir.FlagDistinctive,
		Data: ir.InstanceData{TypeName: col.Def(enumH).Name},
	})
	addStruct(col, "S", []ir.Handle{t_})

	errs := check.Check(col)
	assert.Empty(t, errs)
}

func buildSelect(col *ir.Collection, cases []ir.Handle) ir.Handle {
	sel := col.AddNested(ir.Def{Parent: ir.InvalidHandle, TypeID: -1, Data: ir.SelectData{TestSymbol: "t", Cases: cases}})
	return sel
}

func TestSelectRequiresExactlyOneDefaultCase(t *testing.T) {
	col := ir.NewCollection(nil)
	case1 := col.AddNested(ir.Def{Name: "c1", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.CaseData{Cond: []string{"a"}}})
	sel := buildSelect(col, []ir.Handle{case1})
	addStruct(col, "S", []ir.Handle{sel})

	errs := check.Check(col)
	require.NotEmpty(t, errs)
	assert.Equal(t, check.RuleMissingDefaultCase, errs[0].Rule)
}

func TestSelectRejectsTwoDefaultCases(t *testing.T) {
	col := ir.NewCollection(nil)
	d1 := col.AddNested(ir.Def{Name: "d1", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.DefaultCaseData{}})
	d2 := col.AddNested(ir.Def{Name: "d2", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.DefaultCaseData{}})
	sel := buildSelect(col, []ir.Handle{d1, d2})
	addStruct(col, "S", []ir.Handle{sel})

	errs := check.Check(col)
	var rules []check.Rule
	for _, e := range errs {
		rules = append(rules, e.Rule)
	}
	assert.Contains(t, rules, check.RuleMultipleDefaultCase)
}

func TestSelectRejectsDefaultCaseNotLast(t *testing.T) {
	col := ir.NewCollection(nil)
	d := col.AddNested(ir.Def{Name: "d", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.DefaultCaseData{}})
	c := col.AddNested(ir.Def{Name: "c", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.CaseData{Cond: []string{"a"}}})
	sel := buildSelect(col, []ir.Handle{d, c})
	addStruct(col, "S", []ir.Handle{sel})

	errs := check.Check(col)
	var rules []check.Rule
	for _, e := range errs {
		rules = append(rules, e.Rule)
	}
	assert.Contains(t, rules, check.RuleDefaultCaseNotLast)
}

func TestSelectRejectsCaseArityMismatch(t *testing.T) {
	col := ir.NewCollection(nil)
	m := uintMember(col, "x", 0)
	c1 := col.AddNested(ir.Def{Name: "c1", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.CaseData{Cond: []string{"a"}, Members: []ir.Handle{m}}})
	c2 := col.AddNested(ir.Def{Name: "c2", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.CaseData{Cond: []string{"b"}}})
	def := col.AddNested(ir.Def{Parent: ir.InvalidHandle, TypeID: -1, Data: ir.DefaultCaseData{}})
	sel := buildSelect(col, []ir.Handle{c1, c2, def})
	addStruct(col, "S", []ir.Handle{sel})

	errs := check.Check(col)
	var rules []check.Rule
	for _, e := range errs {
		rules = append(rules, e.Rule)
	}
	assert.Contains(t, rules, check.RuleCaseArityMismatch)
}

func TestSelectNotAllowedNestedInsideCase(t *testing.T) {
	col := ir.NewCollection(nil)
	inner := buildSelect(col, []ir.Handle{
		col.AddNested(ir.Def{Parent: ir.InvalidHandle, TypeID: -1, Data: ir.DefaultCaseData{}}),
	})
	c1 := col.AddNested(ir.Def{Name: "c1", Parent: ir.InvalidHandle, TypeID: -1, Data: ir.CaseData{Cond: []string{"a"}, Members: []ir.Handle{inner}}})
	def := col.AddNested(ir.Def{Parent: ir.InvalidHandle, TypeID: -1, Data: ir.DefaultCaseData{}})
	outer := buildSelect(col, []ir.Handle{c1, def})
	addStruct(col, "S", []ir.Handle{outer})

	errs := check.Check(col)
	var rules []check.Rule
	for _, e := range errs {
		rules = append(rules, e.Rule)
	}
	assert.Contains(t, rules, check.RuleSelectNotInStruct)
}

func TestMultipleFallbackEnumItemsRejected(t *testing.T) {
	col := ir.NewCollection(nil)
	col.Add(ir.Def{
		Name: "E", Parent: ir.InvalidHandle, TypeID: -1,
		Data: ir.EnumData{Items: []ir.EnumItem{
			{Name: "a", Fallback: true},
			{Name: "b", Fallback: true},
		}},
	})

	errs := check.Check(col)
	require.Len(t, errs, 1)
	assert.Equal(t, check.RuleMultipleFallback, errs[0].Rule)
}

func TestValidatedStateSetOnlyWhenNoErrors(t *testing.T) {
	col := ir.NewCollection(nil)
	n := uintMember(col, "n", 0)
	addStruct(col, "S", []ir.Handle{n})

	errs := check.Check(col)
	require.Empty(t, errs)
	assert.Equal(t, ir.StateValidated, col.State)
}
