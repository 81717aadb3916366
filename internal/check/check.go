// Package check implements the semantic checker: the pass between the
// Identified and Validated collection states. It walks every top-level
// definition recursively, reporting every invariant violation it finds
// rather than stopping at the first one, and separately verifies that
// every symbol each definition requires is actually bound somewhere in
// its enclosing scope.
package check

import (
	"fmt"
	"sort"

	"github.com/andreaswalz/etplc/internal/ir"
)

// Rule identifies which named invariant a CheckError violates.
type Rule string

const (
	RuleOptionalOrder        Rule = "non-optional-after-optional"
	RuleDistinctiveNotEnum   Rule = "distinctive-not-enum"
	RuleDuplicateMemberName  Rule = "duplicate-member-name"
	RuleSelectNotInStruct    Rule = "select-not-in-struct"
	RuleDefaultCaseNotLast   Rule = "default-case-not-last"
	RuleMultipleDefaultCase  Rule = "multiple-default-case"
	RuleCaseArityMismatch    Rule = "case-arity-mismatch"
	RuleMultipleFallback     Rule = "multiple-fallback-enum-item"
	RuleNonIntegerInstance   Rule = "non-integer-instance-argument"
	RuleUnknownSymbol        Rule = "unknown-symbol"
	RuleMissingDefaultCase   Rule = "missing-default-case"
)

// CheckError is one reported invariant violation, naming the rule, the
// offending definition and a human-readable message.
type CheckError struct {
	Rule       Rule
	Definition string
	Line       int
	Message    string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %s", e.Definition, e.Line, e.Rule, e.Message)
}

// Check runs every invariant check over col, expected to be in
// ir.StateIdentified, and returns every violation found. A nil/empty
// result promotes col to ir.StateValidated; a non-empty result leaves
// col's state unchanged so callers can tell validation failed.
func Check(col *ir.Collection) []*CheckError {
	var errs []*CheckError

	for _, h := range col.Order {
		errs = append(errs, checkDef(col, h)...)
		errs = append(errs, checkSymbolClosure(col, h)...)
	}

	if len(errs) == 0 {
		col.State = ir.StateValidated
	}

	sort.Slice(errs, func(i, j int) bool {
		if errs[i].Definition != errs[j].Definition {
			return errs[i].Definition < errs[j].Definition
		}
		return errs[i].Line < errs[j].Line
	})

	return errs
}

func checkDef(col *ir.Collection, h ir.Handle) []*CheckError {
	d := col.Def(h)
	var errs []*CheckError

	switch data := d.Data.(type) {
	case ir.InstanceData:
		for name, arg := range data.Args {
			if !isIntegerArg(arg) {
				errs = append(errs, &CheckError{
					Rule:       RuleNonIntegerInstance,
					Definition: d.Name,
					Line:       d.Line,
					Message:    fmt.Sprintf("argument %q of %q is not an integer expression", name, data.TypeName),
				})
			}
		}

	case ir.StructData:
		errs = append(errs, checkMemberList(col, d, data.Members, true)...)
		errs = append(errs, checkDistinctiveMembers(col, d, data.Members)...)
		for _, m := range data.Members {
			errs = append(errs, checkDef(col, m)...)
		}

	case ir.CaseData:
		errs = append(errs, checkMemberList(col, d, data.Members, false)...)
		for _, m := range data.Members {
			errs = append(errs, checkDef(col, m)...)
		}

	case ir.DefaultCaseData:
		errs = append(errs, checkMemberList(col, d, data.Members, false)...)
		for _, m := range data.Members {
			errs = append(errs, checkDef(col, m)...)
		}

	case ir.FragmentData:
		errs = append(errs, checkDef(col, data.Element)...)

	case ir.StaticVectorData:
		errs = append(errs, checkDef(col, data.Element)...)

	case ir.DynamicVectorData:
		errs = append(errs, checkDef(col, data.Element)...)

	case ir.EnumData:
		errs = append(errs, checkEnum(d, data)...)

	case ir.SelectData:
		errs = append(errs, checkSelect(col, d, data)...)
	}

	return errs
}

// checkMemberList enforces the two struct-member invariants: no
// required (non-optional) member may follow an optional one, since
// there would be no presence bit to tell whether it is there, and no
// two members may share a name. allowSelect controls whether a Select
// member is permitted directly in this list: the language only allows
// a Select as a direct struct member, never nested inside a case.
func checkMemberList(col *ir.Collection, owner *ir.Def, members []ir.Handle, allowSelect bool) []*CheckError {
	var errs []*CheckError

	seen := make(map[string]bool, len(members))
	sawOptional := false
	for _, m := range members {
		md := col.Def(m)

		if seen[md.Name] {
			errs = append(errs, &CheckError{
				Rule:       RuleDuplicateMemberName,
				Definition: owner.Name,
				Line:       md.Line,
				Message:    fmt.Sprintf("member name %q is used more than once", md.Name),
			})
		}
		seen[md.Name] = true

		if md.Flags.Has(ir.FlagOptional) {
			sawOptional = true
		} else if sawOptional {
			errs = append(errs, &CheckError{
				Rule:       RuleOptionalOrder,
				Definition: owner.Name,
				Line:       md.Line,
				Message:    fmt.Sprintf("required member %q follows an optional member", md.Name),
			})
		}

		if !allowSelect {
			if _, ok := md.Data.(ir.SelectData); ok {
				errs = append(errs, &CheckError{
					Rule:       RuleSelectNotInStruct,
					Definition: owner.Name,
					Line:       md.Line,
					Message:    "select is only allowed as a direct struct member",
				})
			}
		}
	}

	return errs
}

// checkDistinctiveMembers enforces invariant 6: a member flagged
// distinctive must resolve, after following any alias chain, to an
// Enum definition.
func checkDistinctiveMembers(col *ir.Collection, owner *ir.Def, members []ir.Handle) []*CheckError {
	var errs []*CheckError
	for _, m := range members {
		md := col.Def(m)
		if !md.Flags.Has(ir.FlagDistinctive) {
			continue
		}
		resolved, _, err := col.FollowInstantiation(m, nil)
		if err != nil {
			continue
		}
		if _, ok := col.Def(resolved).Data.(ir.EnumData); !ok {
			errs = append(errs, &CheckError{
				Rule:       RuleDistinctiveNotEnum,
				Definition: owner.Name,
				Line:       md.Line,
				Message:    fmt.Sprintf("distinctive member %q does not resolve to an enum", md.Name),
			})
		}
	}
	return errs
}

func checkEnum(owner *ir.Def, data ir.EnumData) []*CheckError {
	var errs []*CheckError
	fallbacks := 0
	for _, item := range data.Items {
		if item.Fallback {
			fallbacks++
		}
	}
	if fallbacks > 1 {
		errs = append(errs, &CheckError{
			Rule:       RuleMultipleFallback,
			Definition: owner.Name,
			Line:       owner.Line,
			Message:    fmt.Sprintf("enum %q has %d fallback items, only one is allowed", owner.Name, fallbacks),
		})
	}
	return errs
}

func checkSelect(col *ir.Collection, owner *ir.Def, data ir.SelectData) []*CheckError {
	var errs []*CheckError

	defaultCount := 0
	var arity int
	arityKnown := false

	for i, caseH := range data.Cases {
		cd := col.Def(caseH)
		errs = append(errs, checkDef(col, caseH)...)

		var members []ir.Handle
		switch c := cd.Data.(type) {
		case ir.CaseData:
			members = c.Members
			if defaultCount > 0 {
				errs = append(errs, &CheckError{
					Rule:       RuleDefaultCaseNotLast,
					Definition: owner.Name,
					Line:       cd.Line,
					Message:    "case follows the default case",
				})
			}
		case ir.DefaultCaseData:
			members = c.Members
			defaultCount++
			if i != len(data.Cases)-1 {
				errs = append(errs, &CheckError{
					Rule:       RuleDefaultCaseNotLast,
					Definition: owner.Name,
					Line:       cd.Line,
					Message:    "default case must be the last case",
				})
			}
		}

		if !arityKnown {
			arity = len(members)
			arityKnown = true
		} else if len(members) != arity {
			errs = append(errs, &CheckError{
				Rule:       RuleCaseArityMismatch,
				Definition: owner.Name,
				Line:       cd.Line,
				Message:    fmt.Sprintf("case %q has %d members, expected %d", cd.Name, len(members), arity),
			})
		}
	}

	if defaultCount > 1 {
		errs = append(errs, &CheckError{
			Rule:       RuleMultipleDefaultCase,
			Definition: owner.Name,
			Line:       owner.Line,
			Message:    fmt.Sprintf("select %q has %d default cases, only one is allowed", owner.Name, defaultCount),
		})
	} else if defaultCount == 0 {
		errs = append(errs, &CheckError{
			Rule:       RuleMissingDefaultCase,
			Definition: owner.Name,
			Line:       owner.Line,
			Message:    fmt.Sprintf("select %q has no default case", owner.Name),
		})
	}

	return errs
}

// checkSymbolClosure verifies every symbol h's definition requires is
// bound: by an earlier sibling, by the collection's global symbols, or
// transitively by a parameter/Const/member visible at that point.
func checkSymbolClosure(col *ir.Collection, h ir.Handle) []*CheckError {
	d := col.Def(h)
	required := col.RequiredSymbols(h)
	known := col.CollectionKnownSymbols()
	for _, p := range d.Params {
		known[p] = ir.Scope{Handle: h}
	}

	undefined := ir.UndefinedSymbols(required, known)
	if len(undefined) == 0 {
		return nil
	}

	sort.Strings(undefined)
	var errs []*CheckError
	for _, name := range undefined {
		errs = append(errs, &CheckError{
			Rule:       RuleUnknownSymbol,
			Definition: d.Name,
			Line:       d.Line,
			Message:    fmt.Sprintf("symbol %q is not defined in any enclosing scope", name),
		})
	}
	return errs
}

// isIntegerArg reports whether an instance argument is a value the
// width/feature algebra can reason about numerically: any IntElement
// qualifies, since both IntLiteral and IntSymbol resolve to an integer
// once symbols are substituted.
func isIntegerArg(arg ir.IntElement) bool {
	switch arg.(type) {
	case ir.IntLiteral, ir.IntSymbol:
		return true
	default:
		return false
	}
}
