// Package etplapi is the one exported seam the rest of this repository
// calls to drive a parsed eTPL collection through the
// Raw→Normal→Sorted→Identified→Validated pipeline: internal/normalize,
// internal/depsort, internal/check and internal/width, in that order,
// failing fast at the first stage that reports an error. cmd/etplc and
// the end-to-end tests (internal/parser, pkg/etplapi) call Compile
// rather than wiring the four internal packages together themselves;
// the tests of each internal package call that package directly. This
// mirrors how evanw/esbuild's
// cmd/esbuild only ever calls pkg/api.
package etplapi

import (
	"fmt"
	"strings"

	"github.com/andreaswalz/etplc/internal/check"
	"github.com/andreaswalz/etplc/internal/depsort"
	"github.com/andreaswalz/etplc/internal/ir"
	"github.com/andreaswalz/etplc/internal/normalize"
	"github.com/andreaswalz/etplc/internal/width"
)

// Options configures one Compile call.
type Options struct {
	// BaseType, if non-empty, names the top-level type to compute the
	// sorted feature-path list for (the CLI's -b/-F/-f flags). Left
	// empty, Compile skips feature extraction entirely.
	BaseType string
}

// Result is everything a caller needs out of a successful Compile: the
// Validated collection (readable per spec.md §6.3's back-end contract),
// and, when Options.BaseType was given, that type's feature paths.
type Result struct {
	Collection *ir.Collection
	Features   []string
}

// CheckErrors is returned when internal/check reports one or more
// invariant violations; it is never a single *check.CheckError; the
// pipeline is a fail-fast pipeline stage by stage, but within the
// checker stage every violation is collected before returning.
type CheckErrors struct {
	Errors []*check.CheckError
}

func (e *CheckErrors) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ce := range e.Errors {
		msgs[i] = ce.Error()
	}
	return fmt.Sprintf("%d check error(s):\n%s", len(e.Errors), strings.Join(msgs, "\n"))
}

// UnknownBaseTypeError is returned when Options.BaseType does not name
// any top-level definition in the compiled collection.
type UnknownBaseTypeError struct {
	Name string
}

func (e *UnknownBaseTypeError) Error() string {
	return fmt.Sprintf("etplapi: unknown base type %q", e.Name)
}

// Compile runs raw (expected to be in ir.StateRaw, as produced by a
// parser.Parser) through normalize.Normalize, depsort.Sort and
// check.Check in sequence, returning the first error any stage
// reports. raw itself is left untouched; the returned Result holds a
// fresh Collection.
func Compile(raw *ir.Collection, opts Options) (*Result, error) {
	normalized, err := normalize.Normalize(raw)
	if err != nil {
		return nil, err
	}

	if err := depsort.Sort(normalized); err != nil {
		return nil, err
	}

	if errs := check.Check(normalized); len(errs) > 0 {
		return nil, &CheckErrors{Errors: errs}
	}

	result := &Result{Collection: normalized}

	if opts.BaseType != "" {
		h, ok := normalized.ByName(opts.BaseType)
		if !ok {
			return nil, &UnknownBaseTypeError{Name: opts.BaseType}
		}
		result.Features = width.Features(normalized, h)
	}

	return result, nil
}
