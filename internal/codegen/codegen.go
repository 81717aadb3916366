// Package codegen holds the two back-end-facing emitters spec.md §6.3
// names as the middle end's output contract: a parser-tree emitter
// (here a deliberate stub — the real target-language back end is out
// of scope) and a feature emitter, grounded on
// original_source/features.py's makeFeatures, which is fully
// implemented because it is pure text generation rather than
// target-language source.
package codegen

import (
	"io"

	"github.com/andreaswalz/etplc/internal/ir"
)

// ParserEmitter consumes a Validated, sorted, type-ID-assigned
// Collection and writes a representation of its parser tree. The
// concrete TreeDumpEmitter below is a stub: a deterministic textual
// tree dump, not real target-language source.
type ParserEmitter interface {
	EmitParserTree(w io.Writer, col *ir.Collection) error
}

// FeatureEmitter consumes a sorted feature-path list (as produced by
// internal/width.Features) and writes either the evaluator source
// stub or the plain feature list.
type FeatureEmitter interface {
	EmitFeatureCode(w io.Writer, col *ir.Collection, features []string) error
	EmitFeatureList(w io.Writer, features []string) error
}
