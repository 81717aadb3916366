// Command etplc is the CLI front end for the eTPL compiler middle end:
// it parses an input file, drives it through pkg/etplapi.Compile, and,
// depending on which flags were given, writes a parser-tree dump, the
// feature-evaluator code stub and/or the feature list to the named
// output files. Diagnostics are rendered through internal/diag in the
// same single-line-plus-caret, optionally colourised shape
// evanw/esbuild's cmd/esbuild renders its own build errors in.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/andreaswalz/etplc/internal/codegen"
	"github.com/andreaswalz/etplc/internal/depsort"
	"github.com/andreaswalz/etplc/internal/diag"
	"github.com/andreaswalz/etplc/internal/parser"
	"github.com/andreaswalz/etplc/pkg/etplapi"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("etplc", pflag.ContinueOnError)
	parserTreeFile := flags.StringP("parser-tree", "p", "", "write a parser-tree dump to <file>")
	baseType := flags.StringP("base-type", "b", "", "base type name to compute features for")
	featureCodeFile := flags.StringP("feature-code", "F", "", "write feature-evaluator code to <file>")
	featureListFile := flags.StringP("feature-list", "f", "", "write the feature list to <file>")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: etplc [-p file] [-b typename] [-F file] [-f file] <input.etpl>")
		return 1
	}

	diag.UseColor = diag.IsTerminal(os.Stdout)

	inputPath := flags.Arg(0)
	contents, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	src := diag.Source{Path: inputPath, Contents: string(contents)}

	raw, err := parser.Parse(src, nil)
	if err != nil {
		reportError(err, &src)
		return 1
	}

	result, err := etplapi.Compile(raw, etplapi.Options{BaseType: *baseType})
	if err != nil {
		reportError(err, &src)
		return 1
	}

	if *parserTreeFile != "" {
		if err := writeTo(*parserTreeFile, func(w *os.File) error {
			return codegen.TreeDumpEmitter{}.EmitParserTree(w, result.Collection)
		}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if *featureCodeFile != "" {
		if *baseType == "" {
			fmt.Fprintln(os.Stderr, "etplc: -F requires -b")
			return 1
		}
		if err := writeTo(*featureCodeFile, func(w *os.File) error {
			return codegen.CppFeatureEmitter{}.EmitFeatureCode(w, result.Collection, result.Features)
		}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if *featureListFile != "" {
		if *baseType == "" {
			fmt.Fprintln(os.Stderr, "etplc: -f requires -b")
			return 1
		}
		if err := writeTo(*featureListFile, func(w *os.File) error {
			return codegen.CppFeatureEmitter{}.EmitFeatureList(w, result.Features)
		}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	return 0
}

func writeTo(path string, emit func(w *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return emit(f)
}

// msger is implemented by error types that render themselves as a
// diag.Msg (parser.SyntaxError, which carries its own source
// location). The depsort, check and etplapi errors do not implement it;
// reportError wraps them in a diag.Msg in its type switch instead.
type msger interface {
	Msg() diag.Msg
}

func reportError(err error, src *diag.Source) {
	if m, ok := err.(msger); ok {
		fmt.Fprint(os.Stderr, m.Msg().String())
		return
	}

	switch e := err.(type) {
	case *depsort.UnknownTypeError:
		fmt.Fprint(os.Stderr, diag.Msg{Kind: diag.Error, Source: src, Text: e.Error()}.String())
	case *depsort.CycleError:
		fmt.Fprint(os.Stderr, diag.Msg{Kind: diag.Error, Source: src, Text: e.Error()}.String())
	case *etplapi.CheckErrors:
		for _, ce := range e.Errors {
			fmt.Fprint(os.Stderr, diag.Msg{
				Kind:   diag.Error,
				Source: src,
				Loc:    diag.Loc{Line: ce.Line, Column: 1},
				Text:   fmt.Sprintf("%s: %s", ce.Rule, ce.Message),
			}.String())
		}
	case *etplapi.UnknownBaseTypeError:
		fmt.Fprint(os.Stderr, diag.Msg{Kind: diag.Error, Source: src, Text: e.Error()}.String())
	default:
		fmt.Fprint(os.Stderr, diag.Msg{Kind: diag.Error, Source: src, Text: err.Error()}.String())
	}
}
