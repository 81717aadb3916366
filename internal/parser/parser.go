package parser

import (
	"fmt"

	"github.com/andreaswalz/etplc/internal/diag"
	"github.com/andreaswalz/etplc/internal/ir"
)

// keywords are the reserved words spec.md §6.2 lists; an identifier
// production must reject them exactly as the grammar's pypReserved
// NotAny(...) does.
var keywords = map[string]bool{
	"struct": true, "enum": true, "select": true, "case": true,
	"default": true, "const": true, "extern": true, "optional": true,
	"distinctive": true, "bits": true, "bytes": true,
}

// SyntaxError is a parse-time failure tied to a source line, the
// concrete error type Parse returns; cmd/etplc renders it through Msg.
type SyntaxError struct {
	Line    int
	Col     int
	Message string
	Source  *diag.Source
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Message)
}

// Msg renders e through the shared diagnostics sink.
func (e *SyntaxError) Msg() diag.Msg {
	return diag.Msg{
		Kind:   diag.Error,
		Source: e.Source,
		Loc:    diag.Loc{Line: e.Line, Column: e.Col},
		Text:   e.Message,
	}
}

// Parser is the interface a swappable front end implements; EtplParser
// below is this package's implementation. pkg/etplapi.Compile never
// imports internal/parser directly, so a different front end can stand
// in for it.
type Parser interface {
	Parse(src diag.Source) (*ir.Collection, error)
}

// EtplParser is the concrete recursive-descent implementation of
// Parser, grounded on original_source/parse.py's grammar (the variant
// with named-production failure actions, per spec.md §9's canonical
// choice) but hand-written against Go tokens instead of pyparsing
// combinators.
type EtplParser struct {
	// GlobalSymbols seeds the resulting Collection's externally
	// configured symbol set (spec.md's "configured global symbols"),
	// e.g. command-line instance parameters.
	GlobalSymbols []string
}

func (p EtplParser) Parse(src diag.Source) (*ir.Collection, error) {
	return Parse(src, p.GlobalSymbols)
}

// Parse lexes and parses src into a Raw-state ir.Collection
// pre-populated with built-ins, as spec.md §6.1 describes the parser's
// contract.
func Parse(src diag.Source, globalSymbols []string) (*ir.Collection, error) {
	toks, err := lex(src.Contents)
	if err != nil {
		return nil, wrapLexError(err, &src)
	}

	p := &parser{toks: toks, src: &src, col: ir.NewCollection(globalSymbols)}
	if err := p.parseFile(); err != nil {
		return nil, err
	}
	return p.col, nil
}

func wrapLexError(err error, src *diag.Source) error {
	// lex() errors are already "line %d: msg"; column is unknown so we
	// report column 1, matching printError's behavior when pyparsing
	// itself fails before a column is established.
	return &SyntaxError{Line: 0, Col: 1, Message: err.Error(), Source: src}
}

type parser struct {
	toks []token
	pos  int
	src  *diag.Source
	col  *ir.Collection
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) atEOF() bool { return p.cur().kind == tokEOF }

func (p *parser) atPunct(s string) bool {
	return p.cur().kind == tokPunct && p.cur().text == s
}

func (p *parser) atKeyword(kw string) bool {
	return p.cur().kind == tokIdent && p.cur().text == kw
}

func (p *parser) atIdent() bool {
	return p.cur().kind == tokIdent && !keywords[p.cur().text]
}

func (p *parser) fail(production, msg string) error {
	return &SyntaxError{Line: p.cur().line, Col: 1, Message: fmt.Sprintf("%s: %s", production, msg), Source: p.src}
}

func (p *parser) expectPunct(s string) error {
	if !p.atPunct(s) {
		return p.fail("punctuation", fmt.Sprintf("expected %q, found %q", s, p.cur().text))
	}
	p.advance()
	return nil
}

func (p *parser) expectIdent(production string) (string, error) {
	if !p.atIdent() {
		return "", p.fail(production, fmt.Sprintf("expected an identifier, found %q", p.cur().text))
	}
	return p.advance().text, nil
}

// _____________________________________________________________________
//
// File
// _____________________________________________________________________

func (p *parser) parseFile() error {
	for !p.atEOF() {
		var err error
		switch {
		case p.atKeyword("const"):
			err = p.parseConstDef()
		default:
			err = p.parseTopLevelTypeDef()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// _____________________________________________________________________
//
// const NAME = IntExpr ;
// _____________________________________________________________________

func (p *parser) parseConstDef() error {
	line := p.cur().line
	p.advance() // "const"
	name, err := p.expectIdent("const definition")
	if err != nil {
		return err
	}
	if err := p.expectPunct("="); err != nil {
		return fmt.Errorf("const definition: %w", err)
	}
	value, err := p.parseIntExpr()
	if err != nil {
		return fmt.Errorf("const definition: %w", err)
	}
	if err := p.expectPunct(";"); err != nil {
		return fmt.Errorf("const definition: %w", err)
	}
	p.col.Add(ir.Def{Name: name, Parent: ir.InvalidHandle, TypeID: -1, Line: line, Data: ir.ConstData{Value: value}})
	return nil
}

// _____________________________________________________________________
//
// Top-level type definitions: (struct|enum|alias) NAME extensions* ;
// _____________________________________________________________________

func (p *parser) parseTopLevelTypeDef() error {
	line := p.cur().line

	coreH, err := p.parseCoreType(ir.InvalidHandle, false)
	if err != nil {
		return err
	}
	d := p.col.Def(coreH)
	d.Line = line

	name, err := p.expectIdent("type definition")
	if err != nil {
		return fmt.Errorf("type definition: %w", err)
	}
	d.Name = name

	currentH, err := p.parseExtensions(ir.InvalidHandle, coreH)
	if err != nil {
		return err
	}

	if err := p.expectPunct(";"); err != nil {
		return fmt.Errorf("type definition: %w", err)
	}

	p.col.PromoteToTopLevel(currentH)
	return nil
}

// parseCoreType parses the unqualified, unwrapped, unnamed type that
// begins a TypeDef or StructVarDef: struct, enum, (select, only when
// allowSelect) or an alias/instance reference. The returned Handle is
// already pushed into col's arena as a child of parent (InvalidHandle
// for top level); its Name is still "" and its Data may still need
// filling in by the caller (it is not, for Struct/Select).
func (p *parser) parseCoreType(parent ir.Handle, allowSelect bool) (ir.Handle, error) {
	switch {
	case p.atKeyword("struct"):
		return p.parseStruct(parent)
	case p.atKeyword("enum"):
		return p.parseEnum(parent)
	case allowSelect && p.atKeyword("select"):
		return p.parseSelect(parent)
	default:
		data, err := p.parseInstanceData()
		if err != nil {
			return ir.InvalidHandle, err
		}
		return p.col.AddNested(ir.Def{Parent: parent, TypeID: -1, Data: data}), nil
	}
}

// parseInstanceData parses `Identifier [:: <Param=Value, ...>]`, the
// alias/reference form used for a type name by itself, for a struct
// member's type, and for a vector/fragment element.
func (p *parser) parseInstanceData() (ir.InstanceData, error) {
	name, err := p.expectIdent("instance type name")
	if err != nil {
		return ir.InstanceData{}, err
	}
	data := ir.InstanceData{TypeName: name}
	if p.atPunct("::") {
		args, err := p.parseParametrization()
		if err != nil {
			return ir.InstanceData{}, err
		}
		data.Args = args
	}
	return data, nil
}

// parseParametrization parses `:: < name=value, ... >`.
func (p *parser) parseParametrization() (map[string]ir.IntElement, error) {
	p.advance() // "::"
	if err := p.expectPunct("<"); err != nil {
		return nil, fmt.Errorf("type parametrization: %w", err)
	}
	args := map[string]ir.IntElement{}
	for {
		name, err := p.expectIdent("parameter name")
		if err != nil {
			return nil, fmt.Errorf("type parametrization: %w", err)
		}
		if err := p.expectPunct("="); err != nil {
			return nil, fmt.Errorf("type parametrization: %w", err)
		}
		var value ir.IntElement
		if p.atIdent() {
			value = ir.IntSymbol{Name: p.advance().text}
		} else {
			value, err = p.parseIntExpr()
			if err != nil {
				return nil, fmt.Errorf("type parametrization: %w", err)
			}
		}
		args[name] = value
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectPunct(">"); err != nil {
		return nil, fmt.Errorf("type parametrization: %w", err)
	}
	return args, nil
}

// _____________________________________________________________________
//
// struct { StructVarDef* }
// _____________________________________________________________________

func (p *parser) parseStruct(parent ir.Handle) (ir.Handle, error) {
	p.advance() // "struct"
	if err := p.expectPunct("{"); err != nil {
		return ir.InvalidHandle, fmt.Errorf("struct: %w", err)
	}
	h := p.col.AddNested(ir.Def{Parent: parent, TypeID: -1, Data: ir.StructData{}})

	var members []ir.Handle
	for !p.atPunct("}") {
		if p.atEOF() {
			return ir.InvalidHandle, p.fail("struct", "unterminated struct body")
		}
		m, err := p.parseStructVarDef(h)
		if err != nil {
			return ir.InvalidHandle, err
		}
		members = append(members, m)
	}
	p.advance() // "}"

	p.col.Def(h).Data = ir.StructData{Members: members}
	return h, nil
}

// parseStructVarDef parses one member: [qualifier] type [name]
// extensions* ;
func (p *parser) parseStructVarDef(parent ir.Handle) (ir.Handle, error) {
	line := p.cur().line

	var flags ir.Flags
	switch {
	case p.atKeyword("extern"):
		flags |= ir.FlagExtern
		p.advance()
	case p.atKeyword("optional"):
		flags |= ir.FlagOptional
		p.advance()
	case p.atKeyword("distinctive"):
		flags |= ir.FlagDistinctive
		p.advance()
	}

	coreH, err := p.parseCoreType(parent, true)
	if err != nil {
		return ir.InvalidHandle, err
	}
	d := p.col.Def(coreH)
	d.Flags |= flags
	d.Line = line

	if p.atIdent() {
		d.Name = p.advance().text
	}

	currentH, err := p.parseExtensions(parent, coreH)
	if err != nil {
		return ir.InvalidHandle, err
	}

	if err := p.expectPunct(";"); err != nil {
		return ir.InvalidHandle, fmt.Errorf("struct member: %w", err)
	}

	return currentH, nil
}

// _____________________________________________________________________
//
// enum { EnumItem, ... }
// _____________________________________________________________________

func (p *parser) parseEnum(parent ir.Handle) (ir.Handle, error) {
	p.advance() // "enum"
	if err := p.expectPunct("{"); err != nil {
		return ir.InvalidHandle, fmt.Errorf("enum: %w", err)
	}

	var items []ir.EnumItem
	for !p.atPunct("}") {
		item, err := p.parseEnumItem()
		if err != nil {
			return ir.InvalidHandle, err
		}
		items = append(items, item)
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectPunct("}"); err != nil {
		return ir.InvalidHandle, fmt.Errorf("enum: %w", err)
	}

	return p.col.AddNested(ir.Def{Parent: parent, TypeID: -1, Data: ir.EnumData{Items: items}}), nil
}

func (p *parser) parseEnumItem() (ir.EnumItem, error) {
	name := ""
	if p.atIdent() {
		name = p.advance().text
	}
	if err := p.expectPunct("("); err != nil {
		return ir.EnumItem{}, fmt.Errorf("enumeration item: %w", err)
	}
	if p.atPunct("*") {
		p.advance()
		if err := p.expectPunct(")"); err != nil {
			return ir.EnumItem{}, fmt.Errorf("enumeration item: %w", err)
		}
		return ir.EnumItem{Name: name, Fallback: true}, nil
	}

	value, err := p.parseConstIntExpr()
	if err != nil {
		return ir.EnumItem{}, fmt.Errorf("enumeration item: %w", err)
	}
	if p.atPunct("..") {
		// A code range; only the upper bound matters for the bit-width
		// and ordering algebra this compiler implements.
		p.advance()
		value, err = p.parseConstIntExpr()
		if err != nil {
			return ir.EnumItem{}, fmt.Errorf("enumeration item: %w", err)
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return ir.EnumItem{}, fmt.Errorf("enumeration item: %w", err)
	}
	return ir.EnumItem{Name: name, Value: value}, nil
}

// _____________________________________________________________________
//
// select (NAME) { case IDENT, ... : StructVarDef* ... [default: ...] }
// _____________________________________________________________________

func (p *parser) parseSelect(parent ir.Handle) (ir.Handle, error) {
	p.advance() // "select"
	if err := p.expectPunct("("); err != nil {
		return ir.InvalidHandle, fmt.Errorf("select: %w", err)
	}
	testSymbol, err := p.expectIdent("select test symbol")
	if err != nil {
		return ir.InvalidHandle, fmt.Errorf("select: %w", err)
	}
	if err := p.expectPunct(")"); err != nil {
		return ir.InvalidHandle, fmt.Errorf("select: %w", err)
	}
	if err := p.expectPunct("{"); err != nil {
		return ir.InvalidHandle, fmt.Errorf("select: %w", err)
	}

	h := p.col.AddNested(ir.Def{Parent: parent, TypeID: -1, Data: ir.SelectData{}})

	var cases []ir.Handle
	for !p.atPunct("}") {
		switch {
		case p.atKeyword("case"):
			caseH, err := p.parseCase(h)
			if err != nil {
				return ir.InvalidHandle, err
			}
			cases = append(cases, caseH)
		case p.atKeyword("default"):
			caseH, err := p.parseDefaultCase(h)
			if err != nil {
				return ir.InvalidHandle, err
			}
			cases = append(cases, caseH)
		default:
			return ir.InvalidHandle, p.fail("select", fmt.Sprintf("expected 'case' or 'default', found %q", p.cur().text))
		}
	}
	p.advance() // "}"

	p.col.Def(h).Data = ir.SelectData{TestSymbol: testSymbol, Cases: cases}
	return h, nil
}

func (p *parser) parseCase(parent ir.Handle) (ir.Handle, error) {
	line := p.cur().line
	p.advance() // "case"
	conds, err := p.parseIdentifierList()
	if err != nil {
		return ir.InvalidHandle, fmt.Errorf("case: %w", err)
	}
	if err := p.expectPunct(":"); err != nil {
		return ir.InvalidHandle, fmt.Errorf("case: %w", err)
	}
	h := p.col.AddNested(ir.Def{Parent: parent, TypeID: -1, Line: line, Data: ir.CaseData{}})
	members, err := p.parseCaseMembers(h)
	if err != nil {
		return ir.InvalidHandle, err
	}
	p.col.Def(h).Data = ir.CaseData{Members: members, Cond: conds}
	return h, nil
}

func (p *parser) parseDefaultCase(parent ir.Handle) (ir.Handle, error) {
	line := p.cur().line
	p.advance() // "default"
	if err := p.expectPunct(":"); err != nil {
		return ir.InvalidHandle, fmt.Errorf("default case: %w", err)
	}
	h := p.col.AddNested(ir.Def{Parent: parent, TypeID: -1, Line: line, Data: ir.DefaultCaseData{}})
	members, err := p.parseCaseMembers(h)
	if err != nil {
		return ir.InvalidHandle, err
	}
	p.col.Def(h).Data = ir.DefaultCaseData{Members: members}
	return h, nil
}

func (p *parser) parseCaseMembers(parent ir.Handle) ([]ir.Handle, error) {
	var members []ir.Handle
	for !p.atKeyword("case") && !p.atKeyword("default") && !p.atPunct("}") {
		if p.atEOF() {
			return nil, p.fail("select", "unterminated case body")
		}
		m, err := p.parseStructVarDef(parent)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func (p *parser) parseIdentifierList() ([]string, error) {
	var names []string
	for {
		name, err := p.expectIdent("case condition")
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	return names, nil
}

// _____________________________________________________________________
//
// Vector / dynamic-vector / size extensions
// _____________________________________________________________________

// parseExtensions applies zero or more trailing `[n]`, `[[n]]`,
// `<a..b>`, `<<a..b>>` or `(n[:unit])` extensions to h, re-parenting h
// under a freshly created wrapper each time a vector is seen (moving
// h's Name/Flags onto the wrapper, per original_source/core.py's
// WrapperDef.embedElement) and simply attaching a Size to whichever
// handle is currently "outermost" for a size extension. It returns the
// outermost handle after every extension has been applied.
func (p *parser) parseExtensions(parent ir.Handle, h ir.Handle) (ir.Handle, error) {
	current := h
	for {
		switch {
		case p.atPunct("[[") || p.atPunct("["):
			itemBased := p.atPunct("[[")
			wrapped, err := p.parseStaticVector(parent, current, itemBased)
			if err != nil {
				return ir.InvalidHandle, err
			}
			current = wrapped
		case p.atPunct("<<") || p.atPunct("<"):
			itemBased := p.atPunct("<<")
			wrapped, err := p.parseDynamicVector(parent, current, itemBased)
			if err != nil {
				return ir.InvalidHandle, err
			}
			current = wrapped
		case p.atPunct("("):
			if err := p.parseSizeDef(current); err != nil {
				return ir.InvalidHandle, err
			}
		default:
			return current, nil
		}
	}
}

func (p *parser) wrapElement(parent, elemH ir.Handle, data ir.DefData) ir.Handle {
	inner := p.col.Def(elemH)
	wrapper := ir.Def{
		Name:   inner.Name,
		Parent: parent,
		Flags:  inner.Flags,
		TypeID: -1,
		Line:   inner.Line,
		Data:   data,
	}
	wrapperH := p.col.AddNested(wrapper)
	inner.Name = ""
	inner.Flags = 0
	inner.Parent = wrapperH
	return wrapperH
}

func (p *parser) parseStaticVector(parent, elemH ir.Handle, itemBased bool) (ir.Handle, error) {
	if itemBased {
		p.advance() // "[["
	} else {
		p.advance() // "["
	}

	var length ir.IntElement
	unit := ir.UnitBytes
	if !p.atPunct("]") && !p.atPunct("]]") {
		var err error
		length, err = p.parseIntExpr()
		if err != nil {
			return ir.InvalidHandle, fmt.Errorf("vector length: %w", err)
		}
		if !itemBased && p.atPunct(":") {
			var err error
			unit, err = p.parseSizeUnitSuffix()
			if err != nil {
				return ir.InvalidHandle, err
			}
		}
	}

	closing := "]"
	if itemBased {
		closing = "]]"
	}
	if err := p.expectPunct(closing); err != nil {
		return ir.InvalidHandle, fmt.Errorf("vector: %w", err)
	}

	if length == nil {
		length = ir.IntLiteral{Value: 0}
	}
	data := ir.StaticVectorData{Element: elemH, Length: length, ItemBased: itemBased, LengthUnit: unit}
	return p.wrapElement(parent, elemH, data), nil
}

func (p *parser) parseDynamicVector(parent, elemH ir.Handle, itemBased bool) (ir.Handle, error) {
	if itemBased {
		p.advance() // "<<"
	} else {
		p.advance() // "<"
	}

	first, err := p.parseIntExpr()
	if err != nil {
		return ir.InvalidHandle, fmt.Errorf("dynamic vector bound: %w", err)
	}
	lengthMin := ir.IntElement(ir.IntLiteral{Value: 0})
	lengthMax := first
	if p.atPunct("..") {
		p.advance()
		lengthMax, err = p.parseIntExpr()
		if err != nil {
			return ir.InvalidHandle, fmt.Errorf("dynamic vector bound: %w", err)
		}
		lengthMin = first
	}

	unit := ir.UnitBytes
	if !itemBased && p.atPunct(":") {
		unit, err = p.parseSizeUnitSuffix()
		if err != nil {
			return ir.InvalidHandle, err
		}
	}

	closing := ">"
	if itemBased {
		closing = ">>"
	}
	if err := p.expectPunct(closing); err != nil {
		return ir.InvalidHandle, fmt.Errorf("dynamic vector: %w", err)
	}

	data := ir.DynamicVectorData{Element: elemH, LengthMin: lengthMin, LengthMax: lengthMax, ItemBased: itemBased, LengthUnit: unit}
	return p.wrapElement(parent, elemH, data), nil
}

// parseSizeDef parses `(n[:unit])` or `(name[:unit])` and attaches the
// result directly to h, the definition it qualifies (no wrapping: a
// size annotation only ever constrains an existing definition's own
// width).
func (p *parser) parseSizeDef(h ir.Handle) error {
	p.advance() // "("
	var length ir.IntElement
	if p.atIdent() {
		length = ir.IntSymbol{Name: p.advance().text}
	} else {
		var err error
		length, err = p.parseIntExpr()
		if err != nil {
			return fmt.Errorf("size: %w", err)
		}
	}
	unit := ir.UnitBytes
	if p.atPunct(":") {
		var err error
		unit, err = p.parseSizeUnitSuffix()
		if err != nil {
			return err
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return fmt.Errorf("size: %w", err)
	}
	p.col.Def(h).Size = &ir.SizeDef{Length: length, Unit: unit}
	return nil
}

func (p *parser) parseSizeUnitSuffix() (ir.Unit, error) {
	p.advance() // ":"
	switch {
	case p.atKeyword("bits"):
		p.advance()
		return ir.UnitBits, nil
	case p.atKeyword("bytes"):
		p.advance()
		return ir.UnitBytes, nil
	}
	return ir.UnitBytes, p.fail("size unit", fmt.Sprintf("expected 'bits' or 'bytes', found %q", p.cur().text))
}

// _____________________________________________________________________
//
// Integer expressions: `^` (right-assoc) > `*` (left) > `+ -` (left)
// _____________________________________________________________________

func (p *parser) parseIntExpr() (ir.IntElement, error) {
	return p.parseAddSub()
}

func (p *parser) parseAddSub() (ir.IntElement, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.atPunct("+") || p.atPunct("-") {
		op := p.advance().text
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left, err = foldOrDefer(left, right, op)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *parser) parseMul() (ir.IntElement, error) {
	left, err := p.parsePow()
	if err != nil {
		return nil, err
	}
	for p.atPunct("*") {
		p.advance()
		right, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		left, err = foldOrDefer(left, right, "*")
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// parsePow is right-associative: `2^2^3` parses as `2^(2^3)`.
func (p *parser) parsePow() (ir.IntElement, error) {
	left, err := p.parseIntAtom()
	if err != nil {
		return nil, err
	}
	if p.atPunct("^") {
		p.advance()
		right, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		return foldOrDefer(left, right, "^")
	}
	return left, nil
}

func (p *parser) parseIntAtom() (ir.IntElement, error) {
	if p.atPunct("(") {
		p.advance()
		v, err := p.parseIntExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, fmt.Errorf("integer expression: %w", err)
		}
		return v, nil
	}
	if p.cur().kind == tokInt {
		return ir.IntLiteral{Value: p.advance().ival}, nil
	}
	if p.atIdent() {
		return ir.IntSymbol{Name: p.advance().text}, nil
	}
	return nil, p.fail("integer expression", fmt.Sprintf("expected an integer or symbol, found %q", p.cur().text))
}

// foldOrDefer constant-folds two literals, or, if either operand is a
// symbol, defers the operation by building an exprSymbol that keeps
// both operands and the operator (the normalizer and checker only ever
// need the closed set of symbols it depends on, which
// exprSymbol.RequiredSymbols reports).
func foldOrDefer(a, b ir.IntElement, op string) (ir.IntElement, error) {
	al, aok := a.(ir.IntLiteral)
	bl, bok := b.(ir.IntLiteral)
	if aok && bok {
		switch op {
		case "+":
			return al.Add(bl), nil
		case "-":
			return al.Sub(bl), nil
		case "*":
			return al.Mul(bl), nil
		case "^":
			return al.Pow(bl), nil
		}
	}
	return exprSymbol{a: a, b: b, op: op}, nil
}

// parseConstIntExpr is used where the grammar requires a literal
// expression (enum item codes): it evaluates to an IntLiteral or fails.
func (p *parser) parseConstIntExpr() (ir.IntElement, error) {
	v, err := p.parseIntExpr()
	if err != nil {
		return nil, err
	}
	if _, ok := v.(ir.IntLiteral); !ok {
		return nil, p.fail("enumeration item code", "expected a constant integer expression")
	}
	return v, nil
}

// exprSymbol represents an arithmetic expression that could not be
// folded to a literal because it involves at least one symbol (e.g.
// `n + 1` in a size or vector-length position); its required symbols
// are the union of both operands, same as the original compiler's
// IntExpr tree would report. ir.IntElement's isIntElement marker is
// unexported, so exprSymbol can't declare it directly from outside
// package ir; embedding ir.IntSymbol promotes that marker method
// (shadowed below by exprSymbol's own String/RequiredSymbols) instead.
type exprSymbol struct {
	ir.IntSymbol
	a, b ir.IntElement
	op   string
}

func (e exprSymbol) String() string {
	return fmt.Sprintf("(%s %s %s)", e.a, e.op, e.b)
}

func (e exprSymbol) RequiredSymbols() map[string]bool {
	out := map[string]bool{}
	for name := range e.a.RequiredSymbols() {
		out[name] = true
	}
	for name := range e.b.RequiredSymbols() {
		out[name] = true
	}
	return out
}
