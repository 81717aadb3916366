package ir

import "fmt"

// IntElement is either an integer literal or a reference to a symbol that
// resolves to an integer at some enclosing scope. It is the closed tagged
// union the original eTPL compiler calls IntLiteral | IntSymbol.
type IntElement interface {
	fmt.Stringer

	// RequiredSymbols returns the names this element depends on: empty
	// for a literal, the symbol name itself for a reference.
	RequiredSymbols() map[string]bool

	isIntElement()
}

// IntLiteral is a constant integer value, folded at construction time.
type IntLiteral struct {
	Value int64
}

func (l IntLiteral) String() string                 { return fmt.Sprintf("%d", l.Value) }
func (l IntLiteral) RequiredSymbols() map[string]bool { return map[string]bool{} }
func (IntLiteral) isIntElement()                     {}

// Add, Sub, Mul and Pow implement the constant-folding algebra over
// integer literals that the eTPL grammar's `+ - * ^` operators need.
func (l IntLiteral) Add(o IntLiteral) IntLiteral { return IntLiteral{l.Value + o.Value} }
func (l IntLiteral) Sub(o IntLiteral) IntLiteral { return IntLiteral{l.Value - o.Value} }
func (l IntLiteral) Mul(o IntLiteral) IntLiteral { return IntLiteral{l.Value * o.Value} }

func (l IntLiteral) Pow(o IntLiteral) IntLiteral {
	result := int64(1)
	for i := int64(0); i < o.Value; i++ {
		result *= l.Value
	}
	return IntLiteral{result}
}

// IntSymbol is a reference to a free variable: a parameter, a struct
// member processed so far, a Const, or a configured global symbol.
type IntSymbol struct {
	Name string
}

func (s IntSymbol) String() string { return "$" + s.Name }
func (s IntSymbol) RequiredSymbols() map[string]bool {
	return map[string]bool{s.Name: true}
}
func (IntSymbol) isIntElement() {}
