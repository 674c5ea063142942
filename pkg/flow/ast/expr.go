package ast

// LiteralKind is the type of a literal value.
type LiteralKind string

const (
	LiteralNumber  LiteralKind = "number"
	LiteralString  LiteralKind = "string"
	LiteralBoolean LiteralKind = "boolean"
	LiteralNull    LiteralKind = "null"
)

// Literal is a number, string, boolean or null constant.
// Value holds a float64, string, bool or nil respectively.
type Literal struct {
	Base
	Kind  LiteralKind
	Value any
}

// Identifier is a name reference.
type Identifier struct {
	Base
	Name string

	// Builtin marks identifiers introduced by desugaring that always name a
	// built-in agent and bypass scope resolution.
	Builtin bool
}

// ContextName is the special identifier bound to the annotation object of the
// enclosing lambda call.
const ContextName = "@context"

// IsContext reports whether the identifier is @context.
func (i *Identifier) IsContext() bool {
	return i.Name == ContextName
}

// ArrayLiteral is `[a, b, c]`.
type ArrayLiteral struct {
	Base
	Elements []Expr
}

// ObjectField is one `key: value` entry of an object literal.
type ObjectField struct {
	Base
	Key   string
	Value Expr
}

// ObjectLiteral is `{k: v, ...}`.
type ObjectLiteral struct {
	Base
	Fields []*ObjectField
}

// ArrayAt is `array[index]`.
type ArrayAt struct {
	Base
	Array Expr
	Index Expr
}

// ObjectMember is `object.key`.
type ObjectMember struct {
	Base
	Object Expr
	Key    string
}

// AgentCall is a single-argument call. `f(a, b)` parses as `f(a)(b)`; Arg is nil
// for the zero-argument call `f()`.
type AgentCall struct {
	Base
	Agent Expr
	Arg   Expr
}

// AgentDef is a single-parameter lambda. `(a, b) -> e` parses as
// `(a) -> (b) -> e`; Param is nil for `() -> e`. Generated marks lambdas the
// compiler introduces while desugaring; they do not bind @context.
type AgentDef struct {
	Base
	Param     Pattern
	Body      Expr
	Generated bool
}

// BinaryKind is the precedence level of a binary operator.
type BinaryKind string

const (
	Pipeline   BinaryKind = "pipeline"
	Logical    BinaryKind = "logical"
	Equality   BinaryKind = "equality"
	Relational BinaryKind = "relational"
	PlusMinus  BinaryKind = "plus_minus"
	MulDivMod  BinaryKind = "mul_div_mod"
	Power      BinaryKind = "power"
)

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	Base
	Kind  BinaryKind
	Op    string
	Left  Expr
	Right Expr
}

// IfThenElse is `if cond then a else b`.
type IfThenElse struct {
	Base
	Cond Expr
	Then Expr
	Else Expr
}

// TryCatch is `try expr catch handler`. The handler is called with the error.
type TryCatch struct {
	Base
	Try   Expr
	Catch Expr
}

// MatchCase is one `pattern -> body` arm of a match.
type MatchCase struct {
	Base
	Pattern Pattern
	Body    Expr
}

// Match is `match value { pattern -> body, ... }`.
type Match struct {
	Base
	Value Expr
	Cases []*MatchCase
}

// Paren is a parenthesized expression.
type Paren struct {
	Base
	Expr Expr
}

// NestedGraph is a `{ statements }` block used as an expression.
type NestedGraph struct {
	Base
	Graph *Graph
}

func (*Literal) exprNode()       {}
func (*Identifier) exprNode()    {}
func (*ArrayLiteral) exprNode()  {}
func (*ObjectLiteral) exprNode() {}
func (*ArrayAt) exprNode()       {}
func (*ObjectMember) exprNode()  {}
func (*AgentCall) exprNode()     {}
func (*AgentDef) exprNode()      {}
func (*BinaryExpr) exprNode()    {}
func (*IfThenElse) exprNode()    {}
func (*TryCatch) exprNode()      {}
func (*Match) exprNode()         {}
func (*Paren) exprNode()         {}
func (*NestedGraph) exprNode()   {}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*Paren)
		if !ok {
			return e
		}
		e = p.Expr
	}
}

// IsConstant reports whether e is built only from literals, arrays and objects.
func IsConstant(e Expr) bool {
	switch e := Unparen(e).(type) {
	case *Literal:
		return true
	case *ArrayLiteral:
		for _, el := range e.Elements {
			if !IsConstant(el) {
				return false
			}
		}
		return true
	case *ObjectLiteral:
		for _, f := range e.Fields {
			if !IsConstant(f.Value) {
				return false
			}
		}
		return true
	}
	return false
}
