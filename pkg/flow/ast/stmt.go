package ast

// Annotation is `@name(literal)` in front of a statement. It becomes a node-level
// parameter of the emitted node.
type Annotation struct {
	Base
	Name  string
	Value *Literal
}

// StaticNode is `static name = expr;`, a compile-time constant.
type StaticNode struct {
	Base
	Modifier    Modifier
	Name        string
	Value       Expr
	Annotations []*Annotation
}

// ComputedNode is `[name =] expr;`. Name is "" for anonymous statements.
type ComputedNode struct {
	Base
	Modifier    Modifier
	Name        string
	Body        Expr
	Annotations []*Annotation
}

// Import is `import "path" [as alias];`.
type Import struct {
	Base
	Path  string
	Alias string
}

// NativeImport is `import native "name" [as alias];`. It binds a host agent name
// without a graph node.
type NativeImport struct {
	Base
	Name  string
	Alias string
}

func (*StaticNode) stmtNode()   {}
func (*ComputedNode) stmtNode() {}
func (*Import) stmtNode()       {}
func (*NativeImport) stmtNode() {}
