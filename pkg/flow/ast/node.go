package ast

import "mercator-hq/flowc/pkg/flow/source"

// Node is implemented by every AST node.
type Node interface {
	// Span returns the source range the node was parsed from.
	Span() source.Span
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement of a Graph.
type Stmt interface {
	Node
	stmtNode()
}

// Pattern is a destructuring pattern used by lambda parameters and match cases.
type Pattern interface {
	Node
	patternNode()
}

// Base holds the source span shared by all nodes.
type Base struct {
	Context source.Span
}

// Span returns the node's source span.
func (b Base) Span() source.Span {
	return b.Context
}

// At returns a Base anchored at span.
func At(span source.Span) Base {
	return Base{Context: span}
}

// Modifier is the visibility of a top-level statement.
type Modifier string

const (
	Private Modifier = "private" // Default
	Public  Modifier = "public"  // Exported to importers
)

// Graph is a block of statements: a file, a nested graph or a lambda body.
type Graph struct {
	Base
	Statements []Stmt
}

// Result returns the last computed statement, which is the graph's implicit
// result, or nil if there is none.
func (g *Graph) Result() *ComputedNode {
	for i := len(g.Statements) - 1; i >= 0; i-- {
		if c, ok := g.Statements[i].(*ComputedNode); ok {
			return c
		}
	}
	return nil
}

// Names returns the names bound by the graph's statements in source order.
func (g *Graph) Names() []string {
	var names []string
	for _, stmt := range g.Statements {
		if name := StmtName(stmt); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// StmtName returns the name a statement binds, or "" for anonymous statements and
// unaliased imports.
func StmtName(stmt Stmt) string {
	switch s := stmt.(type) {
	case *StaticNode:
		return s.Name
	case *ComputedNode:
		return s.Name
	case *Import:
		return s.Alias
	case *NativeImport:
		if s.Alias != "" {
			return s.Alias
		}
		return s.Name
	}
	return ""
}
