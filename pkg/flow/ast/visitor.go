package ast

import "errors"

// SkipChildren can be returned by a Visitor to skip the children of the current
// node. Walk does not return it.
var SkipChildren = errors.New("skip children")

// Visitor is called for every node during Walk.
// Implement this interface to perform operations on AST nodes
// (collection, analysis, statistics, etc.).
type Visitor interface {
	Visit(Node) error
}

// VisitorFunc adapts a function to a Visitor.
type VisitorFunc func(Node) error

// Visit calls f(n).
func (f VisitorFunc) Visit(n Node) error {
	return f(n)
}

// Walk traverses the AST depth-first in source order, calling the visitor for each
// node before its children. It returns the first error encountered, or nil if
// traversal completes.
func Walk(node Node, visitor Visitor) error {
	if node == nil {
		return nil
	}
	if err := visitor.Visit(node); err != nil {
		if err == SkipChildren {
			return nil
		}
		return err
	}
	for _, child := range Children(node) {
		if err := Walk(child, visitor); err != nil {
			return err
		}
	}
	return nil
}

// Children returns the direct children of a node in source order.
func Children(node Node) []Node {
	var out []Node
	add := func(ns ...Node) {
		for _, n := range ns {
			if n != nil {
				out = append(out, n)
			}
		}
	}

	switch n := node.(type) {
	case *Graph:
		for _, s := range n.Statements {
			add(s)
		}
	case *StaticNode:
		for _, a := range n.Annotations {
			add(a)
		}
		add(n.Value)
	case *ComputedNode:
		for _, a := range n.Annotations {
			add(a)
		}
		add(n.Body)
	case *Annotation:
		add(n.Value)
	case *ArrayLiteral:
		for _, e := range n.Elements {
			add(e)
		}
	case *ObjectLiteral:
		for _, f := range n.Fields {
			add(f)
		}
	case *ObjectField:
		add(n.Value)
	case *ArrayAt:
		add(n.Array, n.Index)
	case *ObjectMember:
		add(n.Object)
	case *AgentCall:
		add(n.Agent, n.Arg)
	case *AgentDef:
		add(n.Param, n.Body)
	case *BinaryExpr:
		add(n.Left, n.Right)
	case *IfThenElse:
		add(n.Cond, n.Then, n.Else)
	case *TryCatch:
		add(n.Try, n.Catch)
	case *Match:
		add(n.Value)
		for _, c := range n.Cases {
			add(c)
		}
	case *MatchCase:
		add(n.Pattern, n.Body)
	case *Paren:
		add(n.Expr)
	case *NestedGraph:
		add(n.Graph)
	case *LiteralPattern:
		add(n.Value)
	case *ArrayPattern:
		for _, e := range n.Elements {
			add(e)
		}
		if n.Rest != nil {
			add(n.Rest)
		}
	case *ObjectPattern:
		for _, f := range n.Fields {
			add(f)
		}
		if n.Rest != nil {
			add(n.Rest)
		}
	case *PatternField:
		add(n.Value)
	}
	return out
}
