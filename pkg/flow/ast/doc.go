// Package ast provides Abstract Syntax Tree (AST) definitions for the flow language.
//
// The AST is a closed sum type: every node implements Node, and the three node
// families (Expr, Stmt, Pattern) are sealed with unexported marker methods so a
// type switch over them is exhaustive within this module. Every node carries the
// source span it was parsed from; diagnostics use it verbatim.
//
// # Core Types
//
// Graph: a non-empty, ordered list of statements. The last computed statement is
// the graph's implicit result.
//
// Statements: StaticNode, ComputedNode, Import, NativeImport
//
// Expressions: Literal, Identifier, ArrayLiteral, ObjectLiteral, ArrayAt,
// ObjectMember, AgentCall, AgentDef, BinaryExpr, IfThenElse, TryCatch, Match,
// Paren, NestedGraph
//
// Patterns: LiteralPattern, IdentifierPattern, ArrayPattern, ObjectPattern
//
// # Basic Usage
//
//	g, err := parser.New().Parse("main.flow")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, stmt := range g.Statements {
//	    if c, ok := stmt.(*ast.ComputedNode); ok {
//	        fmt.Println(c.Name, ast.Format(c.Body))
//	    }
//	}
//
// Use Walk for traversal:
//
//	calls := 0
//	ast.Walk(g, ast.VisitorFunc(func(n ast.Node) error {
//	    if _, ok := n.(*ast.AgentCall); ok {
//	        calls++
//	    }
//	    return nil
//	}))
//
// # Immutability
//
// AST nodes should be treated as immutable after construction. The compiler
// desugars by building new nodes, never by modifying parsed ones.
package ast
