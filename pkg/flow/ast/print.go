package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a node as compact source-like text with every binary operation
// parenthesized. It is used in diagnostics and tests.
func Format(node Node) string {
	var sb strings.Builder
	format(&sb, node)
	return sb.String()
}

func format(sb *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *Literal:
		sb.WriteString(FormatLiteral(n))
	case *Identifier:
		sb.WriteString(n.Name)
	case *ArrayLiteral:
		sb.WriteByte('[')
		for i, e := range n.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			format(sb, e)
		}
		sb.WriteByte(']')
	case *ObjectLiteral:
		sb.WriteByte('{')
		for i, f := range n.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			format(sb, f)
		}
		sb.WriteByte('}')
	case *ObjectField:
		fmt.Fprintf(sb, "%s: ", n.Key)
		format(sb, n.Value)
	case *ArrayAt:
		format(sb, n.Array)
		sb.WriteByte('[')
		format(sb, n.Index)
		sb.WriteByte(']')
	case *ObjectMember:
		format(sb, n.Object)
		sb.WriteByte('.')
		sb.WriteString(n.Key)
	case *AgentCall:
		format(sb, n.Agent)
		sb.WriteByte('(')
		if n.Arg != nil {
			format(sb, n.Arg)
		}
		sb.WriteByte(')')
	case *AgentDef:
		sb.WriteByte('(')
		if n.Param != nil {
			format(sb, n.Param)
		}
		sb.WriteString(") -> ")
		format(sb, n.Body)
	case *BinaryExpr:
		sb.WriteByte('(')
		format(sb, n.Left)
		fmt.Fprintf(sb, " %s ", n.Op)
		format(sb, n.Right)
		sb.WriteByte(')')
	case *IfThenElse:
		sb.WriteString("if ")
		format(sb, n.Cond)
		sb.WriteString(" then ")
		format(sb, n.Then)
		sb.WriteString(" else ")
		format(sb, n.Else)
	case *TryCatch:
		sb.WriteString("try ")
		format(sb, n.Try)
		sb.WriteString(" catch ")
		format(sb, n.Catch)
	case *Match:
		sb.WriteString("match ")
		format(sb, n.Value)
		sb.WriteString(" { ")
		for i, c := range n.Cases {
			if i > 0 {
				sb.WriteString(", ")
			}
			format(sb, c)
		}
		sb.WriteString(" }")
	case *MatchCase:
		format(sb, n.Pattern)
		sb.WriteString(" -> ")
		format(sb, n.Body)
	case *Paren:
		sb.WriteByte('(')
		format(sb, n.Expr)
		sb.WriteByte(')')
	case *NestedGraph:
		sb.WriteString("{ ")
		format(sb, n.Graph)
		sb.WriteString(" }")
	case *Graph:
		for i, s := range n.Statements {
			if i > 0 {
				sb.WriteString("; ")
			}
			format(sb, s)
		}
	case *Annotation:
		fmt.Fprintf(sb, "@%s(%s)", n.Name, FormatLiteral(n.Value))
	case *StaticNode:
		writeAnnotations(sb, n.Annotations)
		writeModifier(sb, n.Modifier)
		fmt.Fprintf(sb, "static %s = ", n.Name)
		format(sb, n.Value)
	case *ComputedNode:
		writeAnnotations(sb, n.Annotations)
		writeModifier(sb, n.Modifier)
		if n.Name != "" {
			fmt.Fprintf(sb, "%s = ", n.Name)
		}
		format(sb, n.Body)
	case *Import:
		fmt.Fprintf(sb, "import %s", strconv.Quote(n.Path))
		if n.Alias != "" {
			fmt.Fprintf(sb, " as %s", n.Alias)
		}
	case *NativeImport:
		fmt.Fprintf(sb, "import native %s", strconv.Quote(n.Name))
		if n.Alias != "" {
			fmt.Fprintf(sb, " as %s", n.Alias)
		}
	case *LiteralPattern:
		sb.WriteString(FormatLiteral(n.Value))
	case *IdentifierPattern:
		sb.WriteString(n.Name)
	case *ArrayPattern:
		sb.WriteByte('[')
		for i, e := range n.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			format(sb, e)
		}
		if n.Rest != nil {
			if len(n.Elements) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("..." + n.Rest.Name)
		}
		sb.WriteByte(']')
	case *ObjectPattern:
		sb.WriteByte('{')
		for i, f := range n.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			format(sb, f)
		}
		if n.Rest != nil {
			if len(n.Fields) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("..." + n.Rest.Name)
		}
		sb.WriteByte('}')
	case *PatternField:
		sb.WriteString(n.Key)
		if id, ok := n.Value.(*IdentifierPattern); !ok || id.Name != n.Key {
			sb.WriteString(": ")
			format(sb, n.Value)
		}
	default:
		fmt.Fprintf(sb, "<%T>", node)
	}
}

// FormatLiteral renders a literal as it would appear in source.
func FormatLiteral(l *Literal) string {
	switch v := l.Value.(type) {
	case nil:
		return "null"
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return fmt.Sprint(l.Value)
}

func writeModifier(sb *strings.Builder, m Modifier) {
	if m == Public {
		sb.WriteString("public ")
	}
}

func writeAnnotations(sb *strings.Builder, anns []*Annotation) {
	for _, a := range anns {
		format(sb, a)
		sb.WriteByte(' ')
	}
}
