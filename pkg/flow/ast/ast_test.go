package ast

import (
	"reflect"
	"testing"
)

func num(v float64) *Literal { return &Literal{Kind: LiteralNumber, Value: v} }
func ident(name string) *Identifier { return &Identifier{Name: name} }

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{
			name: "precedence",
			node: &BinaryExpr{Kind: PlusMinus, Op: "+", Left: num(1), Right: &BinaryExpr{
				Kind: MulDivMod, Op: "*", Left: num(2),
				Right: &BinaryExpr{Kind: Power, Op: "^", Left: num(3), Right: num(4)},
			}},
			want: "(1 + (2 * (3 ^ 4)))",
		},
		{
			name: "curried call",
			node: &AgentCall{Agent: &AgentCall{Agent: ident("f"), Arg: num(1)}, Arg: num(2)},
			want: "f(1)(2)",
		},
		{
			name: "zero argument call",
			node: &AgentCall{Agent: ident("now")},
			want: "now()",
		},
		{
			name: "lambda with array pattern",
			node: &AgentDef{
				Param: &ArrayPattern{
					Elements: []Pattern{&IdentifierPattern{Name: "a"}},
					Rest:     &IdentifierPattern{Name: "rest"},
				},
				Body: ident("a"),
			},
			want: "([a, ...rest]) -> a",
		},
		{
			name: "object pattern shorthand",
			node: &ObjectPattern{Fields: []*PatternField{
				{Key: "a", Value: &IdentifierPattern{Name: "a"}},
				{Key: "b", Value: &IdentifierPattern{Name: "c"}},
			}},
			want: "{a, b: c}",
		},
		{
			name: "statements",
			node: &Graph{Statements: []Stmt{
				&StaticNode{Name: "a", Value: &Literal{Kind: LiteralString, Value: "x"}},
				&ComputedNode{Modifier: Public, Name: "b", Body: &ObjectMember{Object: ident("a"), Key: "k"}},
				&Import{Path: "./lib.flow", Alias: "lib"},
			}},
			want: `static a = "x"; public b = a.k; import "./lib.flow" as lib`,
		},
		{
			name: "literals",
			node: &ArrayLiteral{Elements: []Expr{
				num(1.5),
				&Literal{Kind: LiteralBoolean, Value: true},
				&Literal{Kind: LiteralNull},
			}},
			want: "[1.5, true, null]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.node); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWalk_Order(t *testing.T) {
	g := &Graph{Statements: []Stmt{
		&ComputedNode{Name: "x", Body: &BinaryExpr{Op: "+", Left: ident("a"), Right: ident("b")}},
		&ComputedNode{Body: &AgentCall{Agent: ident("f"), Arg: ident("x")}},
	}}

	var names []string
	err := Walk(g, VisitorFunc(func(n Node) error {
		if id, ok := n.(*Identifier); ok {
			names = append(names, id.Name)
		}
		return nil
	}))
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	want := []string{"a", "b", "f", "x"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("visited %v, want %v", names, want)
	}
}

func TestWalk_SkipChildren(t *testing.T) {
	g := &Graph{Statements: []Stmt{
		&ComputedNode{Body: &NestedGraph{Graph: &Graph{Statements: []Stmt{
			&ComputedNode{Body: ident("hidden")},
		}}}},
		&ComputedNode{Body: ident("seen")},
	}}

	var names []string
	err := Walk(g, VisitorFunc(func(n Node) error {
		switch n := n.(type) {
		case *NestedGraph:
			return SkipChildren
		case *Identifier:
			names = append(names, n.Name)
		}
		return nil
	}))
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if !reflect.DeepEqual(names, []string{"seen"}) {
		t.Errorf("visited %v", names)
	}
}

func TestGraphResultAndNames(t *testing.T) {
	last := &ComputedNode{Name: "c", Body: ident("b")}
	g := &Graph{Statements: []Stmt{
		&StaticNode{Name: "a", Value: num(1)},
		&ComputedNode{Name: "b", Body: ident("a")},
		last,
		&NativeImport{Name: "fetch"},
		&Import{Path: "./x.flow"},
	}}

	if g.Result() != last {
		t.Errorf("Result() = %v", g.Result())
	}
	want := []string{"a", "b", "c", "fetch"}
	if got := g.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestPatternNames(t *testing.T) {
	p := &ArrayPattern{
		Elements: []Pattern{
			&IdentifierPattern{Name: "a"},
			&LiteralPattern{Value: num(0)},
			&ObjectPattern{
				Fields: []*PatternField{{Key: "k", Value: &IdentifierPattern{Name: "v"}}},
				Rest:   &IdentifierPattern{Name: "others"},
			},
		},
		Rest: &IdentifierPattern{Name: "tail"},
	}
	want := []string{"a", "v", "others", "tail"}
	if got := PatternNames(p); !reflect.DeepEqual(got, want) {
		t.Errorf("PatternNames() = %v, want %v", got, want)
	}
}

func TestIsConstant(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want bool
	}{
		{"number", num(1), true},
		{"nested", &ArrayLiteral{Elements: []Expr{&ObjectLiteral{Fields: []*ObjectField{{Key: "a", Value: num(1)}}}}}, true},
		{"paren", &Paren{Expr: num(1)}, true},
		{"identifier", ident("x"), false},
		{"array with identifier", &ArrayLiteral{Elements: []Expr{ident("x")}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConstant(tt.expr); got != tt.want {
				t.Errorf("IsConstant() = %v, want %v", got, tt.want)
			}
		})
	}
}
