package ast

// LiteralPattern matches a value equal to the literal.
type LiteralPattern struct {
	Base
	Value *Literal
}

// IdentifierPattern binds the whole value to a name.
type IdentifierPattern struct {
	Base
	Name string
}

// ArrayPattern is `[a, b, ...rest]`.
type ArrayPattern struct {
	Base
	Elements []Pattern
	Rest     *IdentifierPattern // nil when absent
}

// PatternField is `key` or `key: pattern` inside an object pattern.
type PatternField struct {
	Base
	Key   string
	Value Pattern
}

// ObjectPattern is `{a, b: c, ...rest}`.
type ObjectPattern struct {
	Base
	Fields []*PatternField
	Rest   *IdentifierPattern // nil when absent
}

func (*LiteralPattern) patternNode()    {}
func (*IdentifierPattern) patternNode() {}
func (*ArrayPattern) patternNode()      {}
func (*ObjectPattern) patternNode()     {}

// PatternNames returns the names bound by p in source order.
func PatternNames(p Pattern) []string {
	var names []string
	var collect func(Pattern)
	collect = func(p Pattern) {
		switch p := p.(type) {
		case *IdentifierPattern:
			names = append(names, p.Name)
		case *ArrayPattern:
			for _, el := range p.Elements {
				collect(el)
			}
			if p.Rest != nil {
				names = append(names, p.Rest.Name)
			}
		case *ObjectPattern:
			for _, f := range p.Fields {
				collect(f.Value)
			}
			if p.Rest != nil {
				names = append(names, p.Rest.Name)
			}
		}
	}
	collect(p)
	return names
}
