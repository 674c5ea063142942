package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Issue is one structural problem found by Validate.
type Issue struct {
	Path    string // Dotted path of the node, e.g. "f.graph.x"
	Message string
}

// String returns "path: message".
func (i *Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError collects structural issues instead of stopping at the first.
type ValidationError struct {
	Issues []*Issue
}

// Add records an issue.
func (e *ValidationError) Add(path, format string, args ...any) {
	e.Issues = append(e.Issues, &Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any issue was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Issues) > 0
}

// ToError returns nil when there are no issues.
func (e *ValidationError) ToError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return "invalid graph: " + e.Issues[0].String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid graph: found %d error(s):", len(e.Issues))
	for _, issue := range e.Issues {
		sb.WriteString("\n  - ")
		sb.WriteString(issue.String())
	}
	return sb.String()
}

// Agents that define a sub-graph with a parameter, and those whose sub-graph
// only sees its inputs.
const (
	AgentDefAgent    = "defAgent"
	AgentNestedAgent = "nestedAgent"
	ContextRef       = "@context"
)

// Validate checks that a graph is well formed:
//   - static nodes carry no agent, computed nodes name one
//   - every ":name" reference in inputs resolves in the enclosing scope
//   - a graph has at most one isResult node; nested graphs exactly one
//   - nested graphs are non-empty
//
// A nested graph can reference its own nodes, the input names of the node that
// owns it, its parameter and, for defAgent, @context.
func Validate(g *Graph) error {
	v := &ValidationError{}
	validateGraph(v, "", g, nil, false)
	return v.ToError()
}

func validateGraph(v *ValidationError, path string, g *Graph, outer map[string]bool, nested bool) {
	if g.Nodes.Len() == 0 {
		if nested {
			v.Add(path, "nested graph is empty")
		}
		return
	}

	scope := make(map[string]bool, len(outer)+g.Nodes.Len())
	for name := range outer {
		scope[name] = true
	}
	for _, name := range g.Nodes.Keys() {
		scope[name] = true
	}

	var results []string
	g.Nodes.Each(func(name string, n *Node) bool {
		nodePath := join(path, name)
		if n.IsResult {
			results = append(results, name)
		}
		if n.Static {
			if n.Agent != "" {
				v.Add(nodePath, "static node cannot name an agent")
			}
			return true
		}
		if n.Agent == "" {
			v.Add(nodePath, "computed node is missing an agent")
		}
		for _, ref := range References(n.Inputs) {
			if !scope[ref] {
				v.Add(nodePath, "reference %q does not resolve to a node", RefPrefix+ref)
			}
		}
		if n.Graph != nil {
			validateGraph(v, join(nodePath, KeyGraph), n.Graph, innerScope(n), true)
		}
		return true
	})

	switch {
	case len(results) > 1:
		v.Add(path, "multiple result nodes: %s", strings.Join(results, ", "))
	case len(results) == 0 && nested:
		v.Add(path, "nested graph has no result node")
	}
}

// innerScope returns the names visible inside n's sub-graph besides its nodes.
func innerScope(n *Node) map[string]bool {
	scope := make(map[string]bool)
	for _, k := range n.Inputs.Keys() {
		scope[k] = true
	}
	if arg, ok := n.Params.Get("arg"); ok {
		if s, ok := arg.(string); ok {
			scope[s] = true
		}
	}
	if n.Agent == AgentDefAgent {
		scope[ContextRef] = true
	}
	return scope
}

// References returns the sorted, deduplicated node names referenced anywhere in v.
func References(v any) []string {
	seen := make(map[string]bool)
	collectRefs(v, seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectRefs(v any, seen map[string]bool) {
	switch t := v.(type) {
	case *OrderedMap[any]:
		t.Each(func(_ string, child any) bool {
			collectRefs(child, seen)
			return true
		})
	case []any:
		for _, child := range t {
			collectRefs(child, seen)
		}
	default:
		if name, ok := RefName(v); ok {
			seen[name] = true
		}
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// Stats summarizes a graph.
type Stats struct {
	Nodes    int // All nodes, including nested ones
	Static   int
	Computed int
	Nested   int // Nodes that own a sub-graph
	MaxDepth int // Deepest sub-graph nesting; 0 for a flat graph
}

// Collect computes statistics for g.
func Collect(g *Graph) Stats {
	var s Stats
	collect(&s, g, 0)
	return s
}

func collect(s *Stats, g *Graph, depth int) {
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	g.Nodes.Each(func(_ string, n *Node) bool {
		s.Nodes++
		if n.Static {
			s.Static++
		} else {
			s.Computed++
		}
		if n.Graph != nil {
			s.Nested++
			collect(s, n.Graph, depth+1)
		}
		return true
	})
}
