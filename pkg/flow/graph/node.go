package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// RefPrefix marks a string value as a reference to another node.
const RefPrefix = ":"

// Reserved node keys. Annotations cannot use them.
const (
	KeyAgent    = "agent"
	KeyInputs   = "inputs"
	KeyParams   = "params"
	KeyGraph    = "graph"
	KeyIsResult = "isResult"
	KeyValue    = "value"
)

// ReservedKeys lists the keys with a fixed meaning on a node.
var ReservedKeys = map[string]bool{
	KeyAgent:    true,
	KeyInputs:   true,
	KeyParams:   true,
	KeyGraph:    true,
	KeyIsResult: true,
	KeyValue:    true,
}

// Ref returns the reference string for a node name.
func Ref(name string) string {
	return RefPrefix + name
}

// RefName returns the node name a value refers to, if it is a reference.
func RefName(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, RefPrefix) || len(s) == len(RefPrefix) {
		return "", false
	}
	return s[len(RefPrefix):], true
}

// Node is one entry of a graph: a static value or an agent invocation.
type Node struct {
	Static bool
	Value  any // Static nodes only

	Agent    string
	Inputs   *OrderedMap[any]
	Params   *OrderedMap[any]
	Graph    *Graph
	IsResult bool

	// Annotations are extra node-level keys from @name(value) annotations.
	Annotations *OrderedMap[any]
}

// NewStatic creates a static node.
func NewStatic(value any) *Node {
	return &Node{Static: true, Value: value}
}

// NewComputed creates a node that invokes agent with inputs.
func NewComputed(agent string, inputs *OrderedMap[any]) *Node {
	return &Node{Agent: agent, Inputs: inputs}
}

// Fields returns the node as an ordered object: value or agent, inputs, params,
// graph, isResult, then annotations.
func (n *Node) Fields() *OrderedMap[any] {
	m := NewOrderedMap[any]()
	if n.Static {
		m.Set(KeyValue, n.Value)
	} else {
		m.Set(KeyAgent, n.Agent)
		if n.Inputs != nil {
			m.Set(KeyInputs, n.Inputs)
		}
		if n.Params != nil {
			m.Set(KeyParams, n.Params)
		}
		if n.Graph != nil {
			m.Set(KeyGraph, n.Graph)
		}
		if n.IsResult {
			m.Set(KeyIsResult, true)
		}
	}
	n.Annotations.Each(func(k string, v any) bool {
		m.Set(k, v)
		return true
	})
	return m
}

// MarshalJSON implements json.Marshaler.
func (n *Node) MarshalJSON() ([]byte, error) {
	return n.Fields().MarshalJSON()
}

// MarshalYAML implements yaml.Marshaler.
func (n *Node) MarshalYAML() (interface{}, error) {
	return n.Fields().MarshalYAML()
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	fields := NewOrderedMap[any]()
	if err := fields.UnmarshalJSON(data); err != nil {
		return err
	}
	*n = Node{}
	var err error
	fields.Each(func(k string, v any) bool {
		switch k {
		case KeyValue:
			n.Static = true
			n.Value = v
		case KeyAgent:
			s, ok := v.(string)
			if !ok {
				err = fmt.Errorf("agent must be a string, got %T", v)
				return false
			}
			n.Agent = s
		case KeyInputs:
			n.Inputs, err = asObject(k, v)
		case KeyParams:
			n.Params, err = asObject(k, v)
		case KeyGraph:
			var obj *OrderedMap[any]
			if obj, err = asObject(k, v); err == nil {
				n.Graph, err = graphFromObject(obj)
			}
		case KeyIsResult:
			b, _ := v.(bool)
			n.IsResult = b
		default:
			if n.Annotations == nil {
				n.Annotations = NewOrderedMap[any]()
			}
			n.Annotations.Set(k, v)
		}
		return err == nil
	})
	return err
}

func asObject(key string, v any) (*OrderedMap[any], error) {
	m, ok := v.(*OrderedMap[any])
	if !ok {
		return nil, fmt.Errorf("%s must be an object, got %T", key, v)
	}
	return m, nil
}

// Graph is a compiled program or nested sub-graph.
type Graph struct {
	Version string // Top-level graphs only
	Nodes   *OrderedMap[*Node]
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{Nodes: NewOrderedMap[*Node]()}
}

// Fields returns the graph as an ordered object.
func (g *Graph) Fields() *OrderedMap[any] {
	m := NewOrderedMap[any]()
	if g.Version != "" {
		m.Set("version", g.Version)
	}
	nodes := g.Nodes
	if nodes == nil {
		nodes = NewOrderedMap[*Node]()
	}
	m.Set("nodes", nodes)
	return m
}

// MarshalJSON implements json.Marshaler.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return g.Fields().MarshalJSON()
}

// MarshalYAML implements yaml.Marshaler.
func (g *Graph) MarshalYAML() (interface{}, error) {
	return g.Fields().MarshalYAML()
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Graph) UnmarshalJSON(data []byte) error {
	obj := NewOrderedMap[any]()
	if err := obj.UnmarshalJSON(data); err != nil {
		return err
	}
	parsed, err := graphFromObject(obj)
	if err != nil {
		return err
	}
	*g = *parsed
	return nil
}

func graphFromObject(obj *OrderedMap[any]) (*Graph, error) {
	g := New()
	if v, ok := obj.Get("version"); ok {
		s, _ := v.(string)
		g.Version = s
	}
	nodesValue, ok := obj.Get("nodes")
	if !ok {
		return nil, fmt.Errorf("graph is missing 'nodes'")
	}
	nodes, err := asObject("nodes", nodesValue)
	if err != nil {
		return nil, err
	}
	nodes.Each(func(name string, v any) bool {
		var raw []byte
		if raw, err = marshalNoEscape(v); err != nil {
			return false
		}
		node := &Node{}
		if err = node.UnmarshalJSON(raw); err != nil {
			err = fmt.Errorf("node %q: %w", name, err)
			return false
		}
		g.Nodes.Set(name, node)
		return true
	})
	return g, err
}

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Encode writes g in the given format. indent applies to JSON only; an empty
// indent produces compact JSON.
func Encode(w io.Writer, g *Graph, format Format, indent string) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if indent != "" {
			enc.SetIndent("", indent)
		}
		return enc.Encode(g)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// Decode reads a JSON graph.
func Decode(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	g := New()
	if err := g.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return g, nil
}
