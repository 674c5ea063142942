package graph

import (
	"bytes"
	"strings"
	"testing"
)

func obj(kv ...any) *OrderedMap[any] {
	m := NewOrderedMap[any]()
	for i := 0; i < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1])
	}
	return m
}

func sampleGraph() *Graph {
	g := New()
	g.Version = "1.0"
	g.Nodes.Set("b", NewStatic(1.0))
	n := NewComputed("apply", obj("z", ":b", "a", "x<y"))
	n.IsResult = true
	n.Annotations = obj("retry", 3.0)
	g.Nodes.Set("a", n)
	return g
}

func TestEncode_JSONKeepsInsertionOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleGraph(), FormatJSON, ""); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := `{"version":"1.0","nodes":{"b":{"value":1},"a":{"agent":"apply","inputs":{"z":":b","a":"x<y"},"isResult":true,"retry":3}}}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("Encode() =\n%s\nwant\n%s", got, want)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	var first, second bytes.Buffer
	if err := Encode(&first, sampleGraph(), FormatJSON, "  "); err != nil {
		t.Fatal(err)
	}
	if err := Encode(&second, sampleGraph(), FormatJSON, "  "); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("encoding the same graph twice produced different bytes")
	}
}

func TestEncode_YAMLKeepsInsertionOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleGraph(), FormatYAML, ""); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out := buf.String()
	order := []string{"version:", "nodes:", "b:", "value:", "a:", "agent: apply", "inputs:", "z:", "isResult: true", "retry: 3"}
	last := -1
	for _, s := range order {
		idx := strings.Index(out, s)
		if idx < 0 {
			t.Fatalf("YAML output missing %q:\n%s", s, out)
		}
		if idx < last {
			t.Errorf("%q appears out of order in:\n%s", s, out)
		}
		last = idx
	}
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, New(), Format("toml"), ""); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleGraph(), FormatJSON, ""); err != nil {
		t.Fatal(err)
	}
	original := buf.String()

	g, err := Decode(strings.NewReader(original))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := g.Nodes.Keys(); strings.Join(got, ",") != "b,a" {
		t.Errorf("node order = %v", got)
	}
	a, _ := g.Nodes.Get("a")
	if a.Agent != "apply" || !a.IsResult || !a.Annotations.Has("retry") {
		t.Errorf("decoded node = %+v", a)
	}

	buf.Reset()
	if err := Encode(&buf, g, FormatJSON, ""); err != nil {
		t.Fatal(err)
	}
	if buf.String() != original {
		t.Errorf("re-encoded graph differs:\n%s\n%s", buf.String(), original)
	}
}

func TestOrderedMap_SetKeepsPosition(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 3)
	if got := strings.Join(m.Keys(), ","); got != "a,b" {
		t.Errorf("Keys() = %s", got)
	}
	if v, _ := m.Get("a"); v != 3 {
		t.Errorf("Get(a) = %d, want 3", v)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d", m.Len())
	}

	var nilMap *OrderedMap[int]
	if nilMap.Len() != 0 || nilMap.Has("a") {
		t.Error("nil map should be empty")
	}
}

func TestRefName(t *testing.T) {
	tests := []struct {
		value any
		name  string
		ok    bool
	}{
		{":a", "a", true},
		{":@context", "@context", true},
		{":", "", false},
		{"plus", "", false},
		{1.0, "", false},
	}
	for _, tt := range tests {
		name, ok := RefName(tt.value)
		if name != tt.name || ok != tt.ok {
			t.Errorf("RefName(%v) = %q, %v; want %q, %v", tt.value, name, ok, tt.name, tt.ok)
		}
	}
}

func closure() *Graph {
	inner := New()
	inner.Nodes.Set("r", &Node{
		Agent:    "apply",
		Inputs:   obj("agent", "plus", "args", obj("left", ":x", "right", ":y")),
		IsResult: true,
	})
	inner.Nodes.Set("ctx", NewComputed("apply", obj("agent", "identity", "args", ":@context")))

	g := New()
	g.Nodes.Set("y", NewStatic(2.0))
	g.Nodes.Set("f", &Node{
		Agent:  AgentDefAgent,
		Inputs: obj("y", ":y"),
		Params: obj("arg", "x"),
		Graph:  inner,
	})
	g.Nodes.Set("out", &Node{
		Agent:    "apply",
		Inputs:   obj("agent", ":f", "args", []any{1.0}),
		IsResult: true,
	})
	return g
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(g *Graph)
		wantErr string
	}{
		{
			name: "valid closure",
		},
		{
			name: "unresolved reference",
			mutate: func(g *Graph) {
				g.Nodes.Set("bad", NewComputed("apply", obj("args", ":missing")))
			},
			wantErr: `bad: reference ":missing" does not resolve to a node`,
		},
		{
			name: "outer node not captured",
			mutate: func(g *Graph) {
				f, _ := g.Nodes.Get("f")
				f.Inputs = obj()
			},
			wantErr: `f.graph.r: reference ":y" does not resolve`,
		},
		{
			name: "multiple results",
			mutate: func(g *Graph) {
				g.Nodes.Set("again", &Node{Agent: "apply", Inputs: obj("args", ":y"), IsResult: true})
			},
			wantErr: "multiple result nodes: out, again",
		},
		{
			name: "nested graph without result",
			mutate: func(g *Graph) {
				f, _ := g.Nodes.Get("f")
				r, _ := f.Graph.Nodes.Get("r")
				r.IsResult = false
			},
			wantErr: "f.graph: nested graph has no result node",
		},
		{
			name: "computed node without agent",
			mutate: func(g *Graph) {
				g.Nodes.Set("empty", &Node{})
			},
			wantErr: "empty: computed node is missing an agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := closure()
			if tt.mutate != nil {
				tt.mutate(g)
			}
			err := Validate(g)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCollect(t *testing.T) {
	s := Collect(closure())
	want := Stats{Nodes: 5, Static: 1, Computed: 4, Nested: 1, MaxDepth: 1}
	if s != want {
		t.Errorf("Collect() = %+v, want %+v", s, want)
	}
}
