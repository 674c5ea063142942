package compiler

import (
	"sort"

	"mercator-hq/flowc/pkg/flow/ast"
	"mercator-hq/flowc/pkg/flow/graph"
	"mercator-hq/flowc/pkg/flow/source"
)

// noFrame is the parent of a root frame.
const noFrame = -1

// bindingKind says how a name is emitted.
type bindingKind int

const (
	bindNode   bindingKind = iota // A node of the frame's graph
	bindParam                     // A lambda parameter or @context
	bindNative                    // A host agent name, emitted as a plain string
)

type binding struct {
	kind  bindingKind
	agent string // bindNative only
	span  source.Span
}

// frame is one lexical scope: a file, a nested graph or a lambda body.
type frame struct {
	parent   int // Enclosing frame for lookups, noFrame for roots
	restore  int // Frame that becomes current again on pop
	lambda   bool // Binds @context
	items    map[string]binding
	nodes    *graph.OrderedMap[*graph.Node]
	captures *nameSet
}

// scopes is an arena of frames addressed by index. Popped frames are never
// reused, so indices stay valid for the whole run. Do not hold *frame values
// across a push: the arena may grow.
type scopes struct {
	frames []frame
	cur    int
}

func newScopes() *scopes {
	return &scopes{cur: noFrame}
}

// push opens a frame and makes it current. Only frames of user-written
// lambdas pass lambda; @context in any other frame resolves outward. Module
// roots pass isolated so that nothing from the importing file is visible
// inside the module.
func (s *scopes) push(lambda, isolated bool) int {
	parent := s.cur
	if isolated {
		parent = noFrame
	}
	f := frame{
		parent:   parent,
		restore:  s.cur,
		lambda:   lambda,
		items:    make(map[string]binding),
		nodes:    graph.NewOrderedMap[*graph.Node](),
		captures: newNameSet(),
	}
	if lambda {
		f.items[ast.ContextName] = binding{kind: bindParam}
	}
	s.frames = append(s.frames, f)
	s.cur = len(s.frames) - 1
	return s.cur
}

// pop closes the current frame.
func (s *scopes) pop() {
	s.cur = s.frames[s.cur].restore
}

// top returns the current frame.
func (s *scopes) top() *frame {
	return &s.frames[s.cur]
}

// bind adds name to the current frame. It returns the existing binding and
// false when the name is already bound there.
func (s *scopes) bind(name string, b binding) (binding, bool) {
	f := s.top()
	if prev, ok := f.items[name]; ok {
		return prev, false
	}
	f.items[name] = b
	return b, true
}

// lookup finds the innermost frame binding name.
func (s *scopes) lookup(name string) (binding, int, bool) {
	for i := s.cur; i != noFrame; i = s.frames[i].parent {
		if b, ok := s.frames[i].items[name]; ok {
			return b, i, true
		}
	}
	return binding{}, noFrame, false
}

// capture records name as an input of every frame between the current one
// and owner, owner excluded.
func (s *scopes) capture(name string, owner int) {
	for i := s.cur; i != owner && i != noFrame; i = s.frames[i].parent {
		s.frames[i].captures.add(name)
	}
}

// visible returns the sorted names reachable from the current frame.
func (s *scopes) visible() []string {
	seen := make(map[string]bool)
	var names []string
	for i := s.cur; i != noFrame; i = s.frames[i].parent {
		for name := range s.frames[i].items {
			if !seen[name] && name != ast.ContextName {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// nameSet is a set that remembers insertion order.
type nameSet struct {
	names []string
	seen  map[string]bool
}

func newNameSet() *nameSet {
	return &nameSet{seen: make(map[string]bool)}
}

func (n *nameSet) add(name string) {
	if !n.seen[name] {
		n.seen[name] = true
		n.names = append(n.names, name)
	}
}

func (n *nameSet) has(name string) bool {
	return n.seen[name]
}

func (n *nameSet) list() []string {
	return n.names
}
