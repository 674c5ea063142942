package compiler

import (
	"sort"
	"strings"

	"mercator-hq/flowc/pkg/flow/graph"
	"mercator-hq/flowc/pkg/flow/parser"
)

// Agents the compiler emits itself.
const (
	AgentApply           = "apply"
	AgentDef             = graph.AgentDefAgent
	AgentNested          = graph.AgentNestedAgent
	AgentIfThenElse      = "ifThenElse"
	AgentTryCatch        = "tryCatch"
	AgentIdentity        = "identity"
	AgentThrow           = "throw"
	AgentConcatString    = parser.ConcatAgent
	AgentGetArrayElement = "getArrayElement"
	AgentGetObjectMember = "getObjectMember"
	AgentArraySlice      = "arraySlice"
	AgentObjectOmit      = "objectOmit"
	AgentAnd             = "and"
	AgentEq              = "eq"
	AgentPow             = "pow"
)

// operatorAgents maps each binary operator to the agent it calls.
var operatorAgents = map[string]string{
	// Pipelines
	"|>":  "pipe",
	"-->": "pipeMap",
	">>":  "compose",
	">>=": "bind",
	">>-": "pipeTap",
	"->>": "pipeMapAsync",
	":>":  "pipeFilter",

	// Logical
	"&&": AgentAnd,
	"||": "or",

	// Comparison
	"==": AgentEq,
	"!=": "neq",
	"<":  "lt",
	"<=": "lte",
	">":  "gt",
	">=": "gte",

	// Arithmetic
	"+": "plus",
	"-": "minus",
	"*": "mul",
	"/": "div",
	"%": "mod",
	"^": AgentPow,
}

// libraryAgents are the host library functions available without an import.
var libraryAgents = []string{
	"print", "log", "now", "random", "sleep", "fetch",
	"Array.map", "Array.filter", "Array.reduce", "Array.find", "Array.some",
	"Array.every", "Array.length", "Array.concat", "Array.reverse", "Array.sort",
	"Array.range", "Array.includes", "Array.join",
	"Object.keys", "Object.values", "Object.entries", "Object.merge", "Object.has",
	"String.length", "String.split", "String.join", "String.upper", "String.lower",
	"String.trim", "String.replace", "String.includes", "String.toNumber",
	"Math.abs", "Math.floor", "Math.ceil", "Math.round", "Math.min", "Math.max",
	"Math.sqrt",
	"JSON.parse", "JSON.stringify",
}

// Registry reports which agent names the execution engine provides. The
// compiler only checks that a name exists, never its signature.
type Registry interface {
	Has(name string) bool
}

// AgentSet is a Registry backed by a set of names.
type AgentSet map[string]struct{}

// NewAgentSet creates a set holding names.
func NewAgentSet(names ...string) AgentSet {
	s := make(AgentSet, len(names))
	s.Add(names...)
	return s
}

// DefaultAgents returns the compiler's own agents, the operator agents and
// the host library.
func DefaultAgents() AgentSet {
	s := NewAgentSet(
		AgentApply, AgentDef, AgentNested, AgentIfThenElse, AgentTryCatch,
		AgentIdentity, AgentThrow, AgentConcatString, AgentGetArrayElement,
		AgentGetObjectMember, AgentArraySlice, AgentObjectOmit,
	)
	for _, agent := range operatorAgents {
		s.Add(agent)
	}
	s.Add(libraryAgents...)
	return s
}

// Add inserts names.
func (s AgentSet) Add(names ...string) {
	for _, name := range names {
		if name != "" {
			s[name] = struct{}{}
		}
	}
}

// Has implements Registry.
func (s AgentSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the sorted names.
func (s AgentSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// namer is implemented by registries that can list their names for suggestions.
type namer interface {
	Names() []string
}

// hasNamespace reports whether any registered name starts with "ns.".
func hasNamespace(r Registry, ns string) bool {
	n, ok := r.(namer)
	if !ok {
		return false
	}
	for _, name := range n.Names() {
		if strings.HasPrefix(name, ns+".") {
			return true
		}
	}
	return false
}
