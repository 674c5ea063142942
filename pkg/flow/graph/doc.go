// Package graph defines the Graph JSON model emitted by the compiler.
//
// A Graph is a set of named nodes. A static node holds a constant value; a
// computed node names an agent and wires its inputs. A string value of the form
// ":name" inside inputs denotes a dependency edge to another node's output;
// bare strings name built-in agents.
//
//	{
//	  "version": "1.0",
//	  "nodes": {
//	    "a": {"value": 1},
//	    "b": {"agent": "apply", "inputs": {"agent": "identity", "args": {"x": ":a"}}, "isResult": true}
//	  }
//	}
//
// All maps keep insertion order, so encoding the same graph twice produces
// byte-identical JSON and YAML.
package graph
