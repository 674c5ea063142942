// Package compiler translates a flow AST into a dataflow graph.
//
// Compilation is a single depth-first pass. Each file, nested graph and
// lambda body gets a scope frame; all names a block defines are bound before
// its statements compile, so a statement may refer to a later one. A name
// used from an inner frame is a capture: it becomes an input of every
// nestedAgent or defAgent node between the use and the frame that defines it.
//
// # Encoding
//
//	f(x)                {agent: "apply", inputs: {agent: ":f", args: x}}
//	(p) -> e            {agent: "defAgent", inputs: {captures}, params: {arg: "p"}, graph: {...}}
//	{ ...; e }          {agent: "nestedAgent", inputs: {captures}, graph: {...}}
//	a + b               apply of "plus" with {left, right}
//	a ^ b               apply of "pow" with {base, exponent}
//	if c then a else b  apply of "ifThenElse" with lazy then/else lambdas
//	try a catch h       apply of "tryCatch" with {try: () -> a, catch: h}
//	o.k, xs[i]          apply of "getObjectMember" / "getArrayElement"
//
// Sub-expressions that are not literals, names, arrays or objects are hoisted
// into nodes named __anonN__, with N increasing over the whole run so the
// output is deterministic. String values starting with ":" are hoisted into
// static nodes so they are not read as references.
//
// Destructuring parameters bind their names with element and member lookups
// and guard the body with equality checks for literal sub-patterns. A match
// tries each case under try/catch in order and throws if none matches.
//
// # Errors
//
// Unresolved identifiers are collected for the whole statement and reported
// together; every other error stops compilation at the first failure.
//
//	c := compiler.NewCompiler().WithVersion("1.0")
//	g, err := c.Compile(program)
package compiler
