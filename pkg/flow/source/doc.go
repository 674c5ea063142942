// Package source provides the positional primitives shared by the Flow parser,
// AST and diagnostics.
//
// A Stream is an immutable cursor over a Source. Advancing a stream returns a new
// value, so parsers can keep an earlier stream around and rewind to it cheaply.
// Every AST node carries a Span recording the exact slice of source text it was
// parsed from; diagnostics render spans verbatim.
package source
