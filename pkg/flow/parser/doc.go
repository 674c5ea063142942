// Package parser provides the lexical and expression grammar of the flow language.
//
// The grammar is built from the combinators in package parsec. Whitespace and
// comments are skipped before every token, so node spans cover exactly the text
// of the construct.
//
// # Basic Usage
//
// Parse a file:
//
//	p := parser.NewParser()
//	g, err := p.Parse("main.flow")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Parse from memory:
//
//	g, err := p.ParseBytes([]byte(`
//	static greeting = "hello";
//	shout = (s) -> "${s}!";
//	shout(greeting)
//	`), "memory://main")
//
// # Precedence
//
// From loosest to tightest:
//
//	|> --> >> >>= >>- ->> :>   pipeline
//	&& ||                      logical
//	== !=                      equality
//	< <= > >=                  relational
//	+ -                        additive
//	* / %                      multiplicative
//	^                          power (right-associative)
//	x[i] x.k f(a)              postfix
//
// Each level rejects literal operands that cannot belong there (for example
// `true * 2`) with a committed invalid-syntax error.
//
// # Errors
//
// Syntax errors report the furthest position the input could be parsed to,
// with the union of everything expected there. Once a disambiguating token such
// as an operator, "if" or "[" is consumed, the parser does not backtrack and the
// error points inside the construct.
//
// # Configuration
//
//	p := parser.NewParser().
//	    WithMaxFileSize(5 * 1024 * 1024) // 5MB limit
package parser
