// Package flow is the entry point for compiling flow source files into
// graphs.
//
// A Compiler parses a file, resolves its imports, lowers it to a graph and
// validates the result. Errors are a *errors.ParserError, a
// *errors.CompileError, a *errors.SystemError or a *graph.ValidationError;
// FormatErrors turns any of them into display-ready diagnostics.
//
//	c := flow.New(
//	    flow.WithVersion("1.0"),
//	    flow.WithObserver(collector),
//	    flow.WithTracer(tracer.Tracer()),
//	)
//	g, err := c.Compile(ctx, "main.flow")
//	if err != nil {
//	    for _, d := range flow.FormatErrors(err) {
//	        fmt.Fprintln(os.Stderr, d.String())
//	    }
//	}
//
// Every call uses a fresh import cache, so a module imported twice is parsed
// once per compilation and edits are always picked up.
package flow
