// Package imports resolves import statements to files and parses them.
//
// Resolution rules:
//
//	./x, ../x    relative to the importing file's directory
//	/abs/x       used as-is
//	name         searched in the nearest node_modules directory found by walking
//	             up from the importing file: name, name.flow, name/index.flow
//
// Relative and absolute paths without an extension are retried with ".flow".
//
// A Resolver parses every file at most once, so modules imported from several
// places share one AST. The compiler brackets the compilation of each module
// with Enter and Leave; entering a module that is already on the stack is an
// import cycle.
//
//	r := imports.NewResolver(parser.NewParser())
//	mod, err := r.Load(imp)
//	if err != nil {
//	    return err
//	}
//	if err := r.Enter(mod.Path, imp.Span()); err != nil {
//	    return err // Circular import detected
//	}
//	defer r.Leave()
package imports
