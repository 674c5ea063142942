// Package errors provides the Flow diagnostic model.
//
// Every failure surfaced by the parser or compiler carries the exact source span it
// refers to, so callers can render the offending line with a caret underline.
//
// # Error Types
//
// ParserError: syntax errors produced by the parser. Unexpected-token errors are
// merged by furthest progress; invalid-syntax errors are committed and never
// backtracked over.
//
// CompileError: semantic errors produced by the compiler (duplicate or undefined
// identifiers, self references, bad imports). A CompileError may batch several
// items when one validation step finds several problems at once.
//
// SystemError: I/O failures, for example an unreadable import.
//
// # Basic Usage
//
//	g, err := flow.CompileBytes(ctx, data, "main.flow")
//	if err != nil {
//	    for _, fe := range errors.Format(err) {
//	        fmt.Print(fe.String())
//	    }
//	}
//
// # Error Format
//
//	[compile] Identifier not found: cnt
//	  --> main.flow:3:12-3:15
//	   |
//	 3 | total = cnt + 1;
//	   |         ^^^
//	   = suggestion: Did you mean 'count'?
package errors
