// flowc compiles flow source files into graph JSON for the agent execution
// engine.
//
// Usage:
//
//	# Compile a file to stdout
//	flowc compile main.flow
//
//	# Compile several files, writing main.json next to each source
//	flowc compile flows/*.flow --write
//
//	# Check files without writing output (CI)
//	flowc check flows/ --output json
//
//	# Recompile on change, serving /metrics and /health on :9090
//	flowc watch flows/ --metrics-addr :9090
//
//	# Inspect recorded compilations
//	flowc history list --path flows/main.flow
//
//	# Try the language interactively
//	flowc repl
package main

import "os"

func main() {
	os.Exit(Execute())
}
