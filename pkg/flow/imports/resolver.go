package imports

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"mercator-hq/flowc/pkg/flow/ast"
	"mercator-hq/flowc/pkg/flow/errors"
	"mercator-hq/flowc/pkg/flow/parser"
	"mercator-hq/flowc/pkg/flow/source"
)

// DefaultModulesDir is the directory searched for bare module names.
const DefaultModulesDir = "node_modules"

// Extension is the file extension of flow sources.
const Extension = ".flow"

// Module is a parsed import target.
type Module struct {
	Path  string
	Graph *ast.Graph
}

// Exports returns the public top-level names of the module in source order.
func (m *Module) Exports() []string {
	var names []string
	for _, stmt := range m.Graph.Statements {
		switch s := stmt.(type) {
		case *ast.StaticNode:
			if s.Modifier == ast.Public {
				names = append(names, s.Name)
			}
		case *ast.ComputedNode:
			if s.Modifier == ast.Public && s.Name != "" {
				names = append(names, s.Name)
			}
		}
	}
	return names
}

// Stats counts resolver activity for a single run.
type Stats struct {
	Resolved  int // Import statements resolved to a path
	Parsed    int // Files parsed
	CacheHits int // Loads served from the cache
}

// Resolver maps import paths to files, parses each file at most once per run and
// tracks the chain of modules being compiled to detect cycles.
type Resolver struct {
	parser     *parser.Parser
	modulesDir string
	logger     *slog.Logger

	cache map[string]*Module // Absolute path -> parsed module
	stack []string           // Modules currently being compiled
	stats Stats
}

// NewResolver creates a resolver that parses with p.
func NewResolver(p *parser.Parser) *Resolver {
	if p == nil {
		p = parser.NewParser()
	}
	return &Resolver{
		parser:     p,
		modulesDir: DefaultModulesDir,
		logger:     slog.Default(),
		cache:      make(map[string]*Module),
		stack:      make([]string, 0),
	}
}

// WithModulesDir sets the directory name searched for bare imports.
func (r *Resolver) WithModulesDir(dir string) *Resolver {
	if dir != "" {
		r.modulesDir = dir
	}
	return r
}

// WithLogger sets the logger.
func (r *Resolver) WithLogger(logger *slog.Logger) *Resolver {
	if logger != nil {
		r.logger = logger.With("component", "imports")
	}
	return r
}

// Reset clears the cache, the module stack and the counters.
func (r *Resolver) Reset() {
	r.cache = make(map[string]*Module)
	r.stack = make([]string, 0)
	r.stats = Stats{}
}

// Stats returns the counters since the last Reset.
func (r *Resolver) Stats() Stats {
	return r.stats
}

// Resolve returns the absolute path the import statement refers to.
func (r *Resolver) Resolve(imp *ast.Import) (string, error) {
	span := imp.Span()
	spec := imp.Path
	baseDir, err := importerDir(span)
	if err != nil {
		return "", errors.NewSystemError(span.Path(), span, err)
	}

	var path string
	switch {
	case filepath.IsAbs(spec):
		path, err = r.resolveFile(filepath.Clean(spec), span)
	case strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../"):
		path, err = r.resolveFile(filepath.Join(baseDir, spec), span)
	default:
		path, err = r.resolveBare(baseDir, spec, span)
	}
	if err != nil {
		return "", err
	}
	r.stats.Resolved++
	return path, nil
}

// Load resolves and parses the import, serving repeated paths from the cache.
func (r *Resolver) Load(imp *ast.Import) (*Module, error) {
	path, err := r.Resolve(imp)
	if err != nil {
		return nil, err
	}
	if mod, ok := r.cache[path]; ok {
		r.stats.CacheHits++
		r.logger.Debug("import cache hit", "path", path)
		return mod, nil
	}

	src, err := r.parser.Load(path)
	if err != nil {
		// Point the failure at the import statement.
		if se, ok := err.(*errors.SystemError); ok {
			se.Span = imp.Span()
		}
		return nil, err
	}
	g, err := r.parser.ParseSource(src)
	if err != nil {
		return nil, err
	}

	mod := &Module{Path: path, Graph: g}
	r.cache[path] = mod
	r.stats.Parsed++
	r.logger.Debug("parsed module", "path", path, "statements", len(g.Statements))
	return mod, nil
}

// Enter pushes a module onto the compile stack. It fails with a CompileError
// anchored at span when the module is already being compiled.
func (r *Resolver) Enter(path string, span source.Span) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.NewSystemError(path, span, err)
	}
	if r.isInStack(abs) {
		cycle := append(append([]string{}, r.stack...), abs)
		return &errors.CompileError{Items: []*errors.Item{{
			Message:    fmt.Sprintf("Circular import detected: %s", strings.Join(cycle, " -> ")),
			Span:       span,
			Suggestion: "Remove the circular import dependency",
		}}}
	}
	r.stack = append(r.stack, abs)
	return nil
}

// Leave pops the module pushed by the matching Enter.
func (r *Resolver) Leave() {
	if len(r.stack) > 0 {
		r.stack = r.stack[:len(r.stack)-1]
	}
}

// isInStack checks if a path is currently being compiled.
func (r *Resolver) isInStack(path string) bool {
	for _, p := range r.stack {
		if p == path {
			return true
		}
	}
	return false
}

// resolveFile checks that path names a regular file. A missing path is retried
// with the source extension appended.
func (r *Resolver) resolveFile(path string, span source.Span) (string, error) {
	candidates := []string{path}
	if filepath.Ext(path) != Extension {
		candidates = append(candidates, path+Extension)
	}
	found, err := firstFile(candidates, span)
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", errors.NewCompileError(span, "Cannot find module '%s'", path)
	}
	return found, nil
}

// resolveBare walks from baseDir towards the root looking for the modules
// directory, then tries <name>, <name>.flow and <name>/index.flow inside it.
func (r *Resolver) resolveBare(baseDir, name string, span source.Span) (string, error) {
	modules, err := r.findModulesDir(baseDir, span)
	if err != nil {
		return "", err
	}
	base := filepath.Join(modules, name)
	found, err := firstFile([]string{
		base,
		base + Extension,
		filepath.Join(base, "index"+Extension),
	}, span)
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", errors.NewCompileError(span, "Cannot find module '%s' in %s", name, modules)
	}
	return found, nil
}

func (r *Resolver) findModulesDir(start string, span source.Span) (string, error) {
	dir := start
	for {
		candidate := filepath.Join(dir, r.modulesDir)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.IsDir():
			return candidate, nil
		case err != nil && !isNotExist(err):
			return "", errors.NewSystemError(candidate, span, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.NewCompileError(span, "%s not found", r.modulesDir)
		}
		dir = parent
	}
}

// firstFile returns the first candidate that is a regular file, or "" when none is.
func firstFile(candidates []string, span source.Span) (string, error) {
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil {
			if isNotExist(err) {
				continue
			}
			return "", errors.NewSystemError(c, span, err)
		}
		if info.Mode().IsRegular() {
			abs, err := filepath.Abs(c)
			if err != nil {
				return "", errors.NewSystemError(c, span, err)
			}
			return abs, nil
		}
	}
	return "", nil
}

// importerDir is the directory relative imports resolve against. Sources without
// a filesystem path (such as "memory://repl") resolve against the working directory.
func importerDir(span source.Span) (string, error) {
	path := span.Path()
	if path == "" || strings.Contains(path, "://") {
		return os.Getwd()
	}
	return filepath.Abs(filepath.Dir(path))
}

// isNotExist treats a file standing in for a directory as missing.
func isNotExist(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist) || stderrors.Is(err, syscall.ENOTDIR)
}
