package imports

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/flowc/pkg/flow/ast"
	"mercator-hq/flowc/pkg/flow/errors"
	"mercator-hq/flowc/pkg/flow/parser"
	"mercator-hq/flowc/pkg/flow/source"
)

// writeFile creates path (and its parent directories) under dir.
func writeFile(t *testing.T, dir, path, content string) string {
	t.Helper()
	full := filepath.Join(dir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return full
}

// importsOf parses main and returns its import statements.
func importsOf(t *testing.T, mainPath string) []*ast.Import {
	t.Helper()
	g, err := parser.NewParser().Parse(mainPath)
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", mainPath, err)
	}
	var imps []*ast.Import
	for _, stmt := range g.Statements {
		if imp, ok := stmt.(*ast.Import); ok {
			imps = append(imps, imp)
		}
	}
	return imps
}

func compileItem(t *testing.T, err error) *errors.Item {
	t.Helper()
	var cerr *errors.CompileError
	if !stderrors.As(err, &cerr) {
		t.Fatalf("error = %v (%T), want *errors.CompileError", err, err)
	}
	return cerr.Items[0]
}

func TestResolver_Resolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib/math.flow", "public static pi = 3.14;")
	writeFile(t, dir, "shared.flow", "public static x = 1;")
	writeFile(t, dir, "app/local.flow", "public static y = 1;")
	writeFile(t, dir, "app/node_modules/plain", "public static a = 1;")
	writeFile(t, dir, "app/node_modules/util.flow", "public static b = 1;")
	writeFile(t, dir, "app/node_modules/pkg/index.flow", "public static c = 1;")

	tests := []struct {
		name string
		stmt string
		want string
	}{
		{"sibling", `import "./local.flow" as l;`, "app/local.flow"},
		{"parent directory", `import "../lib/math.flow" as m;`, "lib/math.flow"},
		{"relative without extension", `import "../lib/math" as m;`, "lib/math.flow"},
		{"bare file", `import "plain" as p;`, "app/node_modules/plain"},
		{"bare with extension added", `import "util" as u;`, "app/node_modules/util.flow"},
		{"bare directory index", `import "pkg" as p;`, "app/node_modules/pkg/index.flow"},
		{"absolute", `import "` + filepath.Join(dir, "shared.flow") + `";`, "shared.flow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			main := writeFile(t, dir, "app/main.flow", tt.stmt+"\n1")
			imps := importsOf(t, main)
			if len(imps) != 1 {
				t.Fatalf("got %d imports, want 1", len(imps))
			}

			got, err := NewResolver(nil).Resolve(imps[0])
			if err != nil {
				t.Fatalf("Resolve() failed: %v", err)
			}
			want := filepath.Join(dir, tt.want)
			if got != want {
				t.Errorf("Resolve() = %s, want %s", got, want)
			}
		})
	}
}

func TestResolver_BareWalksUpToNearestModulesDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "node_modules/util.flow", "public static outer = 1;")
	writeFile(t, dir, "a/node_modules/util.flow", "public static inner = 1;")
	main := writeFile(t, dir, "a/b/c/main.flow", `import "util";`+"\n1")

	got, err := NewResolver(nil).Resolve(importsOf(t, main)[0])
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if want := filepath.Join(dir, "a/node_modules/util.flow"); got != want {
		t.Errorf("Resolve() = %s, want %s", got, want)
	}
}

func TestResolver_ModulesDirNotFound(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.flow", `import "util";`+"\n1")

	r := NewResolver(nil).WithModulesDir("flowc_test_missing_modules")
	_, err := r.Resolve(importsOf(t, main)[0])

	item := compileItem(t, err)
	if item.Message != "flowc_test_missing_modules not found" {
		t.Errorf("message = %q", item.Message)
	}
	if item.Span.Text() != `import "util"` {
		t.Errorf("span = %q, want the import statement", item.Span.Text())
	}
}

func TestResolver_MissingModule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "node_modules/other.flow", "public static a = 1;")
	main := writeFile(t, dir, "main.flow", `import "./nope.flow" as n; import "util";`+"\n1")
	imps := importsOf(t, main)

	r := NewResolver(nil)
	for _, imp := range imps {
		_, err := r.Resolve(imp)
		item := compileItem(t, err)
		if !strings.HasPrefix(item.Message, "Cannot find module") {
			t.Errorf("message = %q, want Cannot find module", item.Message)
		}
	}
}

func TestResolver_LoadCachesParses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.flow", "public static a = 1; static hidden = 2; public b = a + 1;")
	main := writeFile(t, dir, "main.flow", `import "./lib.flow" as x; import "./lib" as y;`+"\n1")
	imps := importsOf(t, main)

	r := NewResolver(nil)
	first, err := r.Load(imps[0])
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	second, err := r.Load(imps[1])
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if first != second {
		t.Error("expected both imports to share one parsed module")
	}
	stats := r.Stats()
	if stats.Parsed != 1 || stats.CacheHits != 1 || stats.Resolved != 2 {
		t.Errorf("Stats() = %+v, want Parsed=1 CacheHits=1 Resolved=2", stats)
	}
	if got := strings.Join(first.Exports(), ","); got != "a,b" {
		t.Errorf("Exports() = %s, want a,b", got)
	}

	r.Reset()
	if r.Stats() != (Stats{}) {
		t.Errorf("Stats() after Reset = %+v", r.Stats())
	}
}

func TestResolver_LoadSyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.flow", "a = ;")
	main := writeFile(t, dir, "main.flow", `import "./bad.flow" as b;`+"\n1")

	_, err := NewResolver(nil).Load(importsOf(t, main)[0])
	var perr *errors.ParserError
	if !stderrors.As(err, &perr) {
		t.Fatalf("error = %v (%T), want *errors.ParserError", err, err)
	}
	if !strings.HasSuffix(perr.Source.Path, "bad.flow") {
		t.Errorf("error source = %s, want bad.flow", perr.Source.Path)
	}
}

func TestResolver_LoadSizeLimitIsSystemError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.flow", "public static s = \""+strings.Repeat("x", 200)+"\";")
	main := writeFile(t, dir, "main.flow", `import "./big.flow" as b;`+"\n1")
	imp := importsOf(t, main)[0]

	r := NewResolver(parser.NewParser().WithMaxFileSize(64))
	_, err := r.Load(imp)

	var serr *errors.SystemError
	if !stderrors.As(err, &serr) {
		t.Fatalf("error = %v (%T), want *errors.SystemError", err, err)
	}
	if !stderrors.Is(err, errors.ErrSystem) {
		t.Error("expected errors.Is(err, ErrSystem)")
	}
	if serr.Span.Text() != imp.Span().Text() {
		t.Errorf("span = %q, want the import statement", serr.Span.Text())
	}
}

func TestResolver_EnterDetectsCycles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.flow")
	b := filepath.Join(dir, "b.flow")

	r := NewResolver(nil)
	if err := r.Enter(a, source.Span{}); err != nil {
		t.Fatalf("Enter(a) failed: %v", err)
	}
	if err := r.Enter(b, source.Span{}); err != nil {
		t.Fatalf("Enter(b) failed: %v", err)
	}

	err := r.Enter(a, source.Span{})
	item := compileItem(t, err)
	if !strings.HasPrefix(item.Message, "Circular import detected") {
		t.Errorf("message = %q", item.Message)
	}
	if !strings.Contains(item.Message, a+" -> "+b+" -> "+a) {
		t.Errorf("message = %q, want the full cycle", item.Message)
	}

	// Siblings are fine once the first one has been left.
	r.Leave()
	if err := r.Enter(b, source.Span{}); err != nil {
		t.Errorf("re-entering b after Leave failed: %v", err)
	}
}
