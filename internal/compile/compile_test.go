package compile_test

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sunholo/petrc/internal/compile"
	"github.com/sunholo/petrc/internal/diag"
	"github.com/sunholo/petrc/internal/source"
	"github.com/sunholo/petrc/internal/typecheck"
	"github.com/sunholo/petrc/testutil"
)

// signatures renders every typed function as "name : type", sorted, which
// is the stable shape the determinism and golden tests compare.
func signatures(res *compile.Result) []string {
	var out []string
	for id, fn := range res.TypedFunctions {
		name := res.Interner.Get(fn.Name.Name)
		out = append(out, name+" : "+res.Types.PrettyVar(res.TypeMap.Functions[id]))
	}
	sort.Strings(out)
	return out
}

// monoKeys renders the monomorphization table as "name(args)", sorted.
func monoKeys(res *compile.Result) []string {
	var out []string
	res.Monomorphized.Each(func(e *typecheck.MonoEntry) {
		name := res.Interner.Get(e.Function.Name.Name)
		out = append(out, name+"("+e.Key.Args+")")
	})
	sort.Strings(out)
	return out
}

func TestPipelineEndToEnd(t *testing.T) {
	res := compile.Run([]source.File{{
		Name: "main.petr",
		Text: `function add(x in 'int, y in 'int) returns 'int + x y
function main() returns 'int ~add(1, 2)`,
	}}, nil)
	if res.HasErrors() {
		t.Fatalf("unexpected reports: %v", res.Reports)
	}
	if len(res.TypedFunctions) != 2 {
		t.Fatalf("typed functions = %d, want 2", len(res.TypedFunctions))
	}
	// One specialization for the add call, one for the synthesized main
	// call.
	if res.Monomorphized.Len() != 2 {
		t.Fatalf("specializations = %d, want 2", res.Monomorphized.Len())
	}
}

func TestPipelineIsDeterministic(t *testing.T) {
	files := []source.File{{
		Name: "main.petr",
		Text: `type OneOrTwo = 1 | 2
function pick(c in 'bool) returns 'OneOrTwo if c then ~OneOrTwo 1 else ~OneOrTwo 2
function main() returns 'OneOrTwo ~pick true`,
	}}
	first := compile.Run(files, nil)
	second := compile.Run(files, nil)
	if first.HasErrors() || second.HasErrors() {
		t.Fatalf("unexpected reports: %v / %v", first.Reports, second.Reports)
	}
	if diff := cmp.Diff(signatures(first), signatures(second)); diff != "" {
		t.Fatalf("typed functions differ across runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(monoKeys(first), monoKeys(second)); diff != "" {
		t.Fatalf("monomorphization tables differ across runs (-first +second):\n%s", diff)
	}
}

func TestInvalidSourceNameReported(t *testing.T) {
	res := compile.Run([]source.File{{Name: "1 bad name.petr", Text: ""}}, nil)
	if len(res.Reports) != 1 || res.Reports[0].Code != diag.PAR006 {
		t.Fatalf("reports = %v, want one PAR006", res.Reports)
	}
}

func TestHyphensFoldToUnderscores(t *testing.T) {
	res := compile.Run([]source.File{{
		Name: "my-lib.petr",
		Text: "function one() returns 'int 1",
	}}, nil)
	if res.HasErrors() {
		t.Fatalf("unexpected reports: %v", res.Reports)
	}
	if _, ok := res.Binder.ModuleByPath("my_lib"); !ok {
		t.Fatalf("hyphenated source name should bind as my_lib")
	}
}

func TestDependencySharesInterner(t *testing.T) {
	s := compile.NewSession()
	depAst, depOrder, depReports := compile.Parse(s, []source.File{{
		Name: "mathlib.petr",
		Text: "export function double(x in 'int) returns 'int + x x",
	}})
	if len(depReports) != 0 {
		t.Fatalf("dependency parse reports: %v", depReports)
	}
	res := compile.RunWith(s, []source.File{{
		Name: "app.petr",
		Text: "import mathlib\nfunction main() returns 'int ~double 3",
	}}, []compile.Dependency{{
		Key:         "mathlib@1.0.0",
		Name:        "mathlib",
		Ast:         depAst,
		ModuleOrder: depOrder,
	}})
	if res.HasErrors() {
		t.Fatalf("unexpected reports: %v", res.Reports)
	}
	sym, ok := res.Interner.Lookup("double")
	if !ok {
		t.Fatalf("dependency symbols must live in the shared interner")
	}
	found := false
	for _, fn := range res.TypedFunctions {
		if fn.Name.Name == sym {
			found = true
		}
	}
	if !found {
		t.Fatalf("dependency function was not type-checked")
	}
}

func TestUnresolvedNameStillProducesResult(t *testing.T) {
	res := compile.Run([]source.File{{
		Name: "main.petr",
		Text: "function f() returns 'int nope",
	}}, nil)
	if len(res.Reports) != 1 || res.Reports[0].Code != diag.RES001 {
		t.Fatalf("reports = %v, want one RES001", res.Reports)
	}
	// Best-effort analysis: the function is still typed, with an error
	// recovery body.
	if len(res.TypedFunctions) != 1 {
		t.Fatalf("typed functions = %d, want 1", len(res.TypedFunctions))
	}
}

func TestGoldenSignatures(t *testing.T) {
	res := compile.Run([]source.File{{
		Name: "main.petr",
		Text: `function add(x in 'int, y in 'int) returns 'int + x y
function main() returns 'int ~add(1, 2)`,
	}}, nil)
	if res.HasErrors() {
		t.Fatalf("unexpected reports: %v", res.Reports)
	}
	testutil.CompareWithGolden(t, "pipeline", "signatures", map[string]any{
		"functions":       signatures(res),
		"specializations": monoKeys(res),
	})
}
