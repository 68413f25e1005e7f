package runner

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/params"
	"github.com/kbukum/flowkit/pipeline"
	"github.com/kbukum/flowkit/table"
)

// variadic builds a node function that accepts any named arguments.
func variadic(name string, fn func(args map[string]any) (any, error)) pipeline.Func {
	return pipeline.NewFunc(name, pipeline.Signature{Variadic: true},
		func(_ context.Context, args map[string]any) (any, error) {
			return fn(args)
		})
}

func mustNode(t *testing.T, fn pipeline.Func, inputs, outputs any, opts ...pipeline.NodeOption) *pipeline.Node {
	t.Helper()
	n, err := pipeline.NewNode(fn, inputs, outputs, opts...)
	if err != nil {
		t.Fatalf("building node: %v", err)
	}
	return n
}

func mustPipeline(t *testing.T, nodes ...*pipeline.Node) *pipeline.Pipeline {
	t.Helper()
	items := make([]any, len(nodes))
	for i, n := range nodes {
		items[i] = n
	}
	p, err := pipeline.New(items...)
	if err != nil {
		t.Fatalf("building pipeline: %v", err)
	}
	return p
}

// failingResolver fails every catalog lookup and counts calls.
type failingResolver struct{ calls int }

func (f *failingResolver) resolve(_ context.Context, name string) (any, error) {
	f.calls++
	return nil, fmt.Errorf("no catalog in this test (asked for %q)", name)
}

func constantTable(rows, cols int) *table.Table {
	names := make([]string, cols)
	for i := range names {
		names[i] = fmt.Sprintf("c%d", i+1)
	}
	t := table.New(names...)
	for r := 0; r < rows; r++ {
		row := make([]any, cols)
		for c := range row {
			row[c] = int64(r + c)
		}
		_ = t.Append(row)
	}
	return t
}

// Single node, parameter substitution, in-memory data only.
func TestRunSingleNode(t *testing.T) {
	var seen any
	gen := mustNode(t,
		variadic("gen", func(args map[string]any) (any, error) {
			seen = args["p"]
			return constantTable(150, 5), nil
		}),
		nil, "iris",
		pipeline.WithParameters(map[string]any{"p": "params.generation.setting"}),
	)
	p := mustPipeline(t, gen)
	store := params.New(map[string]any{"params.generation.setting": "hello"})

	res, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), p, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "hello" {
		t.Errorf("expected parameter substituted, node saw %v", seen)
	}
	v, ok := res.Env.Get("iris")
	if !ok {
		t.Fatal("expected 'iris' in the environment")
	}
	tbl := v.(*table.Table)
	if tbl.NumRows() != 150 || tbl.NumColumns() != 5 {
		t.Errorf("unexpected table shape: %s", tbl)
	}
	if res.RunID == "" {
		t.Error("expected a run id")
	}
	if len(res.Nodes) != 1 || res.Nodes[0].Status != StatusCompleted {
		t.Errorf("unexpected node results: %+v", res.Nodes)
	}
	if !reflect.DeepEqual(res.Nodes[0].Stored, []string{"iris"}) {
		t.Errorf("unexpected stored refs: %v", res.Nodes[0].Stored)
	}
}

// Two-node chain: memory precedence, catalog never consulted.
func TestRunTwoNodeChain(t *testing.T) {
	n1 := mustNode(t,
		variadic("n1", func(map[string]any) (any, error) {
			return constantTable(3, 2), nil
		}),
		nil, "mid")
	n2 := mustNode(t,
		variadic("n2", func(args map[string]any) (any, error) {
			x := args["x"].(*table.Table)
			return x.WithColumn("c", int64(7)), nil
		}),
		map[string]string{"x": "mid"}, "final")

	resolver := &failingResolver{}
	res, err := New(WithResolver(resolver.resolve)).
		Run(context.Background(), mustPipeline(t, n1, n2), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolver.calls != 0 {
		t.Errorf("catalog consulted %d times despite memory hit", resolver.calls)
	}
	if !res.Env.Has("mid") || !res.Env.Has("final") {
		t.Fatalf("expected both refs, got %v", res.Env.Names())
	}
	final := mustGetTable(t, res.Env, "final")
	col, ok := final.Column("c")
	if !ok {
		t.Fatal("expected column c")
	}
	for _, v := range col {
		if v != int64(7) {
			t.Errorf("expected 7, got %v", v)
		}
	}
}

func mustGetTable(t *testing.T, env *Environment, ref string) *table.Table {
	t.Helper()
	v, ok := env.Get(ref)
	if !ok {
		t.Fatalf("ref %q not in environment", ref)
	}
	tbl, ok := v.(*table.Table)
	if !ok {
		t.Fatalf("ref %q is %T, not a table", ref, v)
	}
	return tbl
}

// Missing input falls back to the catalog and caches the loaded value.
func TestRunCatalogFallback(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "raw.csv")
	if err := os.WriteFile(csvPath, []byte("a;b\n1;2\n3;4\n"), 0o644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}
	catalogPath := filepath.Join(dir, "catalog.yaml")
	doc := fmt.Sprintf("raw:\n  type: CSVDataset\n  path: %s\n  separator: \";\"\n", csvPath)
	if err := os.WriteFile(catalogPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}

	node := mustNode(t,
		variadic("clean", func(args map[string]any) (any, error) {
			return args["d"], nil
		}),
		map[string]string{"d": "raw"}, "out")

	res, err := New(WithCatalogPath(catalogPath)).
		Run(context.Background(), mustPipeline(t, node), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw := mustGetTable(t, res.Env, "raw")
	if !reflect.DeepEqual(raw.Columns(), []string{"a", "b"}) || raw.NumRows() != 2 {
		t.Errorf("unexpected loaded table: %s %v", raw, raw.Columns())
	}
	if !res.Env.Has("out") {
		t.Error("expected node output in environment")
	}
}

func TestRunInputResolutionFailure(t *testing.T) {
	first := mustNode(t,
		variadic("first", func(map[string]any) (any, error) { return 1, nil }),
		nil, "early")
	broken := mustNode(t,
		variadic("broken", func(map[string]any) (any, error) { return nil, nil }),
		"no_such_ref", "late")

	res, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, first, broken), nil)
	if errors.CodeOf(err) != errors.CodeInputResolution {
		t.Fatalf("expected INPUT_RESOLUTION_FAILED, got %v", err)
	}
	if !strings.Contains(err.Error(), "broken") || !strings.Contains(err.Error(), "no_such_ref") {
		t.Errorf("expected node and ref in message: %q", err.Error())
	}
	// partial environment still returned
	if res == nil || !res.Env.Has("early") {
		t.Error("expected partial environment with completed outputs")
	}
	last := res.Nodes[len(res.Nodes)-1]
	if last.Status != StatusFailed || last.Phase != PhaseResolving {
		t.Errorf("unexpected failed record: %+v", last)
	}
}

func TestRunTagSelection(t *testing.T) {
	var order []string
	record := func(name string) *pipeline.Node {
		return mustNode(t,
			variadic(name, func(map[string]any) (any, error) {
				order = append(order, name)
				return nil, nil
			}),
			nil, nil, pipeline.WithTags(tagsFor(name)...))
	}
	p := mustPipeline(t, record("a"), record("b"), record("c"))

	_, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), p, nil,
			WithSelection(pipeline.Selection{Tags: []string{"prep"}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(order, []string{"a", "c"}) {
		t.Errorf("unexpected execution order: %v", order)
	}
}

func tagsFor(name string) []string {
	switch name {
	case "a":
		return []string{"prep"}
	case "b":
		return []string{"train"}
	default:
		return []string{"prep", "eval"}
	}
}

func TestRunRangeSelectionWarning(t *testing.T) {
	n := mustNode(t, variadic("only", func(map[string]any) (any, error) { return nil, nil }), nil, nil)

	res, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, n), nil,
			WithSelection(pipeline.Selection{FromNodes: []string{"z"}}))
	if err != nil {
		t.Fatalf("empty selection is not an error: %v", err)
	}
	if len(res.Nodes) != 0 {
		t.Errorf("expected nothing to run, got %+v", res.Nodes)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("expected selection warning, got %v", res.Warnings)
	}
}

func TestRunMissingArgument(t *testing.T) {
	fn := pipeline.NewFunc("needs_x", pipeline.Signature{Formals: pipeline.Args("x")},
		func(_ context.Context, args map[string]any) (any, error) { return args["x"], nil })
	n := mustNode(t, fn, nil, "out")

	res, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, n), nil)
	if errors.CodeOf(err) != errors.CodeMissingArgument {
		t.Fatalf("expected MISSING_ARGUMENT, got %v", err)
	}
	if res == nil {
		t.Fatal("expected result alongside error")
	}
}

func TestRunDefaultArgument(t *testing.T) {
	fn := pipeline.NewFunc("defaulted",
		pipeline.Signature{Formals: []pipeline.Formal{pipeline.ArgDefault("ratio", 0.8)}},
		func(_ context.Context, args map[string]any) (any, error) { return args["ratio"], nil })
	n := mustNode(t, fn, nil, "out")

	res, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, n), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := res.Env.Get("out"); v != 0.8 {
		t.Errorf("expected default applied, got %v", v)
	}
}

func TestMatchArguments(t *testing.T) {
	fn := pipeline.NewFunc("narrow", pipeline.Signature{Formals: pipeline.Args("x")},
		func(_ context.Context, args map[string]any) (any, error) { return args["x"], nil })
	n := mustNode(t, fn, nil, "out")

	t.Run("exact match", func(t *testing.T) {
		matched, dropped, err := matchArguments(n, map[string]any{"x": 1})
		if err != nil || len(dropped) != 0 {
			t.Fatalf("unexpected: %v / %v", dropped, err)
		}
		if matched["x"] != 1 {
			t.Errorf("unexpected args: %v", matched)
		}
	})

	t.Run("extra argument dropped", func(t *testing.T) {
		matched, dropped, err := matchArguments(n, map[string]any{"x": 1, "extra": 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(dropped, []string{"extra"}) {
			t.Errorf("expected [extra] dropped, got %v", dropped)
		}
		if _, ok := matched["extra"]; ok {
			t.Error("dropped argument must not be passed")
		}
	})

	t.Run("missing argument", func(t *testing.T) {
		_, _, err := matchArguments(n, map[string]any{})
		if errors.CodeOf(err) != errors.CodeMissingArgument {
			t.Errorf("expected MISSING_ARGUMENT, got %v", err)
		}
	})
}

func TestRunVariadicReceivesExtras(t *testing.T) {
	var got map[string]any
	fn := pipeline.NewFunc("wide",
		pipeline.Signature{Formals: pipeline.Args("x"), Variadic: true},
		func(_ context.Context, args map[string]any) (any, error) {
			got = args
			return nil, nil
		})
	n := mustNode(t, fn, map[string]string{"x": "x", "extra": "extra"}, nil)

	_, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, n), nil,
			WithInitialData(map[string]any{"x": 1, "extra": 2}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["x"] != 1 || got["extra"] != 2 {
		t.Errorf("expected extras to flow into variadic function, got %v", got)
	}
}

func TestRunNamedOutputs(t *testing.T) {
	fn := variadic("split", func(map[string]any) (any, error) {
		return map[string]any{"train": 1, "test": 2}, nil
	})
	n := mustNode(t, fn, nil, map[string]string{"train": "train_set", "test": "test_set"})

	res, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, n), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := res.Env.Get("train_set"); v != 1 {
		t.Errorf("unexpected train_set: %v", v)
	}
	if v, _ := res.Env.Get("test_set"); v != 2 {
		t.Errorf("unexpected test_set: %v", v)
	}
}

func TestRunNamedOutputsMissingKey(t *testing.T) {
	fn := variadic("split", func(map[string]any) (any, error) {
		return map[string]any{"train": 1}, nil
	})
	n := mustNode(t, fn, nil, map[string]string{"train": "train_set", "test": "test_set"})

	res, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, n), nil)
	if err != nil {
		t.Fatalf("missing return key is a warning, not an error: %v", err)
	}
	if res.Env.Has("test_set") {
		t.Error("missing key must not be stored")
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning")
	}
}

func TestRunNamedOutputsNonMapping(t *testing.T) {
	fn := variadic("bad", func(map[string]any) (any, error) { return 42, nil })
	n := mustNode(t, fn, nil, map[string]string{"a": "a_out"})

	_, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, n), nil)
	if errors.CodeOf(err) != errors.CodeOutputMismatch {
		t.Fatalf("expected OUTPUT_MISMATCH, got %v", err)
	}
}

func TestRunPositionalOutputs(t *testing.T) {
	fn := variadic("pair", func(map[string]any) (any, error) {
		return []any{"first", "second"}, nil
	})
	n := mustNode(t, fn, nil, []string{"one", "two"})

	res, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, n), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := res.Env.Get("two"); v != "second" {
		t.Errorf("unexpected value: %v", v)
	}
}

func TestRunPositionalOutputsLengthMismatch(t *testing.T) {
	fn := variadic("pair", func(map[string]any) (any, error) {
		return []any{"only"}, nil
	})
	n := mustNode(t, fn, nil, []string{"one", "two"})

	_, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, n), nil)
	if errors.CodeOf(err) != errors.CodeOutputMismatch {
		t.Fatalf("expected OUTPUT_MISMATCH, got %v", err)
	}
}

func TestRunNilReturnStoresNothing(t *testing.T) {
	fn := variadic("quiet", func(map[string]any) (any, error) { return nil, nil })
	n := mustNode(t, fn, nil, "out")

	res, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, n), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Env.Has("out") {
		t.Error("nil return must not be stored")
	}
	if res.Nodes[0].Status != StatusCompleted {
		t.Errorf("unexpected status: %+v", res.Nodes[0])
	}
}

func TestRunNodeFailureAbortsPlan(t *testing.T) {
	boom := stderrors.New("boom")
	var ran []string
	ok1 := mustNode(t, variadic("ok1", func(map[string]any) (any, error) {
		ran = append(ran, "ok1")
		return 1, nil
	}), nil, "a")
	bad := mustNode(t, variadic("bad", func(map[string]any) (any, error) {
		ran = append(ran, "bad")
		return nil, boom
	}), nil, "b")
	never := mustNode(t, variadic("never", func(map[string]any) (any, error) {
		ran = append(ran, "never")
		return 3, nil
	}), nil, "c")

	res, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, ok1, bad, never), nil)
	if err == nil || !stderrors.Is(err, boom) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("expected offending node name in error: %q", err.Error())
	}
	if !reflect.DeepEqual(ran, []string{"ok1", "bad"}) {
		t.Errorf("expected remaining plan aborted, ran %v", ran)
	}
	if !res.Env.Has("a") || res.Env.Has("c") {
		t.Errorf("unexpected environment: %v", res.Env.Names())
	}
	if res.Nodes[1].Phase != PhaseExecuting {
		t.Errorf("expected executing phase on failure, got %+v", res.Nodes[1])
	}
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := mustNode(t, variadic("first", func(map[string]any) (any, error) {
		cancel()
		return 1, nil
	}), nil, "a")
	second := mustNode(t, variadic("second", func(map[string]any) (any, error) {
		return 2, nil
	}), nil, "b")

	res, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(ctx, mustPipeline(t, first, second), nil)
	if errors.CodeOf(err) != errors.CodeCancelled {
		t.Fatalf("expected CANCELLED, got %v", err)
	}
	if !res.Env.Has("a") || res.Env.Has("b") {
		t.Errorf("unexpected environment: %v", res.Env.Names())
	}
}

func TestRunCancellationFromNodeFunction(t *testing.T) {
	n := mustNode(t, variadic("aborts", func(map[string]any) (any, error) {
		return nil, context.Canceled
	}), nil, nil)

	_, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, n), nil)
	if errors.CodeOf(err) != errors.CodeCancelled {
		t.Fatalf("expected CANCELLED, got %v", err)
	}
}

func TestRunInitialData(t *testing.T) {
	resolver := &failingResolver{}
	n := mustNode(t, variadic("consume", func(args map[string]any) (any, error) {
		return args["seed"], nil
	}), "seed", "out")

	res, err := New(WithResolver(resolver.resolve)).
		Run(context.Background(), mustPipeline(t, n), nil,
			WithInitialData(map[string]any{"seed": "value"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolver.calls != 0 {
		t.Errorf("initial data must satisfy inputs without the catalog")
	}
	if v, _ := res.Env.Get("out"); v != "value" {
		t.Errorf("unexpected output: %v", v)
	}
}

func TestRunWithRunID(t *testing.T) {
	n := mustNode(t, variadic("n", func(map[string]any) (any, error) { return nil, nil }), nil, nil)
	res, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, n), nil, WithRunID("fixed-id"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RunID != "fixed-id" {
		t.Errorf("unexpected run id %q", res.RunID)
	}
}

// Literal parameter bindings pass through untouched.
func TestRunParameterLiterals(t *testing.T) {
	var seen map[string]any
	n := mustNode(t,
		variadic("n", func(args map[string]any) (any, error) {
			seen = args
			return nil, nil
		}),
		nil, nil,
		pipeline.WithParameters(map[string]any{
			"known":   "alpha",
			"literal": "not-a-key",
			"number":  7,
		}))
	store := params.New(map[string]any{"alpha": 0.5})

	if _, err := New(WithResolver((&failingResolver{}).resolve)).
		Run(context.Background(), mustPipeline(t, n), store); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen["known"] != 0.5 {
		t.Errorf("expected store hit, got %v", seen["known"])
	}
	if seen["literal"] != "not-a-key" || seen["number"] != 7 {
		t.Errorf("expected literals passed through, got %v", seen)
	}
}
