package runner

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/flowkit/catalog"
	"github.com/kbukum/flowkit/datasource"
	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/params"
	"github.com/kbukum/flowkit/pipeline"
	"github.com/kbukum/flowkit/util"
)

// Default configuration paths, relative to the working directory.
const (
	DefaultCatalogPath     = "conf/base/catalog.yaml"
	DefaultCredentialsPath = "conf/credentials/credentials.yaml"
	DefaultParametersPath  = "conf/base/parameters.yaml"
)

// Resolver loads a dataset by name when it is not in the environment.
type Resolver func(ctx context.Context, name string) (any, error)

// Runner drives selected pipeline nodes to completion.
type Runner struct {
	log             *logger.Logger
	catalogPath     string
	credentialsPath string
	resolver        Resolver
	tracer          trace.Tracer
}

// Option configures a Runner.
type Option func(*Runner)

// WithCatalogPath sets the catalog document path.
func WithCatalogPath(path string) Option {
	return func(r *Runner) { r.catalogPath = path }
}

// WithCredentialsPath sets the credentials document path.
func WithCredentialsPath(path string) Option {
	return func(r *Runner) { r.credentialsPath = path }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithResolver replaces the catalog-backed dataset resolver.
func WithResolver(resolver Resolver) Option {
	return func(r *Runner) { r.resolver = resolver }
}

// New creates a Runner with the default catalog-backed resolver.
func New(opts ...Option) *Runner {
	r := &Runner{
		catalogPath:     DefaultCatalogPath,
		credentialsPath: DefaultCredentialsPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.GetGlobalLogger().WithComponent("runner")
	}
	r.tracer = otel.Tracer("flowkit/runner")
	return r
}

// runConfig carries per-run options.
type runConfig struct {
	selection pipeline.Selection
	initial   map[string]any
	runID     string
}

// RunOption configures a single run.
type RunOption func(*runConfig)

// WithSelection filters the pipeline before execution.
func WithSelection(sel pipeline.Selection) RunOption {
	return func(c *runConfig) { c.selection = sel }
}

// WithInitialData pre-binds refs into the environment before the first node.
func WithInitialData(data map[string]any) RunOption {
	return func(c *runConfig) { c.initial = data }
}

// WithRunID overrides the generated run id.
func WithRunID(id string) RunOption {
	return func(c *runConfig) { c.runID = id }
}

// run is the mutable state of one Run invocation.
type run struct {
	runner *Runner
	env    *Environment
	store  *params.Store
	result *Result
	cat    *catalog.Catalog
	log    *logger.Logger
}

// Run executes the selected nodes of p in order. The returned Result is
// non-nil even on failure and carries the partially-populated environment.
func (r *Runner) Run(ctx context.Context, p *pipeline.Pipeline, store *params.Store, opts ...RunOption) (*Result, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.runID == "" {
		cfg.runID = uuid.NewString()
	}
	if store == nil {
		store = params.New(nil)
	}

	env := NewEnvironment()
	for ref, v := range cfg.initial {
		env.Set(ref, v)
	}

	selected, warnings := cfg.selection.Apply(p)

	rn := &run{
		runner: r,
		env:    env,
		store:  store,
		result: &Result{RunID: cfg.runID, Env: env, Warnings: warnings},
		log:    r.log.WithFields(logger.Fields(logger.FieldRunID, cfg.runID)),
	}
	for _, w := range warnings {
		rn.log.Warn(w)
	}

	rn.log.Info("starting pipeline run", logger.Fields(
		logger.FieldPipeline, p.Name(), "nodes", len(selected)))

	start := time.Now()
	for _, node := range selected {
		if err := ctx.Err(); err != nil {
			ferr := errors.Cancelled(node.Name(), err)
			rn.fail(node, PhaseResolving, 0, ferr)
			rn.result.Duration = time.Since(start)
			return rn.result, ferr
		}
		if err := rn.runNode(ctx, node); err != nil {
			rn.result.Duration = time.Since(start)
			return rn.result, err
		}
	}
	rn.result.Duration = time.Since(start)

	rn.log.Info("pipeline run completed", logger.Fields(
		logger.FieldPipeline, p.Name(),
		"nodes", len(selected),
		logger.FieldDuration, rn.result.Duration.Milliseconds()))
	return rn.result, nil
}

// warn logs a warning and records it on the result.
func (rn *run) warn(msg string) {
	rn.log.Warn(msg)
	rn.result.Warnings = append(rn.result.Warnings, msg)
}

// fail records a failed node result.
func (rn *run) fail(node *pipeline.Node, phase Phase, d time.Duration, err error) {
	rn.result.Nodes = append(rn.result.Nodes, NodeResult{
		Name:     node.Name(),
		Status:   StatusFailed,
		Phase:    phase,
		Duration: d,
		Err:      err,
	})
	rn.log.Error("node failed", logger.Fields(
		logger.FieldNode, node.Name(),
		"phase", string(phase),
		logger.FieldError, err.Error()))
}

// runNode drives one node through resolve, execute and store.
func (rn *run) runNode(ctx context.Context, node *pipeline.Node) error {
	start := time.Now()

	ctx, span := rn.runner.tracer.Start(ctx, "flowkit.node."+node.Name(),
		trace.WithAttributes(
			attribute.String("flowkit.node", node.Name()),
			attribute.String("flowkit.run_id", rn.result.RunID),
		))
	defer span.End()

	finish := func(phase Phase, err error) error {
		span.RecordError(err)
		rn.fail(node, phase, time.Since(start), err)
		return err
	}

	// Resolve parameters.
	args := make(map[string]any)
	for arg, binding := range node.Parameters() {
		args[arg] = rn.store.Resolve(binding)
	}

	// Resolve inputs, memory first, catalog on miss.
	sources := make([]string, 0, 4)
	for _, b := range node.Bindings() {
		value, source, err := rn.resolveRef(ctx, b.Ref)
		if err != nil {
			return finish(PhaseResolving, errors.InputResolution(node.Name(), b.Ref, err))
		}
		if _, taken := args[b.Arg]; taken {
			rn.warn(fmt.Sprintf("node %q: parameter binding shadows input argument %q", node.Name(), b.Arg))
			continue
		}
		args[b.Arg] = value
		sources = append(sources, b.Ref+"("+source+")")
	}

	matched, dropped, err := matchArguments(node, args)
	if err != nil {
		return finish(PhaseResolving, err)
	}
	if len(dropped) > 0 {
		rn.warn(fmt.Sprintf("node %q: arguments [%s] do not match the function signature and were dropped",
			node.Name(), strings.Join(dropped, ", ")))
	}

	// Execute.
	out, err := node.Func().Call(ctx, matched)
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return finish(PhaseExecuting, errors.Cancelled(node.Name(), err))
		}
		return finish(PhaseExecuting, fmt.Errorf("node %q: %w", node.Name(), err))
	}

	// Store outputs.
	stored, err := rn.captureOutputs(node, out)
	if err != nil {
		return finish(PhaseStoring, err)
	}

	d := time.Since(start)
	rn.result.Nodes = append(rn.result.Nodes, NodeResult{
		Name:     node.Name(),
		Status:   StatusCompleted,
		Duration: d,
		Stored:   stored,
	})
	rn.log.Info("node completed", logger.Fields(
		logger.FieldNode, node.Name(),
		"inputs", strings.Join(sources, ","),
		"outputs", strings.Join(stored, ","),
		logger.FieldDuration, d.Milliseconds()))
	return nil
}

// resolveRef returns the value for a data ref, reporting where it came
// from. Catalog loads are cached into the environment for later nodes.
func (rn *run) resolveRef(ctx context.Context, ref string) (any, string, error) {
	if v, ok := rn.env.Get(ref); ok {
		return v, "memory", nil
	}

	var value any
	var err error
	if rn.runner.resolver != nil {
		value, err = rn.runner.resolver(ctx, ref)
	} else {
		value, err = rn.loadFromCatalog(ctx, ref)
	}
	if err != nil {
		return nil, "", err
	}
	rn.env.Set(ref, value)
	return value, "catalog", nil
}

// loadFromCatalog lazily loads the catalog document, then the dataset.
func (rn *run) loadFromCatalog(ctx context.Context, ref string) (any, error) {
	if rn.cat == nil {
		cat, err := catalog.Load(rn.runner.catalogPath)
		if err != nil {
			return nil, err
		}
		rn.cat = cat
	}
	entry, err := rn.cat.Get(ref)
	if err != nil {
		return nil, err
	}
	rn.log.Debug("loading dataset", logger.Fields(
		logger.FieldDataset, ref, "type", entry.DatasetType()))
	return datasource.Load(ctx, entry, rn.runner.credentialsPath)
}

// matchArguments binds the call-argument map against the function's
// formals. Unmatched arguments flow into a variadic function, and are
// dropped otherwise.
func matchArguments(node *pipeline.Node, args map[string]any) (map[string]any, []string, error) {
	sig := node.Func().Signature()
	matched := make(map[string]any, len(args))
	used := make(map[string]bool, len(args))

	for _, f := range sig.Formals {
		if v, ok := args[f.Name]; ok {
			matched[f.Name] = v
			used[f.Name] = true
			continue
		}
		if f.HasDefault {
			matched[f.Name] = f.Default
			continue
		}
		return nil, nil, errors.MissingArgument(node.Name(), f.Name)
	}

	var dropped []string
	for _, k := range util.SortedKeys(args) {
		if used[k] {
			continue
		}
		if sig.Variadic {
			matched[k] = args[k]
		} else {
			dropped = append(dropped, k)
		}
	}
	return matched, dropped, nil
}

// captureOutputs stores the function's return value per the node's output
// declaration and returns the refs written.
func (rn *run) captureOutputs(node *pipeline.Node, out any) ([]string, error) {
	switch decl := node.Outputs().(type) {
	case nil:
		return nil, nil
	case string:
		if out == nil {
			return nil, nil
		}
		rn.env.Set(decl, out)
		return []string{decl}, nil
	case []string:
		if len(decl) == 0 || out == nil {
			return nil, nil
		}
		if len(decl) == 1 {
			rn.env.Set(decl[0], out)
			return []string{decl[0]}, nil
		}
		seq, ok := out.([]any)
		if !ok {
			return nil, errors.OutputMismatch(node.Name(),
				fmt.Sprintf("declared %d outputs but function returned %T", len(decl), out))
		}
		if len(seq) != len(decl) {
			return nil, errors.OutputMismatch(node.Name(),
				fmt.Sprintf("declared %d outputs but function returned %d values", len(decl), len(seq)))
		}
		for i, ref := range decl {
			rn.env.Set(ref, seq[i])
		}
		return append([]string(nil), decl...), nil
	case map[string]string:
		if out == nil {
			return nil, nil
		}
		named, ok := out.(map[string]any)
		if !ok {
			return nil, errors.OutputMismatch(node.Name(),
				fmt.Sprintf("declared named outputs but function returned %T", out))
		}
		var stored []string
		for _, key := range util.SortedKeys(decl) {
			value, present := named[key]
			if !present {
				rn.warn(fmt.Sprintf("node %q: return key %q missing; output %q not stored",
					node.Name(), key, decl[key]))
				continue
			}
			rn.env.Set(decl[key], value)
			stored = append(stored, decl[key])
		}
		return stored, nil
	default:
		// unreachable: shapes are validated at node construction
		return nil, errors.OutputMismatch(node.Name(),
			fmt.Sprintf("unsupported output declaration %T", node.Outputs()))
	}
}
