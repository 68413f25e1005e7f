package project

import (
	"context"

	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/params"
	"github.com/kbukum/flowkit/pipeline"
	"github.com/kbukum/flowkit/runner"
)

// runConfig carries Run options.
type runConfig struct {
	registry  *Registry
	selection pipeline.Selection
	initial   map[string]any
}

// RunOption configures Run.
type RunOption func(*runConfig)

// WithRegistry uses an explicit registry instead of the package-level one.
func WithRegistry(r *Registry) RunOption {
	return func(c *runConfig) { c.registry = r }
}

// WithSelection filters the pipeline before execution.
func WithSelection(sel pipeline.Selection) RunOption {
	return func(c *runConfig) { c.selection = sel }
}

// WithInitialData pre-binds refs into the run's environment.
func WithInitialData(data map[string]any) RunOption {
	return func(c *runConfig) { c.initial = data }
}

// Run executes a registered pipeline of the project at projectPath.
// An empty pipelineName selects the default pipeline. Settings, parameters
// and catalog are loaded from the project's conf/ layout.
func Run(ctx context.Context, projectPath, pipelineName string, opts ...RunOption) (*runner.Result, error) {
	cfg := runConfig{registry: defaultRegistry}
	for _, opt := range opts {
		opt(&cfg)
	}
	if pipelineName == "" {
		pipelineName = DefaultPipeline
	}

	settings, err := LoadSettings(projectPath)
	if err != nil {
		return nil, err
	}
	log := logger.New(&settings.Logging, "flowkit")

	p, err := cfg.registry.Build(pipelineName)
	if err != nil {
		return nil, err
	}

	store, err := params.Load(settings.ParametersPath)
	if err != nil {
		return nil, err
	}

	r := runner.New(
		runner.WithCatalogPath(settings.CatalogPath),
		runner.WithCredentialsPath(settings.CredentialsPath),
		runner.WithLogger(log.WithComponent("runner")),
	)
	return r.Run(ctx, p, store,
		runner.WithSelection(cfg.selection),
		runner.WithInitialData(cfg.initial),
	)
}
