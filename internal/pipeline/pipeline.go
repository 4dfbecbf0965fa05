package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/docepub/internal/model"
)

// Step is one stage of a build.
type Step interface {
	// Do runs the stage. Any error aborts the build.
	Do(ctx context.Context, build *model.Build) error

	// Name returns the step name for logging.
	Name() string
}

// Pipeline executes steps in sequence and stops at the first failure.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps on build.
// Cancellation is checked before each step. The error of a failed step is
// returned unchanged and no later step runs.
func (p *Pipeline) Execute(ctx context.Context, build *model.Build) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("build cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step", "step", step.Name())
		start := time.Now()

		if err := step.Do(ctx, build); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"duration", time.Since(start),
		)
		build.PerformedSteps = append(build.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
