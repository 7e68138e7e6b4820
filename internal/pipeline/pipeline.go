package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/sitescout/internal/model"
)

// Step is one stage of a crawl. Steps run in sequence and each one
// reads what earlier steps stored in the session.
type Step interface {
	// Do executes the step. Non-fatal problems are recorded in the
	// session and Do returns nil.
	Do(ctx context.Context, session *model.CrawlSession) error

	// Name returns the step name used in logs and PerformedSteps.
	Name() string
}

// fatal is implemented by errors that stop the pipeline even when
// continueOnError is set.
type fatal interface {
	Fatal() bool
}

// Pipeline runs steps in order, followed by its finally steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// finally steps run after the regular steps, also when the context
	// is done, so that a deadline still produces a result.
	finally []Step

	logger *slog.Logger

	// continueOnError keeps running after a step fails, unless the
	// error is fatal.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. The error is recorded in the session's
// StepErrors. Errors reporting Fatal() == true always stop the run.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
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

// AddFinally appends a step that runs after the regular steps even when
// the context is done.
func (p *Pipeline) AddFinally(steps ...Step) {
	p.finally = append(p.finally, steps...)
}

// Execute runs the steps in sequence. The context is checked before each
// step; once it is done the remaining regular steps are skipped, the
// session is marked TimedOut and the finally steps still run.
//
// Execute returns the error of the first failing step unless
// continueOnError is set and the error is not fatal. Finally steps do
// not run after such an error.
func (p *Pipeline) Execute(ctx context.Context, session *model.CrawlSession) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("crawl deadline reached",
				"step", step.Name(),
				"seed", session.Seed.URL,
				"reason", err,
			)
			session.TimedOut = true
			break
		}

		if err := p.run(ctx, step, session); err != nil {
			var f fatal
			if (errors.As(err, &f) && f.Fatal()) || !p.continueOnError {
				return err
			}
		}
	}

	// Finally steps only touch in-memory state.
	finallyCtx := context.WithoutCancel(ctx)
	for _, step := range p.finally {
		if err := p.run(finallyCtx, step, session); err != nil && !p.continueOnError {
			return err
		}
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, step Step, session *model.CrawlSession) error {
	p.logger.Debug("executing step",
		"step", step.Name(),
		"seed", session.Seed.URL,
	)

	err := step.Do(ctx, session)
	session.PerformedSteps = append(session.PerformedSteps, step.Name())
	if err != nil {
		p.logger.Error("step failed",
			"step", step.Name(),
			"seed", session.Seed.URL,
			"error", err,
		)
		session.StepErrors = append(session.StepErrors, step.Name()+": "+err.Error())
		return err
	}
	return nil
}

// StepCount returns the number of regular steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order, finally
// steps last.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, len(p.steps)+len(p.finally))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	for _, step := range p.finally {
		names = append(names, step.Name())
	}
	return names
}
