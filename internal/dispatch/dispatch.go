package dispatch

import (
	"context"
	"errors"
	"fmt"

	"conductor/internal/pool"
	"conductor/internal/strategy"
)

const subsystem = "Dispatch"

// ErrNoRoles is returned when a pattern is dispatched without any roles.
var ErrNoRoles = errors.New("dispatch requires at least one role")

// Runner performs a single language-model invocation on behalf of a role.
// The role's providers are exclusively bound to it for the duration of the
// call. Implementations must observe context cancellation.
type Runner interface {
	Run(ctx context.Context, role *pool.Role, prompt string) (string, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, role *pool.Role, prompt string) (string, error)

func (f RunnerFunc) Run(ctx context.Context, role *pool.Role, prompt string) (string, error) {
	return f(ctx, role, prompt)
}

type modelProviderKey struct{}

// WithModelProvider attaches a caller-requested model provider hint to the
// context. Runners are opaque to the coordinator, so the hint travels with
// the request rather than the runner.
func WithModelProvider(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, modelProviderKey{}, name)
}

// ModelProvider extracts the model provider hint, if one was set.
func ModelProvider(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(modelProviderKey{}).(string)
	return name, ok && name != ""
}

// Executor runs one execution pattern over a set of leased roles and returns
// the final result text.
type Executor interface {
	Execute(ctx context.Context, pattern strategy.Pattern, roles []*pool.Role, request string, runner Runner) (string, error)
}

// Error wraps a pattern execution failure.
type Error struct {
	Pattern strategy.Pattern
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pattern %s failed: %v", e.Pattern, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Dispatcher is the default Executor covering every built-in pattern.
type Dispatcher struct {
	// MaxHandoffs caps the swarm handoff chain. Zero selects the default.
	MaxHandoffs int

	// MaxIterations caps the evaluator-optimizer refinement loop. Zero
	// selects the default.
	MaxIterations int

	// QualityFloor is the verdict at which refinement stops. Zero value
	// selects QualityGood.
	QualityFloor Quality
}

const (
	defaultMaxHandoffs   = 5
	defaultMaxIterations = 3
)

// Execute dispatches to the pattern implementation.
func (d *Dispatcher) Execute(ctx context.Context, pattern strategy.Pattern, roles []*pool.Role, request string, runner Runner) (string, error) {
	if len(roles) == 0 {
		return "", &Error{Pattern: pattern, Cause: ErrNoRoles}
	}

	var (
		result string
		err    error
	)
	switch pattern {
	case strategy.PatternDirect:
		result, err = d.direct(ctx, roles, request, runner)
	case strategy.PatternParallel:
		result, err = d.parallel(ctx, roles, request, runner)
	case strategy.PatternRouter:
		result, err = d.route(ctx, roles, request, runner)
	case strategy.PatternSwarm:
		result, err = d.swarm(ctx, roles, request, runner)
	case strategy.PatternOrchestrator:
		result, err = d.orchestrate(ctx, roles, request, runner)
	case strategy.PatternEvaluatorOptimizer:
		result, err = d.evaluateOptimize(ctx, roles, request, runner)
	default:
		err = fmt.Errorf("unknown pattern %q", pattern)
	}

	if err != nil {
		return "", &Error{Pattern: pattern, Cause: err}
	}
	return result, nil
}
