package dispatch

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"conductor/internal/pool"
	"conductor/pkg/logging"
)

// direct runs the request through the single primary role.
func (d *Dispatcher) direct(ctx context.Context, roles []*pool.Role, request string, runner Runner) (string, error) {
	return runner.Run(ctx, roles[0], request)
}

// parallel fans the request out to every role, then aggregates the partial
// results through the first role.
func (d *Dispatcher) parallel(ctx context.Context, roles []*pool.Role, request string, runner Runner) (string, error) {
	if len(roles) == 1 {
		return runner.Run(ctx, roles[0], request)
	}

	results := make([]string, len(roles))
	g, gctx := errgroup.WithContext(ctx)
	for i, role := range roles {
		g.Go(func() error {
			out, err := runner.Run(gctx, role, request)
			if err != nil {
				return fmt.Errorf("role %s: %w", role.Name, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Combine the following partial results into one answer to the task.\n\nTask: %s\n", request)
	for i, role := range roles {
		fmt.Fprintf(&b, "\nResult from %s:\n%s\n", role.Name, results[i])
	}
	return runner.Run(ctx, roles[0], b.String())
}

// route asks the first role to pick the best specialist by name, then runs
// the chosen role.
func (d *Dispatcher) route(ctx context.Context, roles []*pool.Role, request string, runner Runner) (string, error) {
	if len(roles) == 1 {
		return runner.Run(ctx, roles[0], request)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pick the single best specialist for this task and reply with only their name.\n\nTask: %s\n\nSpecialists:\n", request)
	for _, role := range roles {
		fmt.Fprintf(&b, "- %s\n", role.Name)
	}

	reply, err := runner.Run(ctx, roles[0], b.String())
	if err != nil {
		return "", fmt.Errorf("routing: %w", err)
	}

	chosen := roles[0]
	lowered := strings.ToLower(reply)
	for _, role := range roles {
		if strings.Contains(lowered, strings.ToLower(role.Name)) {
			chosen = role
			break
		}
	}
	logging.Debug(subsystem, "routed request to role %s", chosen.Name)
	return runner.Run(ctx, chosen, request)
}

// orchestrate has the first role plan the work, runs the remaining roles in
// plan order feeding each the results so far, and synthesizes at the end.
func (d *Dispatcher) orchestrate(ctx context.Context, roles []*pool.Role, request string, runner Runner) (string, error) {
	planner, workers := roles[0], roles[1:]
	if len(workers) == 0 {
		return runner.Run(ctx, planner, request)
	}

	plan, err := runner.Run(ctx, planner, fmt.Sprintf(
		"Break this task into numbered steps, noting which steps depend on earlier ones.\n\nTask: %s", request))
	if err != nil {
		return "", fmt.Errorf("planning: %w", err)
	}

	var transcript strings.Builder
	for _, worker := range workers {
		prompt := fmt.Sprintf(
			"Task: %s\n\nPlan:\n%s\n\nResults so far:\n%s\nCarry out your part of the plan.",
			request, plan, transcript.String())
		out, err := runner.Run(ctx, worker, prompt)
		if err != nil {
			return "", fmt.Errorf("worker %s: %w", worker.Name, err)
		}
		fmt.Fprintf(&transcript, "[%s]\n%s\n", worker.Name, out)
	}

	return runner.Run(ctx, planner, fmt.Sprintf(
		"Task: %s\n\nWorker results:\n%s\nSynthesize the final answer.",
		request, transcript.String()))
}

// swarm runs a handoff loop: the active role may pass the conversation to a
// named peer by replying with a handoff directive. The chain is capped.
func (d *Dispatcher) swarm(ctx context.Context, roles []*pool.Role, request string, runner Runner) (string, error) {
	maxHandoffs := d.MaxHandoffs
	if maxHandoffs <= 0 {
		maxHandoffs = defaultMaxHandoffs
	}

	byName := make(map[string]*pool.Role, len(roles))
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		byName[strings.ToLower(role.Name)] = role
		names = append(names, role.Name)
	}
	for _, role := range roles {
		var peers []string
		for _, n := range names {
			if n != role.Name {
				peers = append(peers, n)
			}
		}
		role.Handoffs = peers
	}

	current := roles[0]
	var transcript strings.Builder
	var last string
	for hop := 0; hop <= maxHandoffs; hop++ {
		prompt := fmt.Sprintf(
			"Task: %s\n\nConversation so far:\n%s\nRespond, or reply 'HANDOFF: <name>' to pass the task to one of: %s.",
			request, transcript.String(), strings.Join(current.Handoffs, ", "))
		out, err := runner.Run(ctx, current, prompt)
		if err != nil {
			return "", fmt.Errorf("role %s: %w", current.Name, err)
		}
		last = out

		next, ok := handoffTarget(out, byName)
		if !ok || next == current {
			return out, nil
		}
		fmt.Fprintf(&transcript, "[%s]\n%s\n", current.Name, out)
		logging.Debug(subsystem, "swarm handoff %s -> %s", current.Name, next.Name)
		current = next
	}
	return last, nil
}

// handoffTarget parses a 'HANDOFF: <name>' directive against the known roles.
func handoffTarget(output string, byName map[string]*pool.Role) (*pool.Role, bool) {
	lowered := strings.ToLower(output)
	idx := strings.Index(lowered, "handoff:")
	if idx < 0 {
		return nil, false
	}
	rest := lowered[idx+len("handoff:"):]
	for name, role := range byName {
		if strings.Contains(rest, name) {
			return role, true
		}
	}
	return nil, false
}

// evaluateOptimize alternates an optimizer draft with an evaluator verdict
// until the verdict reaches the quality floor or the iteration cap.
func (d *Dispatcher) evaluateOptimize(ctx context.Context, roles []*pool.Role, request string, runner Runner) (string, error) {
	maxIterations := d.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}
	floor := d.QualityFloor
	if floor == QualityUnknown {
		floor = QualityGood
	}

	optimizer := roles[0]
	evaluator := roles[len(roles)-1]

	draft, err := runner.Run(ctx, optimizer, request)
	if err != nil {
		return "", fmt.Errorf("optimizer: %w", err)
	}

	for iteration := 1; iteration <= maxIterations; iteration++ {
		verdict, err := runner.Run(ctx, evaluator, fmt.Sprintf(
			"Rate this answer as exactly one of: poor, fair, good, excellent. Explain briefly.\n\nTask: %s\n\nAnswer:\n%s",
			request, draft))
		if err != nil {
			return "", fmt.Errorf("evaluator: %w", err)
		}
		quality := ParseQuality(verdict)
		logging.Debug(subsystem, "iteration %d rated %s", iteration, quality)
		if quality >= floor {
			return draft, nil
		}
		if iteration == maxIterations {
			break
		}

		draft, err = runner.Run(ctx, optimizer, fmt.Sprintf(
			"Task: %s\n\nPrevious answer:\n%s\n\nEvaluator feedback:\n%s\n\nProduce an improved answer.",
			request, draft, verdict))
		if err != nil {
			return "", fmt.Errorf("optimizer: %w", err)
		}
	}
	return draft, nil
}
