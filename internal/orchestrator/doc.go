// Package orchestrator is the meta-coordinator: it owns the provider
// registry, drives each request through its state machine (analyze, ensure
// providers, plan, lease roles, dispatch, record), and keeps process-wide
// metrics, bounded execution history and periodic resource cleanup.
// Discovery and installation mutate the registry only through the narrow
// interfaces they are handed; nothing here touches the language model
// directly.
package orchestrator
