// Package dispatch runs execution patterns over leased worker roles. The
// Executor contract keeps the coordinator out of the language-model
// interaction: it hands over a pattern, roles and the request text, and gets
// back a result string. Dispatcher implements every built-in pattern; the
// Runner facade is the single point where model calls happen, so tests and
// alternative backends plug in a function.
package dispatch
