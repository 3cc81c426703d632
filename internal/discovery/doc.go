// Package discovery interrogates connected capability providers through a
// session interface, derives their capability profiles from advertised tool
// and resource names, and merges a catalog of well-known installable
// providers into the registry. Per-provider probes run in parallel bounded
// by a semaphore, and capability analysis is memoized per tool set.
package discovery
