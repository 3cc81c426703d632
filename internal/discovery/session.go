package discovery

import (
	"context"
)

// Session is the narrow view of the provider transport used by discovery.
// All operations are cancellable through the context. Implementations must
// be safe for concurrent use: discovery fans out per-provider calls in
// parallel.
type Session interface {
	// ListConnected returns the names of providers with an established
	// session.
	ListConnected(ctx context.Context) ([]string, error)

	// ListTools returns the tool names advertised by the named provider.
	ListTools(ctx context.Context, name string) ([]string, error)

	// ListResources returns the resource names advertised by the named
	// provider.
	ListResources(ctx context.Context, name string) ([]string, error)

	// Connect establishes (or re-establishes) a session with the named
	// provider.
	Connect(ctx context.Context, name string) error
}
