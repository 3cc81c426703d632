package pool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conductor/internal/capability"
	"conductor/internal/registry"
)

func TestTemplateFor(t *testing.T) {
	f := NewFactory(registry.New())

	tests := []struct {
		name     string
		required capability.Set
		want     string
	}{
		{
			name:     "research capabilities pick researcher",
			required: capability.NewSet(capability.CategorySearch, capability.CategoryWeb),
			want:     "researcher",
		},
		{
			name:     "development picks developer",
			required: capability.NewSet(capability.CategoryDevelopment),
			want:     "developer",
		},
		{
			name:     "analysis picks analyst",
			required: capability.NewSet(capability.CategoryAnalysis, capability.CategoryDataProcessing),
			want:     "analyst",
		},
		{
			name:     "communication picks communicator",
			required: capability.NewSet(capability.CategoryCommunication),
			want:     "communicator",
		},
		{
			name:     "empty falls back to versatile",
			required: nil,
			want:     VersatileTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.TemplateFor(tt.required).Name)
		})
	}
}

func TestBuildExtendsProviders(t *testing.T) {
	reg := registry.New()
	reg.Upsert(registry.Profile{
		Name:         "brave-search",
		Capabilities: capability.NewSet(capability.CategorySearch, capability.CategoryWeb),
		Status:       registry.StatusConnected,
	})
	reg.Upsert(registry.Profile{
		Name:         "sqlite",
		Capabilities: capability.NewSet(capability.CategoryDatabase),
		Status:       registry.StatusConnected,
	})
	f := NewFactory(reg)

	role := f.Build(capability.NewSet(
		capability.CategorySearch,
		capability.CategoryWeb,
		capability.CategoryDatabase,
	))

	assert.Equal(t, "researcher", role.Name)
	// Template providers first, then the registry provider covering the
	// capability the template lacks.
	assert.Equal(t, []string{"brave-search", "fetch", "sqlite"}, role.Providers)
}

func TestBuildInstructionsDeterministic(t *testing.T) {
	f := NewFactory(registry.New())
	required := capability.NewSet(capability.CategorySearch, capability.CategoryWeb)

	a := f.Build(required)
	b := f.Build(required)

	assert.Equal(t, a.Instructions, b.Instructions)
	assert.Equal(t, a.Identity(), b.Identity())
	assert.True(t, strings.Contains(a.Instructions, "searching for information"))
	assert.True(t, strings.Contains(a.Instructions, "thorough"))
}

func TestBuildVersatileHasInstructions(t *testing.T) {
	f := NewFactory(registry.New())

	role := f.Build(nil)
	require.Equal(t, VersatileTemplate, role.Name)
	assert.NotEmpty(t, role.Instructions)
	assert.NotEmpty(t, role.Providers)
}
