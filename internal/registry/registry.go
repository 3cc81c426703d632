package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"conductor/internal/capability"
	"conductor/pkg/logging"
)

// Registry is the in-memory index of known providers. Writers (discovery and
// the installer) mutate profiles under the exclusive lock; readers receive
// deep copies so no mutable state escapes. The capability reverse index is
// rebuilt and swapped atomically after every mutation.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	// byCapability maps category -> provider names in insertion order. The
	// map value slices are never mutated after publication; a rebuild
	// replaces the whole map.
	byCapability map[capability.Category][]string
	// insertion order of provider names, for deterministic iteration
	order []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		profiles:     make(map[string]*Profile),
		byCapability: make(map[capability.Category][]string),
	}
}

// Upsert inserts or replaces a profile and refreshes the reverse index.
func (r *Registry) Upsert(profile Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := profile.clone()
	if _, exists := r.profiles[profile.Name]; !exists {
		r.order = append(r.order, profile.Name)
	} else {
		// Keep accumulated performance across re-discovery.
		stored.Performance = r.profiles[profile.Name].Performance
	}
	r.profiles[profile.Name] = &stored
	r.rebuildIndexLocked()
}

// Get returns a copy of the named profile.
func (r *Registry) Get(name string) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[name]
	if !ok {
		return Profile{}, false
	}
	return p.clone(), true
}

// Has reports whether the named provider is known.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.profiles[name]
	return ok
}

// List returns copies of all profiles in insertion order.
func (r *Registry) List() []Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.profiles[name].clone())
	}
	return out
}

// Names returns all provider names in insertion order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of known providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// ProvidersFor returns copies of the profiles advertising the capability, in
// registry insertion order.
func (r *Registry) ProvidersFor(c capability.Category) []Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.byCapability[c]
	out := make([]Profile, 0, len(names))
	for _, name := range names {
		if p, ok := r.profiles[name]; ok {
			out = append(out, p.clone())
		}
	}
	return out
}

// NamesFor returns the provider names advertising the capability.
func (r *Registry) NamesFor(c capability.Category) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.byCapability[c]...)
}

// Covered reports which of the given capabilities have at least one provider.
func (r *Registry) Covered(caps capability.Set) (covered, missing capability.Set) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	covered = make(capability.Set)
	missing = make(capability.Set)
	for c := range caps {
		if len(r.byCapability[c]) > 0 {
			covered.Add(c)
		} else {
			missing.Add(c)
		}
	}
	return covered, missing
}

// UsableCovered reports which capabilities have at least one provider that
// is installed or connected. Catalog entries that are merely available do
// not count until an installation promotes them.
func (r *Registry) UsableCovered(caps capability.Set) (covered, missing capability.Set) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	covered = make(capability.Set)
	missing = make(capability.Set)
	for c := range caps {
		usable := false
		for _, name := range r.byCapability[c] {
			p, ok := r.profiles[name]
			if ok && (p.Status == StatusConnected || p.Status == StatusInstalled) {
				usable = true
				break
			}
		}
		if usable {
			covered.Add(c)
		} else {
			missing.Add(c)
		}
	}
	return covered, missing
}

// SetStatus updates the lifecycle status of the named provider.
func (r *Registry) SetStatus(name string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[name]
	if !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	p.Status = status
	return nil
}

// RecordCall folds a call outcome into the provider's rolling performance.
// Unknown providers are ignored; the caller may have raced a registry clear.
func (r *Registry) RecordCall(name string, success bool, latencyMS float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[name]
	if !ok {
		logging.Debug("Registry", "dropping call record for unknown provider %s", name)
		return
	}
	p.Performance.record(success, latencyMS)
}

// Clear removes every profile. Used on shutdown and in tests.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles = make(map[string]*Profile)
	r.byCapability = make(map[capability.Category][]string)
	r.order = nil
}

// Signature returns a stable string identifying the current provider set and
// its capabilities. Strategy recommendations are cached against it so the
// cache invalidates implicitly when coverage changes.
func (r *Registry) Signature() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(name)
		b.WriteByte('=')
		caps := r.profiles[name].Capabilities.Sorted()
		for j, c := range caps {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(string(c))
		}
	}
	return b.String()
}

// rebuildIndexLocked recomputes the capability reverse index from the current
// profiles and swaps it in. Callers must hold the write lock.
func (r *Registry) rebuildIndexLocked() {
	index := make(map[capability.Category][]string)
	for _, name := range r.order {
		p, ok := r.profiles[name]
		if !ok {
			continue
		}
		for c := range p.Capabilities {
			index[c] = append(index[c], name)
		}
	}
	r.byCapability = index
}
