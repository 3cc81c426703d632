package pool

import (
	"strings"

	"conductor/internal/capability"
	"conductor/internal/registry"
	"conductor/pkg/logging"
)

const subsystem = "Pool"

// Template selection weights: capability-set similarity dominates, exact
// coverage of the required set breaks near-ties.
const (
	jaccardWeight  = 0.7
	coverageWeight = 0.3
	selectionFloor = 0.3
)

// Factory mints roles from the template catalog, resolving provider lists
// against the registry.
type Factory struct {
	registry  *registry.Registry
	templates []Template
}

// NewFactory creates a factory over the static template catalog.
func NewFactory(reg *registry.Registry) *Factory {
	return &Factory{
		registry:  reg,
		templates: Templates(),
	}
}

// TemplateFor picks the highest-scoring template for the required
// capabilities, falling back to the versatile template when nothing scores
// above the floor.
func (f *Factory) TemplateFor(required capability.Set) Template {
	best := f.versatile()
	bestScore := 0.0

	for _, t := range f.templates {
		if t.Name == VersatileTemplate {
			continue
		}
		score := jaccardWeight*capability.Jaccard(t.Capabilities, required) +
			coverageWeight*coverageFraction(t.Capabilities, required)
		if score > bestScore {
			best = t
			bestScore = score
		}
	}

	if bestScore < selectionFloor {
		return f.versatile()
	}
	return best
}

// Build creates a role for the required capabilities: template providers
// first, extended deterministically with registry providers for any
// capability the template alone does not cover.
func (f *Factory) Build(required capability.Set) Role {
	t := f.TemplateFor(required)

	providers := append([]string(nil), t.Providers...)
	have := make(map[string]struct{}, len(providers))
	covered := make(capability.Set)
	for _, name := range providers {
		have[name] = struct{}{}
		if p, ok := f.registry.Get(name); ok {
			covered = covered.Union(p.Capabilities)
		}
	}

	for _, c := range required.Sorted() {
		if covered.Contains(c) {
			continue
		}
		for _, name := range f.registry.NamesFor(c) {
			if _, dup := have[name]; dup {
				continue
			}
			providers = append(providers, name)
			have[name] = struct{}{}
			if p, ok := f.registry.Get(name); ok {
				covered = covered.Union(p.Capabilities)
			}
			break
		}
	}

	role := Role{
		Name:         t.Name,
		Instructions: buildInstructions(t, required),
		Providers:    providers,
	}
	logging.Debug(subsystem, "built role %s with %d providers", role.Name, len(providers))
	return role
}

func (f *Factory) versatile() Template {
	for _, t := range f.templates {
		if t.Name == VersatileTemplate {
			return t
		}
	}
	// The catalog always carries the versatile entry.
	return Template{Name: VersatileTemplate}
}

// buildInstructions appends capability descriptions and the template's trait
// phrase in a fixed order so equal inputs produce byte-equal instructions.
func buildInstructions(t Template, required capability.Set) string {
	var b strings.Builder
	b.WriteString(t.Instruction)

	if len(required) > 0 {
		descriptions := make([]string, 0, len(required))
		for _, c := range required.Sorted() {
			if d, ok := capabilityDescriptions[c]; ok {
				descriptions = append(descriptions, d)
			}
		}
		if len(descriptions) > 0 {
			b.WriteString("\n\nYou are equipped for: ")
			b.WriteString(strings.Join(descriptions, ", "))
			b.WriteString(".")
		}
	}

	b.WriteString("\n")
	b.WriteString(t.Trait)
	return b.String()
}

func coverageFraction(have, required capability.Set) float64 {
	if len(required) == 0 {
		return 0
	}
	n := 0
	for c := range required {
		if have.Contains(c) {
			n++
		}
	}
	return float64(n) / float64(len(required))
}
