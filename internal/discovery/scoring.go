package discovery

import (
	"sort"
	"strings"

	"conductor/internal/analyzer"
	"conductor/internal/registry"
)

// BestForTask ranks the known providers against the request text and
// returns the top k with a positive score. Scoring rewards description and
// tool-name overlap with the request, registry priority, live connections
// and fast discovery responses.
func (e *Engine) BestForTask(text string, k int) []registry.Profile {
	tokens := strings.Fields(analyzer.Normalize(text))
	if len(tokens) == 0 || k <= 0 {
		return nil
	}

	type scored struct {
		profile registry.Profile
		score   float64
	}

	var ranked []scored
	for _, profile := range e.registry.List() {
		score := scoreProfile(tokens, profile)
		if score > 0 {
			ranked = append(ranked, scored{profile: profile, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	out := make([]registry.Profile, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.profile)
	}
	return out
}

func scoreProfile(tokens []string, profile registry.Profile) float64 {
	description := strings.ToLower(profile.Description)
	toolText := strings.ToLower(strings.Join(profile.Tools, " "))

	score := 0.0
	for _, tok := range tokens {
		if strings.Contains(description, tok) {
			score += 1.0
		}
		if strings.Contains(toolText, tok) {
			score += 0.5
		}
	}
	if score == 0 {
		return 0
	}

	score += profile.PriorityScore
	if profile.Status == registry.StatusConnected {
		score += 0.2
	}
	if profile.LastDiscoveryLatencyMS > 0 {
		score += 0.1 / (1.0 + float64(profile.LastDiscoveryLatencyMS)/100.0)
	}
	return score
}
