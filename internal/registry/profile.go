package registry

import (
	"conductor/internal/capability"
)

// Status describes the lifecycle state of a provider.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDiscovering Status = "discovering"
	StatusAvailable   Status = "available"
	StatusInstalled   Status = "installed"
	StatusConnected   Status = "connected"
	StatusError       Status = "error"
)

// Performance tracks the rolling call statistics for a provider. Success rate
// and latency are exponential moving averages with alpha 0.1.
type Performance struct {
	SuccessRate  float64 `json:"success_rate"`
	LatencyEMAMS float64 `json:"latency_ema_ms"`
	CallCount    int64   `json:"call_count"`
}

const perfAlpha = 0.1

func (p *Performance) record(success bool, latencyMS float64) {
	outcome := 0.0
	if success {
		outcome = 1.0
	}
	if p.CallCount == 0 {
		p.SuccessRate = outcome
		p.LatencyEMAMS = latencyMS
	} else {
		p.SuccessRate = p.SuccessRate*(1-perfAlpha) + outcome*perfAlpha
		p.LatencyEMAMS = p.LatencyEMAMS*(1-perfAlpha) + latencyMS*perfAlpha
	}
	p.CallCount++
}

// Profile describes a capability provider known to the registry.
type Profile struct {
	Name                   string         `json:"name"`
	Description            string         `json:"description"`
	Capabilities           capability.Set `json:"capabilities"`
	Tools                  []string       `json:"tools"`
	Resources              []string       `json:"resources"`
	Status                 Status         `json:"status"`
	InstallCommand         string         `json:"install_command,omitempty"`
	PriorityScore          float64        `json:"priority_score"`
	Performance            Performance    `json:"performance"`
	LastDiscoveryLatencyMS int64          `json:"last_discovery_latency_ms"`
}

// clone returns a deep copy so callers never alias registry-owned state.
func (p *Profile) clone() Profile {
	out := *p
	out.Capabilities = make(capability.Set, len(p.Capabilities))
	for c := range p.Capabilities {
		out.Capabilities.Add(c)
	}
	out.Tools = append([]string(nil), p.Tools...)
	out.Resources = append([]string(nil), p.Resources...)
	return out
}
