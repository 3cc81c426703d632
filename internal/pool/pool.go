package pool

import (
	"sync"

	"conductor/internal/capability"
	"conductor/pkg/logging"
)

// DefaultMaxSize is twice the default request concurrency.
const DefaultMaxSize = 10

// Stats summarizes pool activity.
type Stats struct {
	Idle      int   `json:"idle"`
	Active    int   `json:"active"`
	Created   int64 `json:"created"`
	Reused    int64 `json:"reused"`
	Discarded int64 `json:"discarded"`
}

// Pool leases roles to the dispatcher and keeps up to max inactive roles for
// reuse. A role is exclusively owned between Checkout and Checkin.
type Pool struct {
	mu      sync.Mutex
	factory *Factory
	max     int

	idle   []*Role
	active map[*Role]struct{}

	created   int64
	reused    int64
	discarded int64
}

// New creates a pool holding at most max inactive roles.
func New(factory *Factory, max int) *Pool {
	if max <= 0 {
		max = DefaultMaxSize
	}
	return &Pool{
		factory: factory,
		max:     max,
		active:  make(map[*Role]struct{}),
	}
}

// Checkout builds the role configuration for the required capabilities and
// leases a matching role.
func (p *Pool) Checkout(required capability.Set) *Role {
	config := p.factory.Build(required)
	return p.CheckoutRole(config)
}

// CheckoutRole leases a role matching config: an idle role with the same
// identity is reused as-is, any other idle role is rewritten, and only when
// the pool is empty is a new role constructed.
func (p *Pool) CheckoutRole(config Role) *Role {
	p.mu.Lock()
	defer p.mu.Unlock()

	wanted := config.Identity()
	for i, r := range p.idle {
		if r.Identity() == wanted {
			p.idle = append(p.idle[:i], p.idle[i+1:]...)
			p.active[r] = struct{}{}
			p.reused++
			return r
		}
	}

	if len(p.idle) > 0 {
		r := p.idle[0]
		p.idle = p.idle[1:]
		*r = config
		p.active[r] = struct{}{}
		p.reused++
		return r
	}

	r := &Role{}
	*r = config
	p.active[r] = struct{}{}
	p.created++
	return r
}

// Checkin returns a leased role. When the idle queue is full the role is
// discarded instead.
func (p *Pool) Checkin(r *Role) {
	if r == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.active, r)
	r.Handoffs = nil
	if len(p.idle) >= p.max {
		p.discarded++
		return
	}
	p.idle = append(p.idle, r)
}

// TeamFor leases one specialized role per capability group, up to size
// roles. With no required capabilities a single versatile role is returned.
func (p *Pool) TeamFor(required capability.Set, size int) []*Role {
	if size <= 0 {
		size = 1
	}
	caps := required.Sorted()
	if len(caps) == 0 {
		return []*Role{p.Checkout(nil)}
	}

	groups := make([]capability.Set, min(size, len(caps)))
	for i := range groups {
		groups[i] = make(capability.Set)
	}
	for i, c := range caps {
		groups[i%len(groups)].Add(c)
	}

	team := make([]*Role, 0, len(groups))
	for _, g := range groups {
		team = append(team, p.Checkout(g))
	}
	return team
}

// Cleanup drops every pooled role, idle and active alike.
func (p *Pool) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	dropped := len(p.idle) + len(p.active)
	p.idle = nil
	p.active = make(map[*Role]struct{})
	if dropped > 0 {
		logging.Debug(subsystem, "cleanup dropped %d roles", dropped)
	}
}

// EvictIdle discards idle roles beyond keep. Used by the coordinator's
// periodic resource cleanup.
func (p *Pool) EvictIdle(keep int) {
	if keep < 0 {
		keep = 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.idle) <= keep {
		return
	}
	p.discarded += int64(len(p.idle) - keep)
	p.idle = p.idle[:keep]
}

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Idle:      len(p.idle),
		Active:    len(p.active),
		Created:   p.created,
		Reused:    p.reused,
		Discarded: p.discarded,
	}
}
