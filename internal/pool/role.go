package pool

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Role is a worker identity handed to the pattern dispatcher. A role is
// leased exclusively between Checkout and Checkin; its provider list is a
// subset of the registry.
type Role struct {
	Name         string   `json:"name"`
	Instructions string   `json:"instructions"`
	Providers    []string `json:"providers"`

	// Handoffs names the roles a swarm worker may hand the conversation
	// to. Empty outside swarm dispatch.
	Handoffs []string `json:"handoffs,omitempty"`
}

// Identity hashes the fields that define role equivalence. Two configs with
// equal identities are interchangeable for checkout purposes.
func (r *Role) Identity() string {
	h := fnv.New64a()
	h.Write([]byte(r.Name))
	h.Write([]byte{0})
	h.Write([]byte(r.Instructions))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(r.Providers, ",")))
	return strconv.FormatUint(h.Sum64(), 16)
}
