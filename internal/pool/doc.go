// Package pool mints worker roles from a static template catalog and leases
// them to the pattern dispatcher. Template selection scores capability-set
// similarity; built roles extend the template's preferred providers with
// registry providers for any capability still uncovered. The pool keeps a
// bounded queue of inactive roles for reuse.
package pool
