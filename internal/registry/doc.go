// Package registry holds the in-memory provider index shared by discovery,
// the installer and the coordinator.
//
// The Registry owns every ProviderProfile. Discovery and the installer write
// through its narrow mutation surface (Upsert, SetStatus, RecordCall); all
// reads return deep copies so callers can never alias registry-owned state.
// Alongside the profiles the registry maintains a capability reverse index
// (category -> provider names) that is rebuilt and published atomically after
// every mutation, so readers always observe a consistent view.
package registry
