// Package installer makes providers for missing capabilities exist in the
// registry. Candidates come from the well-known catalog, ranked by how many
// required capabilities each satisfies; installation runs external package
// managers (npx, uvx, pip, git) through an injected Launcher so the
// subprocess layer can be stubbed in tests. Outcomes travel as
// InstallationResult values rather than errors so callers iterate candidates
// without unwinding.
package installer
