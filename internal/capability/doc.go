// Package capability defines the closed capability taxonomy shared by every
// conductor subsystem.
//
// A Category is a coarse functional tag (file, web, search, ...) that
// providers advertise and task analyses require. The keyword tables in this
// package are the single source of truth for mapping free text and tool
// names onto categories; the analyzer, the discovery engine and the role
// templates all resolve against them so the taxonomy cannot drift between
// subsystems.
package capability
