// Package logging provides the structured logging system for conductor.
//
// It is a thin wrapper over Go's standard slog package that attaches a
// subsystem identifier to every entry and applies level filtering at the
// handler. Subsystems in use include Analyzer, Discovery, Strategy,
// Installer, Pool, Coordinator, Dispatch and Config.
//
// Initialize once at startup:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stdout)
//
// then log from any package:
//
//	logging.Info("Discovery", "registered provider %s", name)
//	logging.Error("Installer", err, "install of %s failed", name)
package logging
