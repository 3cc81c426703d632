// Package config loads and validates the conductor configuration. The
// configuration lives in a single config.yaml in the user config directory;
// every tunable has a default, so a missing file yields a fully working
// setup.
package config
