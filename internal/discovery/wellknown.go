package discovery

import "conductor/internal/capability"

// WellKnownProvider is a statically known provider that can be installed on
// demand. Entries carry the capabilities they are expected to provide once
// running; actual capabilities are re-derived from advertised tools after a
// successful connection.
type WellKnownProvider struct {
	Name           string                `yaml:"name"`
	Description    string                `yaml:"description"`
	InstallCommand string                `yaml:"installCommand"`
	Capabilities   []capability.Category `yaml:"capabilities"`
}

// DefaultWellKnown returns the built-in catalog of well-known providers.
func DefaultWellKnown() []WellKnownProvider {
	return []WellKnownProvider{
		{
			Name:           "filesystem",
			Description:    "Read, write and organize local files and directories",
			InstallCommand: "npx -y @modelcontextprotocol/server-filesystem",
			Capabilities:   []capability.Category{capability.CategoryFile},
		},
		{
			Name:           "fetch",
			Description:    "Fetch web pages and convert them for analysis",
			InstallCommand: "uvx mcp-server-fetch",
			Capabilities:   []capability.Category{capability.CategoryWeb},
		},
		{
			Name:           "brave-search",
			Description:    "Web and local search via the Brave Search API",
			InstallCommand: "npx -y @modelcontextprotocol/server-brave-search",
			Capabilities:   []capability.Category{capability.CategorySearch, capability.CategoryWeb},
		},
		{
			Name:           "github",
			Description:    "Search repositories, read code and manage issues on GitHub",
			InstallCommand: "npx -y @modelcontextprotocol/server-github",
			Capabilities:   []capability.Category{capability.CategoryDevelopment, capability.CategorySearch},
		},
		{
			Name:           "sqlite",
			Description:    "Query and update SQLite databases",
			InstallCommand: "uvx mcp-server-sqlite",
			Capabilities:   []capability.Category{capability.CategoryDatabase},
		},
		{
			Name:           "puppeteer",
			Description:    "Drive a headless browser for scraping and automation",
			InstallCommand: "npx -y @modelcontextprotocol/server-puppeteer",
			Capabilities:   []capability.Category{capability.CategoryWeb, capability.CategoryAutomation},
		},
		{
			Name:           "memory",
			Description:    "Persistent knowledge graph memory for agents",
			InstallCommand: "npx -y @modelcontextprotocol/server-memory",
			Capabilities:   []capability.Category{capability.CategoryCognitive},
		},
		{
			Name:           "sequential-thinking",
			Description:    "Structured step-by-step reasoning support",
			InstallCommand: "npx -y @modelcontextprotocol/server-sequential-thinking",
			Capabilities:   []capability.Category{capability.CategoryReasoning, capability.CategoryCognitive},
		},
		{
			Name:           "slack",
			Description:    "Send messages and read channels in Slack",
			InstallCommand: "npx -y @modelcontextprotocol/server-slack",
			Capabilities:   []capability.Category{capability.CategoryCommunication},
		},
	}
}
