package pool

import "conductor/internal/capability"

// Template is a static role blueprint. Capabilities drive template selection;
// the provider list is a preference, extended at build time with whatever
// else the required capabilities demand.
type Template struct {
	Name         string
	Instruction  string
	Trait        string
	Capabilities capability.Set
	Providers    []string
}

// VersatileTemplate is the fallback role used when no specialized template
// scores above the selection floor.
const VersatileTemplate = "versatile"

// Templates returns the static role catalog in selection order.
func Templates() []Template {
	return []Template{
		{
			Name:         "researcher",
			Instruction:  "You are a research specialist. Find, gather and cross-check information from multiple sources before answering.",
			Trait:        "You are thorough and cite where information came from.",
			Capabilities: capability.NewSet(capability.CategorySearch, capability.CategoryWeb),
			Providers:    []string{"brave-search", "fetch"},
		},
		{
			Name:         "analyst",
			Instruction:  "You are a data analyst. Examine data sets, compute statistics and surface patterns and anomalies.",
			Trait:        "You are precise and quantify your claims.",
			Capabilities: capability.NewSet(capability.CategoryAnalysis, capability.CategoryDataProcessing, capability.CategoryDatabase),
			Providers:    []string{"sqlite"},
		},
		{
			Name:         "creator",
			Instruction:  "You are a content creator. Draft, revise and polish written material and supporting visuals.",
			Trait:        "You favor clear structure and concrete language.",
			Capabilities: capability.NewSet(capability.CategoryFile, capability.CategoryGraphics),
			Providers:    []string{"filesystem"},
		},
		{
			Name:         "developer",
			Instruction:  "You are a software developer. Read, write and debug code, and manage repositories.",
			Trait:        "You test assumptions before committing to a change.",
			Capabilities: capability.NewSet(capability.CategoryDevelopment, capability.CategorySystem),
			Providers:    []string{"github", "filesystem"},
		},
		{
			Name:         "automator",
			Instruction:  "You are an automation specialist. Drive browsers and system tools to complete repetitive workflows.",
			Trait:        "You break workflows into small verifiable steps.",
			Capabilities: capability.NewSet(capability.CategoryAutomation, capability.CategorySystem),
			Providers:    []string{"puppeteer"},
		},
		{
			Name:         "web-specialist",
			Instruction:  "You are a web specialist. Navigate sites, extract content and interact with web applications.",
			Trait:        "You verify extracted content against the live page.",
			Capabilities: capability.NewSet(capability.CategoryWeb, capability.CategorySearch, capability.CategoryAutomation),
			Providers:    []string{"fetch", "puppeteer", "brave-search"},
		},
		{
			Name:         "reasoner",
			Instruction:  "You are a reasoning specialist. Decompose problems, weigh alternatives and explain your conclusions step by step.",
			Trait:        "You make your chain of reasoning explicit.",
			Capabilities: capability.NewSet(capability.CategoryReasoning, capability.CategoryCognitive),
			Providers:    []string{"sequential-thinking", "memory"},
		},
		{
			Name:         "coordinator",
			Instruction:  "You are a coordinator. Plan multi-step work, delegate to specialists and merge their results.",
			Trait:        "You keep the overall goal in view while tracking details.",
			Capabilities: capability.NewSet(capability.CategoryReasoning, capability.CategoryCommunication),
			Providers:    []string{"sequential-thinking"},
		},
		{
			Name:         "communicator",
			Instruction:  "You are a communication specialist. Compose and deliver messages across channels.",
			Trait:        "You match tone and length to the audience.",
			Capabilities: capability.NewSet(capability.CategoryCommunication),
			Providers:    []string{"slack"},
		},
		{
			Name:         VersatileTemplate,
			Instruction:  "You are a versatile assistant. Handle the task end to end with whatever tools are available.",
			Trait:        "You adapt your approach to the task at hand.",
			Capabilities: capability.NewSet(capability.CategoryFile, capability.CategoryWeb, capability.CategorySearch),
			Providers:    []string{"filesystem", "fetch"},
		},
	}
}

// capabilityDescriptions phrase each category for role instructions.
var capabilityDescriptions = map[capability.Category]string{
	capability.CategoryFile:           "reading and writing files",
	capability.CategoryWeb:            "fetching and browsing web content",
	capability.CategorySearch:         "searching for information",
	capability.CategoryDatabase:       "querying databases",
	capability.CategoryAutomation:     "automating browser and system workflows",
	capability.CategoryDevelopment:    "working with code and repositories",
	capability.CategoryCommunication:  "sending messages and notifications",
	capability.CategoryAnalysis:       "analyzing data and producing reports",
	capability.CategoryReasoning:      "structured multi-step reasoning",
	capability.CategoryCognitive:      "remembering context across steps",
	capability.CategorySystem:         "running system commands",
	capability.CategoryGraphics:       "producing images and diagrams",
	capability.CategoryDataProcessing: "parsing and transforming structured data",
}
