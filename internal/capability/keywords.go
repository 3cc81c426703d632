package capability

import "strings"

// keywordTable maps each category to the keywords that indicate it. The table
// is consulted by both the task analyzer (matching request text) and the
// discovery engine (matching advertised tool and resource names).
var keywordTable = map[Category][]string{
	CategoryFile: {
		"file", "read", "write", "directory", "folder", "path", "save",
		"load", "copy", "move", "delete",
	},
	CategoryWeb: {
		"web", "browser", "http", "url", "scrape", "fetch", "navigate",
		"page", "website", "crawl",
	},
	CategorySearch: {
		"search", "find", "query", "lookup", "google", "brave", "discover",
	},
	CategoryDatabase: {
		"database", "sql", "sqlite", "postgres", "table", "record", "store",
		"schema",
	},
	CategoryAutomation: {
		"automate", "automation", "workflow", "schedule", "trigger",
		"puppeteer", "playwright", "click", "screenshot",
	},
	CategoryDevelopment: {
		"code", "git", "github", "repository", "commit", "build", "compile",
		"debug", "test", "deploy", "clone",
	},
	CategoryCommunication: {
		"slack", "email", "message", "notify", "send", "chat", "post",
	},
	CategoryAnalysis: {
		"analyze", "analysis", "chart", "graph", "statistics", "metrics",
		"report", "compare", "summarize", "anomaly", "anomalies",
	},
	CategoryReasoning: {
		"reason", "think", "plan", "decide", "logic", "solve", "deduce",
	},
	CategoryCognitive: {
		"memory", "remember", "recall", "knowledge", "context", "learn",
	},
	CategorySystem: {
		"system", "process", "shell", "command", "execute", "terminal",
		"environment",
	},
	CategoryGraphics: {
		"image", "diagram", "draw", "render", "visual", "svg", "png",
	},
	CategoryDataProcessing: {
		"csv", "json", "xml", "parse", "transform", "convert", "etl",
		"pipeline", "data",
	},
}

// Keywords returns the keyword list for a category. The returned slice must
// not be mutated.
func Keywords(c Category) []string {
	return keywordTable[c]
}

// Categorize maps a tool or resource name to the categories whose keywords
// occur as substrings of the lowercased name. Names that match nothing return
// an empty slice.
func Categorize(name string) []Category {
	lowered := strings.ToLower(name)
	var out []Category
	for _, c := range AllCategories() {
		for _, kw := range keywordTable[c] {
			if strings.Contains(lowered, kw) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// CategorizeAll folds Categorize over a list of names into one set.
func CategorizeAll(names []string) Set {
	s := make(Set)
	for _, name := range names {
		for _, c := range Categorize(name) {
			s.Add(c)
		}
	}
	return s
}

// MatchText returns the categories whose keywords occur as substrings of the
// already-normalized request text.
func MatchText(normalized string) Set {
	s := make(Set)
	for _, c := range AllCategories() {
		for _, kw := range keywordTable[c] {
			if strings.Contains(normalized, kw) {
				s.Add(c)
				break
			}
		}
	}
	return s
}
