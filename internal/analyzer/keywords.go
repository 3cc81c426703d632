package analyzer

import "conductor/internal/capability"

// typeKeywords score each task type by substring matches against the
// normalized request text.
var typeKeywords = map[TaskType][]string{
	TaskInformationRetrieval: {
		"search", "find", "lookup", "look up", "retrieve", "fetch",
		"what is", "who is", "information",
	},
	TaskContentCreation: {
		"write", "create", "compose", "draft", "blog", "article", "post",
		"content", "generate", "essay",
	},
	TaskDataAnalysis: {
		"analyze", "analysis", "statistics", "trends", "summarize",
		"anomaly", "anomalies", "chart", "comparison", "metrics",
	},
	TaskFileOps: {
		"file", "files", "read", "save", "copy", "move", "delete",
		"folder", "directory", "rename",
	},
	TaskWebAutomation: {
		"browse", "browser", "navigate", "click", "scrape", "screenshot",
		"automate", "website", "form",
	},
	TaskCodeDevelopment: {
		"code", "github", "git", "repository", "clone", "debug",
		"implement", "develop", "program", "refactor",
	},
	TaskProjectManagement: {
		"project", "milestone", "organize", "roadmap", "backlog",
		"deadline", "sprint",
	},
	TaskResearch: {
		"research", "investigate", "study", "explore", "literature",
		"survey",
	},
	TaskCommunication: {
		"email", "slack", "message", "notify", "send", "announce",
		"reply",
	},
	TaskReasoning: {
		"reason", "solve", "puzzle", "logic", "deduce", "prove",
		"figure out",
	},
}

// complexityKeywords bump the complexity bucket when present.
var complexityKeywords = map[Complexity][]string{
	ComplexityModerate: {
		"multiple", "several", "polished", "quality", "detailed",
		"thorough", "improve",
	},
	ComplexityComplex: {
		"analyze", "compare", "comparison", "integrate", "comprehensive",
		"workflow", "complex",
	},
	ComplexityAdvanced: {
		"orchestrate", "coordinate", "multi-step", "pipeline",
		"architecture", "advanced",
	},
	ComplexityExpert: {
		"distributed", "optimize", "machine learning", "real-time",
		"concurrent", "expert",
	},
}

// baseCapabilities are always required for a task type, independent of the
// request wording.
var baseCapabilities = map[TaskType][]capability.Category{
	TaskInformationRetrieval: {capability.CategorySearch, capability.CategoryWeb},
	TaskContentCreation:      {capability.CategoryFile},
	TaskDataAnalysis:         {capability.CategoryAnalysis, capability.CategoryDataProcessing},
	TaskFileOps:              {capability.CategoryFile},
	TaskWebAutomation:        {capability.CategoryWeb, capability.CategoryAutomation},
	TaskCodeDevelopment:      {capability.CategoryDevelopment, capability.CategoryFile},
	TaskProjectManagement:    {capability.CategoryAutomation, capability.CategoryCommunication},
	TaskResearch:             {capability.CategorySearch, capability.CategoryWeb},
	TaskCommunication:        {capability.CategoryCommunication},
	TaskReasoning:            {capability.CategoryReasoning, capability.CategoryCognitive},
}

var parallelKeywords = []string{
	"simultaneously", "parallel", "concurrently", "at the same time",
	"meanwhile", "independently",
}

var sequentialKeywords = []string{
	"first", "then", "after", "before", "finally", "step by step",
	"sequentially",
}

var iterationKeywords = []string{
	"iterate", "iteration", "refine", "revise", "retry", "until",
	"loop", "feedback",
}

var humanInputKeywords = []string{
	"approve", "approval", "confirm", "permission", "sign off",
	"review", "ask me",
}

// actionWords indicate concrete verbs; two or more suggest an enumerated
// multi-part request and they also raise analysis confidence.
var actionWords = []string{
	"search", "find", "read", "write", "create", "analyze", "summarize",
	"check", "clone", "produce", "build", "generate", "fetch", "send",
	"compare",
}

var vagueWords = []string{
	"something", "stuff", "somehow", "whatever", "things", "maybe",
}

var conversationalKeywords = []string{
	"discuss", "conversation", "negotiate", "interview", "chat",
	"collaborate", "debate", "role-play",
}

var qualityKeywords = []string{
	"quality", "polished", "high-quality", "best", "excellent",
	"perfect", "refined", "flawless",
}
