package analyzer

import (
	"conductor/internal/capability"
)

// TaskType classifies what a request is fundamentally asking for.
type TaskType string

const (
	TaskInformationRetrieval TaskType = "information-retrieval"
	TaskContentCreation      TaskType = "content-creation"
	TaskDataAnalysis         TaskType = "data-analysis"
	TaskFileOps              TaskType = "file-ops"
	TaskWebAutomation        TaskType = "web-automation"
	TaskCodeDevelopment      TaskType = "code-development"
	TaskProjectManagement    TaskType = "project-management"
	TaskResearch             TaskType = "research"
	TaskCommunication        TaskType = "communication"
	TaskReasoning            TaskType = "reasoning"
)

// AllTaskTypes returns every task type in canonical order.
func AllTaskTypes() []TaskType {
	return []TaskType{
		TaskInformationRetrieval,
		TaskContentCreation,
		TaskDataAnalysis,
		TaskFileOps,
		TaskWebAutomation,
		TaskCodeDevelopment,
		TaskProjectManagement,
		TaskResearch,
		TaskCommunication,
		TaskReasoning,
	}
}

// Complexity is the ordered difficulty bucket of a task.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
	ComplexityAdvanced Complexity = "advanced"
	ComplexityExpert   Complexity = "expert"
)

// Level returns the ordinal position of the complexity, starting at 1 for
// simple.
func (c Complexity) Level() int {
	switch c {
	case ComplexitySimple:
		return 1
	case ComplexityModerate:
		return 2
	case ComplexityComplex:
		return 3
	case ComplexityAdvanced:
		return 4
	case ComplexityExpert:
		return 5
	default:
		return 1
	}
}

func complexityFromLevel(level int) Complexity {
	switch {
	case level <= 1:
		return ComplexitySimple
	case level == 2:
		return ComplexityModerate
	case level == 3:
		return ComplexityComplex
	case level == 4:
		return ComplexityAdvanced
	default:
		return ComplexityExpert
	}
}

// baseSteps is the estimated step count for each complexity bucket before
// conjunction and comma adjustments.
func (c Complexity) baseSteps() int {
	switch c {
	case ComplexitySimple:
		return 1
	case ComplexityModerate:
		return 3
	case ComplexityComplex:
		return 6
	case ComplexityAdvanced:
		return 12
	case ComplexityExpert:
		return 20
	default:
		return 1
	}
}

// TaskAnalysis is the immutable result of classifying a request.
// CacheHit and AnalysisTimeMS are observational only and excluded from
// equality considerations.
type TaskAnalysis struct {
	Description          string         `json:"description"`
	TaskType             TaskType       `json:"task_type"`
	Complexity           Complexity     `json:"complexity"`
	RequiredCapabilities capability.Set `json:"required_capabilities"`
	EstimatedSteps       int            `json:"estimated_steps"`
	Parallelizable       bool           `json:"parallelizable"`
	RequiresIteration    bool           `json:"requires_iteration"`
	RequiresHumanInput   bool           `json:"requires_human_input"`
	Confidence           float64        `json:"confidence"`

	CacheHit       bool  `json:"cache_hit"`
	AnalysisTimeMS int64 `json:"analysis_time_ms"`
}

// clone deep-copies the analysis so cached values are never aliased.
func (a TaskAnalysis) clone() TaskAnalysis {
	out := a
	out.RequiredCapabilities = make(capability.Set, len(a.RequiredCapabilities))
	for c := range a.RequiredCapabilities {
		out.RequiredCapabilities.Add(c)
	}
	return out
}
