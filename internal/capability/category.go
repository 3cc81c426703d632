package capability

// Category is a coarse functional tag attached to providers and required by
// task analyses. The set is closed; comparison is by string identity.
type Category string

const (
	CategoryFile           Category = "file"
	CategoryWeb            Category = "web"
	CategorySearch         Category = "search"
	CategoryDatabase       Category = "database"
	CategoryAutomation     Category = "automation"
	CategoryDevelopment    Category = "development"
	CategoryCommunication  Category = "communication"
	CategoryAnalysis       Category = "analysis"
	CategoryReasoning      Category = "reasoning"
	CategoryCognitive      Category = "cognitive"
	CategorySystem         Category = "system"
	CategoryGraphics       Category = "graphics"
	CategoryDataProcessing Category = "data-processing"
)

// AllCategories returns every category in canonical order.
func AllCategories() []Category {
	return []Category{
		CategoryFile,
		CategoryWeb,
		CategorySearch,
		CategoryDatabase,
		CategoryAutomation,
		CategoryDevelopment,
		CategoryCommunication,
		CategoryAnalysis,
		CategoryReasoning,
		CategoryCognitive,
		CategorySystem,
		CategoryGraphics,
		CategoryDataProcessing,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// Set is an unordered collection of categories.
type Set map[Category]struct{}

// NewSet builds a Set from the given categories.
func NewSet(categories ...Category) Set {
	s := make(Set, len(categories))
	for _, c := range categories {
		s[c] = struct{}{}
	}
	return s
}

// Add inserts a category into the set.
func (s Set) Add(c Category) {
	s[c] = struct{}{}
}

// Contains reports whether the set holds c.
func (s Set) Contains(c Category) bool {
	_, ok := s[c]
	return ok
}

// Union returns a new set holding the members of both sets.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for c := range s {
		out[c] = struct{}{}
	}
	for c := range other {
		out[c] = struct{}{}
	}
	return out
}

// Sorted returns the members in canonical category order. Categories outside
// the closed set sort last in string order; they should not occur.
func (s Set) Sorted() []Category {
	out := make([]Category, 0, len(s))
	for _, c := range AllCategories() {
		if s.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

// Jaccard computes the Jaccard similarity of two sets. Two empty sets have
// similarity 0.
func Jaccard(a, b Set) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for c := range a {
		if b.Contains(c) {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
