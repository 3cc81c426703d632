package dispatch

import "strings"

// Quality is the ordinal verdict scale used by the evaluator-optimizer loop.
type Quality int

const (
	QualityUnknown Quality = iota
	QualityPoor
	QualityFair
	QualityGood
	QualityExcellent
)

func (q Quality) String() string {
	switch q {
	case QualityPoor:
		return "poor"
	case QualityFair:
		return "fair"
	case QualityGood:
		return "good"
	case QualityExcellent:
		return "excellent"
	default:
		return "unknown"
	}
}

// ParseQuality extracts the strongest verdict mentioned in an evaluator
// response. Responses naming no verdict parse as unknown.
func ParseQuality(response string) Quality {
	lowered := strings.ToLower(response)
	for _, q := range []Quality{QualityExcellent, QualityGood, QualityFair, QualityPoor} {
		if strings.Contains(lowered, q.String()) {
			return q
		}
	}
	return QualityUnknown
}
