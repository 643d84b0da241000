// Package assessment scores self-assessment questionnaires. Everything here is
// pure: nothing is stored and the same answers always yield the same result.
package assessment

import (
	"fmt"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
)

type Severity string

const (
	SeverityMinimal  Severity = "Minimal"
	SeverityMild     Severity = "Mild"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
)

// Result is a normalized 0-100 score and its severity band.
type Result struct {
	Score    float64  `json:"score"`
	Severity Severity `json:"severity"`
}

// Band maps a normalized score onto a severity band.
func Band(score float64) Severity {
	switch {
	case score > 75:
		return SeveritySevere
	case score > 50:
		return SeverityModerate
	case score > 25:
		return SeverityMild
	default:
		return SeverityMinimal
	}
}

// Input bounds for Score. Both are far above any real instrument.
const (
	MaxResponses      = 200
	MaxPointsPerScale = 100
)

// Score computes 100 * sum(responses) / (len(responses) * maxPerQuestion).
func Score(responses []int, maxPerQuestion int) (Result, error) {
	if len(responses) == 0 {
		return Result{}, apperr.Validation("responses", "At least one response is required")
	}
	if len(responses) > MaxResponses {
		return Result{}, apperr.Validation("responses",
			fmt.Sprintf("At most %d responses are allowed", MaxResponses))
	}
	if maxPerQuestion <= 0 || maxPerQuestion > MaxPointsPerScale {
		return Result{}, apperr.Validation("maxPerQuestion",
			fmt.Sprintf("maxPerQuestion must be between 1 and %d", MaxPointsPerScale))
	}

	var sum float64
	for i, r := range responses {
		if r < 0 || r > maxPerQuestion {
			return Result{}, apperr.Validation("responses",
				fmt.Sprintf("Response %d must be between 0 and %d", i+1, maxPerQuestion))
		}
		sum += float64(r)
	}

	score := 100 * sum / (float64(len(responses)) * float64(maxPerQuestion))
	return Result{Score: score, Severity: Band(score)}, nil
}
