package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
)

func TestScoreExtremes(t *testing.T) {
	res, err := Score([]int{0, 0, 0, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, SeverityMinimal, res.Severity)

	res, err = Score([]int{3, 3, 3, 3}, 3)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, SeveritySevere, res.Severity)
}

func TestBandThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  Severity
	}{
		{0, SeverityMinimal},
		{25, SeverityMinimal},
		{25.01, SeverityMild},
		{50, SeverityMild},
		{50.5, SeverityModerate},
		{75, SeverityModerate},
		{75.1, SeveritySevere},
		{100, SeveritySevere},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Band(tc.score), "score %v", tc.score)
	}
}

func TestScoreExactBoundaries(t *testing.T) {
	// 1 of 4 -> 25 exactly, stays Minimal
	res, err := Score([]int{1, 0, 0, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, 25.0, res.Score)
	assert.Equal(t, SeverityMinimal, res.Severity)

	// 3 of 4 -> 75 exactly, stays Moderate
	res, err = Score([]int{1, 1, 1, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, 75.0, res.Score)
	assert.Equal(t, SeverityModerate, res.Severity)
}

func TestScoreMonotonic(t *testing.T) {
	answers := []int{0, 0, 0, 0, 0}
	prev, err := Score(answers, 3)
	require.NoError(t, err)

	for i := range answers {
		for v := 1; v <= 3; v++ {
			answers[i] = v
			cur, err := Score(answers, 3)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, cur.Score, prev.Score)
			prev = cur
		}
	}
	assert.Equal(t, 100.0, prev.Score)
}

func TestScoreDeterministic(t *testing.T) {
	a, _ := Score([]int{2, 1, 3}, 3)
	b, _ := Score([]int{2, 1, 3}, 3)
	assert.Equal(t, a, b)
}

func TestScoreValidation(t *testing.T) {
	_, err := Score(nil, 3)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = Score([]int{1}, 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = Score([]int{4}, 3)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = Score([]int{-1}, 3)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestScoreRejectsOversizedInput(t *testing.T) {
	_, err := Score([]int{0, 0, 0, 0}, 1<<62)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = Score([]int{1 << 62, 1 << 62, 0, 0}, 1<<62)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = Score(make([]int, MaxResponses+1), 3)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	full := make([]int, MaxResponses)
	for i := range full {
		full[i] = MaxPointsPerScale
	}
	res, err := Score(full, MaxPointsPerScale)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, SeveritySevere, res.Severity)
}

func TestScoreQuestionnaire(t *testing.T) {
	answers := make([]int, len(Default.Questions))
	res, err := ScoreQuestionnaire(Default, answers)
	require.NoError(t, err)
	assert.Equal(t, SeverityMinimal, res.Severity)

	for i := range answers {
		answers[i] = 3
	}
	res, err = ScoreQuestionnaire(Default, answers)
	require.NoError(t, err)
	assert.Equal(t, SeveritySevere, res.Severity)

	answers[0] = 4
	_, err = ScoreQuestionnaire(Default, answers)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = ScoreQuestionnaire(Default, []int{1})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
