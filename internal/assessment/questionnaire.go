package assessment

import (
	"fmt"

	"github.com/AnshRaj112/mindhaven-backend/internal/apperr"
)

type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type Questionnaire struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

var frequencyOptions = []string{
	"Not at all",
	"Several days",
	"More than half the days",
	"Nearly every day",
}

// Default is the two-week mood check shown on the dashboard.
var Default = Questionnaire{
	ID:    "mood-check",
	Title: "Over the last two weeks, how often have you been bothered by the following?",
	Questions: []Question{
		{Text: "Little interest or pleasure in doing things", Options: frequencyOptions},
		{Text: "Feeling down, depressed, or hopeless", Options: frequencyOptions},
		{Text: "Trouble falling or staying asleep, or sleeping too much", Options: frequencyOptions},
		{Text: "Feeling tired or having little energy", Options: frequencyOptions},
		{Text: "Poor appetite or overeating", Options: frequencyOptions},
		{Text: "Feeling bad about yourself, or that you are a failure", Options: frequencyOptions},
		{Text: "Trouble concentrating on things", Options: frequencyOptions},
		{Text: "Moving or speaking noticeably slowly, or being restless", Options: frequencyOptions},
		{Text: "Feeling nervous, anxious, or on edge", Options: frequencyOptions},
	},
}

// MaxPerQuestion is the highest answer value any question accepts.
func (q Questionnaire) MaxPerQuestion() int {
	highest := 0
	for _, question := range q.Questions {
		if n := len(question.Options) - 1; n > highest {
			highest = n
		}
	}
	return highest
}

// ScoreQuestionnaire validates each answer against its own question's option
// count and scores the set.
func ScoreQuestionnaire(q Questionnaire, answers []int) (Result, error) {
	if len(answers) != len(q.Questions) {
		return Result{}, apperr.Validation("responses",
			fmt.Sprintf("Expected %d responses, got %d", len(q.Questions), len(answers)))
	}
	for i, a := range answers {
		if a < 0 || a >= len(q.Questions[i].Options) {
			return Result{}, apperr.Validation("responses",
				fmt.Sprintf("Response %d is not a valid option", i+1))
		}
	}
	return Score(answers, q.MaxPerQuestion())
}
