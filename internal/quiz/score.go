package quiz

import (
	"strconv"
	"strings"
)

// Answer statuses.
const (
	StatusCorrect   = "Correct"
	StatusIncorrect = "Incorrect"
)

// Performance ratings.
const (
	RatingExcellent        = "Excellent"
	RatingGood             = "Good"
	RatingAverage          = "Average"
	RatingNeedsImprovement = "Needs Improvement"
)

// Result is a scored quiz attempt.
type Result struct {
	Score           int                   `json:"score"`
	Total           int                   `json:"total"`
	DetailedResults []QuestionResult      `json:"detailed_results"`
	SkillScores     map[string]SkillScore `json:"skill_scores"`
}

// QuestionResult records one graded question.
type QuestionResult struct {
	Skill         string `json:"skill"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Status        string `json:"status"`
}

// SkillScore tallies answers for one skill.
type SkillScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// SkillPerformance is one bar of the skill chart.
type SkillPerformance struct {
	Skill      string  `json:"skill"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// QuestionKey identifies a question in a submitted answer set: the skill with
// spaces replaced by underscores, then the zero-based question index.
func QuestionKey(skill string, idx int) string {
	return strings.ReplaceAll(skill, " ", "_") + "_" + strconv.Itoa(idx)
}

// Score grades answers against spec. Unanswered questions count as incorrect
// with an empty user answer.
func Score(spec Spec, answers map[string]string) Result {
	res := Result{
		DetailedResults: make([]QuestionResult, 0, spec.QuestionCount()),
		SkillScores:     make(map[string]SkillScore, len(spec)),
	}
	for _, block := range spec {
		for idx, q := range block.Questions {
			user := strings.ToLower(strings.TrimSpace(answers[QuestionKey(block.Skill, idx)]))
			correct := strings.ToLower(strings.TrimSpace(q.Correct))

			tally := res.SkillScores[block.Skill]
			tally.Total++
			status := StatusIncorrect
			if user != "" && user == correct {
				status = StatusCorrect
				tally.Correct++
				res.Score++
			}
			res.SkillScores[block.Skill] = tally
			res.Total++

			res.DetailedResults = append(res.DetailedResults, QuestionResult{
				Skill:         block.Skill,
				Question:      q.Text,
				UserAnswer:    user,
				CorrectAnswer: correct,
				Status:        status,
			})
		}
	}
	return res
}

// Percentage is score over total times 100, or 0 when there were no questions.
func (r Result) Percentage() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total) * 100
}

// Rating classifies the overall percentage.
func (r Result) Rating() string {
	return Rate(r.Percentage())
}

// Rate maps a percentage to its performance band.
func Rate(pct float64) string {
	switch {
	case pct >= 80:
		return RatingExcellent
	case pct >= 60:
		return RatingGood
	case pct >= 40:
		return RatingAverage
	default:
		return RatingNeedsImprovement
	}
}

// SkillBreakdown returns per-skill percentages in the order skills first appear
// in the graded questions.
func (r Result) SkillBreakdown() []SkillPerformance {
	seen := make(map[string]bool, len(r.SkillScores))
	out := make([]SkillPerformance, 0, len(r.SkillScores))
	for _, d := range r.DetailedResults {
		if seen[d.Skill] {
			continue
		}
		seen[d.Skill] = true
		tally := r.SkillScores[d.Skill]
		perf := SkillPerformance{Skill: d.Skill, Correct: tally.Correct, Total: tally.Total}
		if tally.Total > 0 {
			perf.Percentage = float64(tally.Correct) / float64(tally.Total) * 100
		}
		out = append(out, perf)
	}
	return out
}
