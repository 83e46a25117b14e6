package llm

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
)

var (
	//go:embed prompts/analysis.txt
	analysisTemplate string
	//go:embed prompts/quiz.txt
	quizTemplate string
	//go:embed prompts/recommendations.txt
	recommendationsTemplate string
	//go:embed prompts/cover_letter.txt
	coverLetterTemplate string
	//go:embed prompts/job_match.txt
	jobMatchTemplate string
)

// Prompt kinds, also used as feature labels in logs and metrics.
const (
	KindAnalysis        = "analysis"
	KindQuiz            = "quiz"
	KindRecommendations = "recommendations"
	KindCoverLetter     = "cover-letter"
	KindJobMatch        = "job-match"
)

// PromptKinds lists every prompt template in display order.
func PromptKinds() []string {
	return []string{KindAnalysis, KindQuiz, KindRecommendations, KindCoverLetter, KindJobMatch}
}

// AnalysisPrompt asks for a structured analysis of the resume.
func AnalysisPrompt(resume string) string {
	return render(analysisTemplate, "{{RESUME_TEXT}}", resume)
}

// QuizPrompt asks for three multiple-choice questions per key skill as bare JSON.
func QuizPrompt(resume string) string {
	return render(quizTemplate, "{{RESUME_TEXT}}", resume)
}

// RecommendationsPrompt embeds the quiz performance and the skills tested.
// quizJSON is expected to be the indented JSON of the quiz that was taken.
func RecommendationsPrompt(resume, quizJSON string, score, total int) string {
	return render(recommendationsTemplate,
		"{{RESUME_TEXT}}", resume,
		"{{TOTAL}}", strconv.Itoa(total),
		"{{SCORE}}", strconv.Itoa(score),
		"{{PERCENTAGE}}", FormatPercentage(score, total),
		"{{QUIZ_JSON}}", quizJSON,
	)
}

// CoverLetterPrompt asks for a cover letter tailored to the job description.
func CoverLetterPrompt(resume, jobDescription string) string {
	return render(coverLetterTemplate, "{{RESUME_TEXT}}", resume, "{{JOB_DESCRIPTION}}", jobDescription)
}

// JobMatchPrompt asks how well the resume matches the job description.
func JobMatchPrompt(resume, jobDescription string) string {
	return render(jobMatchTemplate, "{{RESUME_TEXT}}", resume, "{{JOB_DESCRIPTION}}", jobDescription)
}

// FormatPercentage renders score/total as a two-decimal percentage, 0.00% when total is zero.
func FormatPercentage(score, total int) string {
	if total <= 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(score)/float64(total)*100)
}

// render substitutes placeholders in a single pass so values containing
// placeholder text are left untouched.
func render(template string, pairs ...string) string {
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(template))
}
