package assistant

import "resume-assistant/internal/session"

// View is one entry of the page navigation.
type View struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	RequiresResume bool   `json:"requiresResume"`
	Available      bool   `json:"available"`
}

var viewCatalog = []View{
	{ID: "about", Title: "About"},
	{ID: "resume-analysis", Title: "Resume Analysis", RequiresResume: true},
	{ID: "skills-quiz", Title: "Skills Quiz", RequiresResume: true},
	{ID: "learning-recommendations", Title: "Learning Recommendations", RequiresResume: true},
	{ID: "cover-letter", Title: "Cover Letter Generator", RequiresResume: true},
	{ID: "job-description-analyzer", Title: "Job Description Analyzer", RequiresResume: true},
	{ID: "download-report", Title: "Download Report", RequiresResume: true},
}

// Views lists the navigation with availability for state.
func Views(state *session.State) []View {
	hasResume := state.HasResume()
	out := make([]View, len(viewCatalog))
	for i, v := range viewCatalog {
		v.Available = !v.RequiresResume || hasResume
		out[i] = v
	}
	return out
}
