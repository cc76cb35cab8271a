package models

// Insight sources.
const (
	InsightTemplate = "template"
	InsightGemini   = "gemini"
)

// Insight is a markdown note about a bill or a month.
type Insight struct {
	Markdown string `json:"insights"`
	Source   string `json:"source"`
}
