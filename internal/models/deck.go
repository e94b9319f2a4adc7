package models

// OutlineRequest carries the parsed form fields shared by the outline
// preview and deck generation endpoints.
type OutlineRequest struct {
	Text         string
	Guidance     string
	SlideCount   int
	IncludeNotes bool
	Model        string
	APIKey       string
	BaseURL      string
}

// OutlineResponse wraps a generated outline with how it was produced.
type OutlineResponse struct {
	Source  string      `json:"source"` // "llm" or "parser"
	Outline interface{} `json:"outline"`
}
