package api

import "time"

type Project struct {
	Id           uint      `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Technologies []string  `json:"technologies"`
	Image        string    `json:"image,omitempty"`
	LiveLink     string    `json:"live_link,omitempty"`
	SourceLink   string    `json:"source_link,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// StackItem pairs a technology name with the purpose it served in a project.
type StackItem struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}

type ProjectListResponse struct {
	Projects []Project `json:"projects"`
	ViewMode string    `json:"view_mode"`
}

type ProjectDetailResponse struct {
	Project Project     `json:"project"`
	Stack   []StackItem `json:"stack"`
}

type Note struct {
	Id        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	Id        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ExternalPost is a blog entry pulled from the external RSS feed rather than
// the local database.
type ExternalPost struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Summary   string `json:"summary"`
	Published string `json:"published"`
	Source    string `json:"source"`
}
