package api

const (
	EnvelopeHTML = "html"
	EnvelopeText = "text"
)

// Envelope is the uniform wrapper returned for every chat turn, whether the
// content came from a canned rule, a database listing, or the LLM.
type Envelope struct {
	Type        string   `json:"type"` // "html" or "text"
	Content     string   `json:"content"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response Envelope `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
