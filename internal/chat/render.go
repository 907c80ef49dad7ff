package chat

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"portfolio-backend/internal/database"
)

var sanitizer = bluemonday.UGCPolicy()

// RenderMarkdown converts model-generated Markdown into sanitized HTML for
// the chat widget.
func RenderMarkdown(text string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	rendered := markdown.ToHTML([]byte(text), p, renderer)
	return string(sanitizer.SanitizeBytes(rendered))
}

var projectCardsTmpl = template.Must(template.New("project_cards").Parse(strings.TrimSpace(`
<div class="chat-project-cards">
{{- range . }}
  <div class="chat-project-card">
    <h4>{{ .Title }}</h4>
    <p>{{ .Description }}</p>
    <p class="chat-project-tech">{{ .Tech }}</p>
    {{- if .LiveLink }}
    <a href="{{ .LiveLink }}" target="_blank" rel="noopener">Live</a>
    {{- end }}
    {{- if .SourceLink }}
    <a href="{{ .SourceLink }}" target="_blank" rel="noopener">Source</a>
    {{- end }}
  </div>
{{- end }}
</div>
`)))

type projectCard struct {
	Title       string
	Description string
	Tech        string
	LiveLink    string
	SourceLink  string
}

// RenderProjectCards renders visible projects as the HTML fragment embedded
// in a project-listing envelope.
func RenderProjectCards(projects []database.Project) (string, error) {
	cards := make([]projectCard, len(projects))
	for i, p := range projects {
		cards[i] = projectCard{
			Title:       p.Title,
			Description: p.Description,
			Tech:        strings.Join(p.TechnologyList(), " · "),
			LiveLink:    p.LiveLink.String,
			SourceLink:  p.SourceLink.String,
		}
	}

	var b strings.Builder
	if err := projectCardsTmpl.Execute(&b, cards); err != nil {
		return "", fmt.Errorf("could not render project cards: %w", err)
	}
	return b.String(), nil
}
