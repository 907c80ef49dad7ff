package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"portfolio-backend/internal/chat"
	"portfolio-backend/internal/database"
	"portfolio-backend/pkg/api"
)

type ProjectService struct {
	db    *gorm.DB
	rules *chat.Rules
}

func NewProjectService(db *gorm.DB, rules *chat.Rules) *ProjectService {
	return &ProjectService{db: db, rules: rules}
}

func (s *ProjectService) AddRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", RestHandler(s.ListProjects))
		r.Get("/{project_id}", RestHandler(s.GetProject))
	})
}

type listProjectsQuery struct {
	View string `schema:"view"`
	Tech string `schema:"tech"`
}

var viewModes = map[string]bool{"cards": true, "rows": true, "bento": true, "case": true}

func (s *ProjectService) ListProjects(r *http.Request) (any, error) {
	query, err := ParseRequestQueryParams[listProjectsQuery](r)
	if err != nil {
		return nil, err
	}

	if !viewModes[query.View] {
		query.View = "cards"
	}

	projects, err := database.ListVisibleProjects(r.Context(), s.db, query.Tech, 0)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	resp := api.ProjectListResponse{ViewMode: query.View, Projects: make([]api.Project, len(projects))}
	for i, p := range projects {
		resp.Projects[i] = toAPIProject(p)
	}
	return resp, nil
}

func (s *ProjectService) GetProject(r *http.Request) (any, error) {
	id, err := URLParamUint(r, "project_id")
	if err != nil {
		return nil, err
	}

	project, err := database.GetProject(r.Context(), s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "project not found")
		}
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	stack := make([]api.StackItem, 0)
	for _, tech := range project.TechnologyList() {
		stack = append(stack, api.StackItem{Name: tech, Purpose: s.rules.PurposeFor(tech)})
	}

	return api.ProjectDetailResponse{Project: toAPIProject(project), Stack: stack}, nil
}

func toAPIProject(p database.Project) api.Project {
	return api.Project{
		Id:           p.Id,
		Title:        p.Title,
		Description:  p.Description,
		Technologies: p.TechnologyList(),
		Image:        p.Image,
		LiveLink:     p.LiveLink.String,
		SourceLink:   p.SourceLink.String,
		CreatedAt:    p.CreatedAt,
	}
}
