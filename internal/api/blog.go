package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"portfolio-backend/internal/blog"
	"portfolio-backend/internal/database"
	"portfolio-backend/pkg/api"
)

const recentPostLimit = 5

type BlogService struct {
	db   *gorm.DB
	feed *blog.FeedClient
}

func NewBlogService(db *gorm.DB, feed *blog.FeedClient) *BlogService {
	return &BlogService{db: db, feed: feed}
}

func (s *BlogService) AddRoutes(r chi.Router) {
	r.Route("/blog", func(r chi.Router) {
		r.Get("/posts", RestHandler(s.RecentPosts))
		r.Get("/external", RestHandler(s.ExternalPosts))
	})
}

func (s *BlogService) RecentPosts(r *http.Request) (any, error) {
	posts, err := database.RecentPosts(r.Context(), s.db, recentPostLimit)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	resp := make([]api.Post, len(posts))
	for i, p := range posts {
		resp[i] = api.Post{Id: p.Id, Title: p.Title, Content: p.Content, CreatedAt: p.CreatedAt}
	}
	return resp, nil
}

func (s *BlogService) ExternalPosts(r *http.Request) (any, error) {
	// Feed failures surface as an empty list, never as an error.
	return s.feed.Fetch(r.Context(), 4), nil
}
