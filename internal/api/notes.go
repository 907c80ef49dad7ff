package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"portfolio-backend/internal/database"
	"portfolio-backend/pkg/api"
)

type NoteService struct {
	db *gorm.DB
}

func NewNoteService(db *gorm.DB) *NoteService {
	return &NoteService{db: db}
}

func (s *NoteService) AddRoutes(r chi.Router) {
	r.Route("/notes", func(r chi.Router) {
		r.Get("/", RestHandler(s.ListNotes))
		r.Get("/{note_id}", RestHandler(s.GetNote))
	})
}

func (s *NoteService) ListNotes(r *http.Request) (any, error) {
	notes, err := database.ListNotes(r.Context(), s.db)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	resp := make([]api.Note, len(notes))
	for i, n := range notes {
		resp[i] = toAPINote(n)
	}
	return resp, nil
}

func (s *NoteService) GetNote(r *http.Request) (any, error) {
	id, err := URLParamUint(r, "note_id")
	if err != nil {
		return nil, err
	}

	note, err := database.GetNote(r.Context(), s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "note not found")
		}
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	return toAPINote(note), nil
}

func toAPINote(n database.Note) api.Note {
	tags := []string{}
	if len(n.Tags) > 0 {
		// Ignore malformed tag JSON rather than failing the listing.
		_ = json.Unmarshal(n.Tags, &tags)
	}

	return api.Note{
		Id:        n.Id,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      tags,
		CreatedAt: n.CreatedAt,
	}
}
