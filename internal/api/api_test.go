package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio-backend/internal/blog"
	"portfolio-backend/internal/chat"
	"portfolio-backend/internal/database"
	"portfolio-backend/pkg/api"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.GetMigrator(db).Migrate())
	return db
}

func newTestRouter(t *testing.T, db *gorm.DB, feed *blog.FeedClient) chi.Router {
	t.Helper()

	rules, err := chat.LoadRules()
	require.NoError(t, err)

	r := chi.NewRouter()
	r.MethodNotAllowed(MethodNotAllowedHandler)
	NewProjectService(db, rules).AddRoutes(r)
	NewNoteService(db).AddRoutes(r)
	NewBlogService(db, feed).AddRoutes(r)
	return r
}

func doRequest(t *testing.T, router chi.Router, method, target string, out any) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

func TestListProjects(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	require.NoError(t, db.Create(&database.Project{
		Title: "Older", Description: "d", Technologies: "Python, Django",
		CreatedAt: now.Add(-time.Hour), IsVisible: true,
	}).Error)
	require.NoError(t, db.Create(&database.Project{
		Title: "Newer", Description: "d", Technologies: "React, TypeScript",
		CreatedAt: now, IsVisible: true,
	}).Error)
	require.NoError(t, db.Create(&database.Project{
		Title: "Hidden", Description: "d", Technologies: "Python",
		CreatedAt: now, IsVisible: false,
	}).Error)

	router := newTestRouter(t, db, nil)

	var resp api.ProjectListResponse
	w := doRequest(t, router, http.MethodGet, "/projects", &resp)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, resp.Projects, 2)
	assert.Equal(t, "Newer", resp.Projects[0].Title)
	assert.Equal(t, "Older", resp.Projects[1].Title)
	assert.Equal(t, "cards", resp.ViewMode)
	assert.Equal(t, []string{"Python", "Django"}, resp.Projects[1].Technologies)
}

func TestListProjectsViewMode(t *testing.T) {
	router := newTestRouter(t, newTestDB(t), nil)

	var resp api.ProjectListResponse
	w := doRequest(t, router, http.MethodGet, "/projects?view=bento", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bento", resp.ViewMode)

	w = doRequest(t, router, http.MethodGet, "/projects?view=carousel", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cards", resp.ViewMode)
}

func TestListProjectsTechFilter(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	require.NoError(t, db.Create(&database.Project{
		Title: "JavaOnly", Description: "d", Technologies: "Java, Spring",
		CreatedAt: now, IsVisible: true,
	}).Error)
	require.NoError(t, db.Create(&database.Project{
		Title: "JsOnly", Description: "d", Technologies: "JavaScript, React",
		CreatedAt: now, IsVisible: true,
	}).Error)

	router := newTestRouter(t, db, nil)

	// Whole-word match: "java" must not pick up "JavaScript".
	var resp api.ProjectListResponse
	w := doRequest(t, router, http.MethodGet, "/projects?tech=java", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, "JavaOnly", resp.Projects[0].Title)
}

func TestGetProject(t *testing.T) {
	db := newTestDB(t)
	project := database.Project{
		Title:        "Detail",
		Description:  "d",
		Technologies: "Python, Redis",
		LiveLink:     sql.NullString{String: "https://example.com", Valid: true},
		CreatedAt:    time.Now().UTC(),
		IsVisible:    true,
	}
	require.NoError(t, db.Create(&project).Error)

	router := newTestRouter(t, db, nil)

	var resp api.ProjectDetailResponse
	w := doRequest(t, router, http.MethodGet, fmt.Sprintf("/projects/%d", project.Id), &resp)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "Detail", resp.Project.Title)
	assert.Equal(t, "https://example.com", resp.Project.LiveLink)

	require.Len(t, resp.Stack, 2)
	assert.Equal(t, "Python", resp.Stack[0].Name)
	assert.Equal(t, "핵심 비즈니스 로직 구현", resp.Stack[0].Purpose)
	assert.Equal(t, "반복 조회 구간 캐싱 최적화", resp.Stack[1].Purpose)
}

func TestGetProjectNotFound(t *testing.T) {
	router := newTestRouter(t, newTestDB(t), nil)

	w := doRequest(t, router, http.MethodGet, "/projects/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var errResp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "project not found", errResp.Error)
}

func TestGetProjectBadId(t *testing.T) {
	router := newTestRouter(t, newTestDB(t), nil)

	w := doRequest(t, router, http.MethodGet, "/projects/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListNotes(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&database.Note{
		Title: "Tagged", Content: "c",
		Tags:      datatypes.JSON(`["go","sql"]`),
		CreatedAt: time.Now().UTC(),
	}).Error)
	require.NoError(t, db.Create(&database.Note{
		Title: "Untagged", Content: "c",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}).Error)

	router := newTestRouter(t, db, nil)

	var resp []api.Note
	w := doRequest(t, router, http.MethodGet, "/notes", &resp)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, resp, 2)
	assert.Equal(t, "Tagged", resp[0].Title)
	assert.Equal(t, []string{"go", "sql"}, resp[0].Tags)
	assert.Empty(t, resp[1].Tags)
}

func TestGetNoteNotFound(t *testing.T) {
	router := newTestRouter(t, newTestDB(t), nil)

	w := doRequest(t, router, http.MethodGet, "/notes/12", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecentPosts(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	for i := 1; i <= 7; i++ {
		require.NoError(t, db.Create(&database.Post{
			Title: fmt.Sprintf("Post %d", i), Content: "c",
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	router := newTestRouter(t, db, nil)

	var resp []api.Post
	w := doRequest(t, router, http.MethodGet, "/blog/posts", &resp)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, resp, 5)
	assert.Equal(t, "Post 7", resp[0].Title)
	assert.Equal(t, "Post 3", resp[4].Title)
}

func TestExternalPosts(t *testing.T) {
	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?>
<rss><channel>
  <item><title>Hello</title><link>https://blog.example/1</link><description>&lt;p&gt;body&lt;/p&gt;</description><pubDate>Mon, 02 Jan 2006 15:04:05 +0900</pubDate></item>
</channel></rss>`)
	}))
	defer feedServer.Close()

	router := newTestRouter(t, newTestDB(t), blog.NewFeedClient(feedServer.URL))

	var resp []api.ExternalPost
	w := doRequest(t, router, http.MethodGet, "/blog/external", &resp)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, resp, 1)
	assert.Equal(t, "Hello", resp[0].Title)
	assert.Equal(t, "body", resp[0].Summary)
	assert.Equal(t, "2006-01-02", resp[0].Published)
	assert.Equal(t, "rss", resp[0].Source)
}
