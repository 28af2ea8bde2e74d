package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"blogshare/internal/media"
	"blogshare/internal/models"
	"blogshare/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListByOwner(ctx context.Context, ownerID uint) ([]*models.Post, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// newMockPostApp mounts the post handlers over a mocked repository.
func newMockPostApp(t *testing.T, repo *MockPostRepository, maxUploadMB int) (*Server, *fiber.App) {
	t.Helper()
	cfg := testConfig(t)
	cfg.MediaMaxUploadSizeMB = maxUploadMB

	s := &Server{
		config:      cfg,
		postRepo:    repo,
		tokens:      service.NewSessionTokens(cfg.JWTSecret, time.Hour),
		intake:      media.NewIntake(cfg.UploadDir, cfg.PublicBaseURL, cfg.MediaMaxUploadBytes()),
		postService: service.NewPostService(repo, cfg.RecentPostsLimit),
	}

	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Post("/posts", s.CreatePost)
	app.Get("/posts/recent", s.ListRecentPosts)
	app.Get("/posts/all", s.ListAllPosts)
	app.Get("/posts/owner/:ownerId", s.ListOwnerPosts)
	app.Put("/posts/:id", s.UpdatePost)
	app.Delete("/posts/:id", s.DeletePost)
	return s, app
}

func validPostFields() map[string]string {
	return map[string]string{
		"title":        "Title",
		"description":  "Description",
		"external_url": "https://example.com",
		"owner_id":     "1",
	}
}

func TestCreatePost_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]string
		file       *filePart
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "missing image",
			fields:     validPostFields(),
			wantStatus: http.StatusBadRequest,
			wantCode:   models.CodeValidation,
			wantMsg:    "Image is required",
		},
		{
			name:       "pdf upload",
			fields:     validPostFields(),
			file:       &filePart{filename: "doc.pdf", contentType: "application/pdf", data: []byte("%PDF")},
			wantStatus: http.StatusUnsupportedMediaType,
			wantCode:   models.CodeUnsupportedMediaType,
		},
		{
			name:       "image over ceiling",
			fields:     validPostFields(),
			file:       &filePart{filename: "big.jpg", contentType: "image/jpeg", data: make([]byte, 1024*1024+1)},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   models.CodePayloadTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPostRepository)
			s, app := newMockPostApp(t, repo, 1)

			resp := doRequest(t, app, multipartRequest(t, http.MethodPost, "/posts", tt.fields, tt.file))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decodeBody[models.ErrorResponse](t, resp)
			assert.Equal(t, tt.wantCode, body.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body.Message)
			}

			entries, err := os.ReadDir(s.intake.Dir())
			require.NoError(t, err)
			assert.Empty(t, entries)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreatePost_MissingTitleAfterUpload(t *testing.T) {
	repo := new(MockPostRepository)
	_, app := newMockPostApp(t, repo, 5)

	fields := validPostFields()
	delete(fields, "title")
	resp := doRequest(t, app, multipartRequest(t, http.MethodPost, "/posts", fields, pngPart()))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Title is required", decodeBody[models.ErrorResponse](t, resp).Message)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePost_StoreFailure(t *testing.T) {
	repo := new(MockPostRepository)
	_, app := newMockPostApp(t, repo, 5)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Post")).Return(errors.New("disk full"))

	resp := doRequest(t, app, multipartRequest(t, http.MethodPost, "/posts", validPostFields(), pngPart()))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, models.CodeInternal, decodeBody[models.ErrorResponse](t, resp).Code)
	repo.AssertExpectations(t)
}

func TestListOwnerPosts_UnparseableOwnerIsEmpty(t *testing.T) {
	repo := new(MockPostRepository)
	_, app := newMockPostApp(t, repo, 5)

	resp := doRequest(t, app, jsonRequest(t, http.MethodGet, "/posts/owner/not-a-number", nil))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]models.PostView](t, resp))
	repo.AssertNotCalled(t, "ListByOwner", mock.Anything, mock.Anything)
}

func TestListRecentPosts_UsesConfiguredLimit(t *testing.T) {
	repo := new(MockPostRepository)
	_, app := newMockPostApp(t, repo, 5)
	repo.On("ListRecent", mock.Anything, 6).Return([]*models.Post{
		{ID: 2, Title: "b", OwnerID: 1, Owner: &models.User{ID: 1, Username: "alice", Password: "hash"}},
		{ID: 1, Title: "a", OwnerID: 1},
	}, nil)

	resp := doRequest(t, app, jsonRequest(t, http.MethodGet, "/posts/recent", nil))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	posts := decodeBody[[]models.PostView](t, resp)
	require.Len(t, posts, 2)
	require.NotNil(t, posts[0].Owner)
	assert.Equal(t, "alice", posts[0].Owner.Username)
	repo.AssertExpectations(t)
}

func TestListAllPosts_RepositoryError(t *testing.T) {
	repo := new(MockPostRepository)
	_, app := newMockPostApp(t, repo, 5)
	repo.On("ListAll", mock.Anything).Return(nil, errors.New("connection reset"))

	resp := doRequest(t, app, jsonRequest(t, http.MethodGet, "/posts/all", nil))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestUpdatePost(t *testing.T) {
	existing := func() *models.Post {
		return &models.Post{ID: 7, Title: "Old", Description: "Old", OwnerID: 1,
			ImageURL: "http://localhost:4000/uploads/old.png", ExternalURL: "https://old.example"}
	}

	t.Run("invalid id", func(t *testing.T) {
		repo := new(MockPostRepository)
		_, app := newMockPostApp(t, repo, 5)

		resp := doRequest(t, app, multipartRequest(t, http.MethodPut, "/posts/abc", validPostFields(), nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockPostRepository)
		_, app := newMockPostApp(t, repo, 5)
		repo.On("GetByID", mock.Anything, uint(99)).Return(nil, models.NewNotFoundError("Post", 99))

		resp := doRequest(t, app, multipartRequest(t, http.MethodPut, "/posts/99", validPostFields(), nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("new image replaces reference", func(t *testing.T) {
		repo := new(MockPostRepository)
		_, app := newMockPostApp(t, repo, 5)
		repo.On("GetByID", mock.Anything, uint(7)).Return(existing(), nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
			return p.Title == "Title" && p.ImageURL != "http://localhost:4000/uploads/old.png" &&
				strings.HasSuffix(p.ImageURL, ".gif")
		})).Return(nil)

		resp := doRequest(t, app, multipartRequest(t, http.MethodPut, "/posts/7", validPostFields(),
			&filePart{filename: "new.gif", contentType: "image/gif", data: []byte("GIF89a")}))

		require.Equal(t, http.StatusOK, resp.StatusCode)
		post := decodeBody[models.PostView](t, resp)
		assert.True(t, strings.HasSuffix(post.ImageURL, ".gif"))
		assert.Equal(t, "https://example.com", post.ExternalURL)
		repo.AssertExpectations(t)
	})

	t.Run("owner id with surrounding whitespace still matches", func(t *testing.T) {
		repo := new(MockPostRepository)
		_, app := newMockPostApp(t, repo, 5)
		repo.On("GetByID", mock.Anything, uint(7)).Return(existing(), nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		fields := validPostFields()
		fields["owner_id"] = " 1 "
		resp := doRequest(t, app, multipartRequest(t, http.MethodPut, "/posts/7", fields, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestDeletePost(t *testing.T) {
	t.Run("missing owner", func(t *testing.T) {
		repo := new(MockPostRepository)
		_, app := newMockPostApp(t, repo, 5)

		resp := doRequest(t, app, jsonRequest(t, http.MethodDelete, "/posts/3", map[string]string{}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		repo := new(MockPostRepository)
		_, app := newMockPostApp(t, repo, 5)
		req := httptest.NewRequest(http.MethodDelete, "/posts/3", strings.NewReader(`{"owner_id":`))
		req.Header.Set("Content-Type", "application/json")

		resp := doRequest(t, app, req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("foreign caller", func(t *testing.T) {
		repo := new(MockPostRepository)
		_, app := newMockPostApp(t, repo, 5)
		repo.On("GetByID", mock.Anything, uint(3)).Return(&models.Post{ID: 3, OwnerID: 1}, nil)

		resp := doRequest(t, app, jsonRequest(t, http.MethodDelete, "/posts/3", map[string]string{"owner_id": "2"}))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("owner", func(t *testing.T) {
		repo := new(MockPostRepository)
		_, app := newMockPostApp(t, repo, 5)
		repo.On("GetByID", mock.Anything, uint(3)).Return(&models.Post{ID: 3, OwnerID: 1}, nil)
		repo.On("Delete", mock.Anything, uint(3)).Return(nil)

		resp := doRequest(t, app, jsonRequest(t, http.MethodDelete, "/posts/3", map[string]string{"owner_id": "1"}))

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, uint(3), decodeBody[DeletePostResponse](t, resp).PostID)
		repo.AssertExpectations(t)
	})
}
