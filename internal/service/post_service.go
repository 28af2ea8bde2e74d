package service

import (
	"context"
	"log/slog"
	"strings"

	"blogshare/internal/cache"
	"blogshare/internal/middleware"
	"blogshare/internal/models"
	"blogshare/internal/observability"
	"blogshare/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultRecentLimit is how many posts the landing listing shows.
const DefaultRecentLimit = 6

type PostService struct {
	postRepo    repository.PostRepository
	recentLimit int
}

// CreatePostInput carries the caller's raw owner id; it is canonicalized here.
type CreatePostInput struct {
	OwnerID     string
	Title       string
	Description string
	ExternalURL string
	ImageURL    string
}

// UpdatePostInput leaves ExternalURL and ImageURL unchanged when empty.
type UpdatePostInput struct {
	PostID        uint
	CallerOwnerID string
	Title         string
	Description   string
	ExternalURL   string
	ImageURL      string
}

type DeletePostInput struct {
	PostID        uint
	CallerOwnerID string
}

func NewPostService(postRepo repository.PostRepository, recentLimit int) *PostService {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &PostService{postRepo: postRepo, recentLimit: recentLimit}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (_ *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "CreatePost")
	defer func() { observability.EndSpan(span, err) }()

	ownerID, ok := models.ParseID(in.OwnerID)
	switch {
	case strings.TrimSpace(in.Title) == "":
		return nil, models.NewValidationError("Title is required")
	case strings.TrimSpace(in.Description) == "":
		return nil, models.NewValidationError("Description is required")
	case strings.TrimSpace(in.ExternalURL) == "":
		return nil, models.NewValidationError("External URL is required")
	case in.ImageURL == "":
		return nil, models.NewValidationError("Image is required")
	case !ok:
		return nil, models.NewValidationError("A valid owner_id is required")
	}

	post := &models.Post{
		Title:       in.Title,
		Description: in.Description,
		ExternalURL: in.ExternalURL,
		ImageURL:    in.ImageURL,
		OwnerID:     ownerID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "create")

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		// The insert succeeded; fall back to the unjoined record.
		return post, nil
	}
	return created, nil
}

// ListRecent returns at most limit posts, newest first. limit <= 0 uses the configured default.
func (s *PostService) ListRecent(ctx context.Context, limit int) ([]models.PostView, error) {
	if limit <= 0 {
		limit = s.recentLimit
	}
	var views []models.PostView
	err := cache.Aside(ctx, cache.RecentPostsKey(ctx, limit), &views, cache.ListTTL, func() error {
		posts, err := s.postRepo.ListRecent(ctx, limit)
		if err != nil {
			return err
		}
		views = models.Views(posts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *PostService) ListAll(ctx context.Context) ([]models.PostView, error) {
	var views []models.PostView
	err := cache.Aside(ctx, cache.AllPostsKey(ctx), &views, cache.ListTTL, func() error {
		posts, err := s.postRepo.ListAll(ctx)
		if err != nil {
			return err
		}
		views = models.Views(posts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// ListByOwner filters by the raw owner id. An id that is not a valid store id owns nothing.
func (s *PostService) ListByOwner(ctx context.Context, rawOwnerID string) ([]models.PostView, error) {
	if strings.TrimSpace(rawOwnerID) == "" {
		return nil, models.NewValidationError("owner id is required")
	}
	ownerID, ok := models.ParseID(rawOwnerID)
	if !ok {
		return []models.PostView{}, nil
	}

	var views []models.PostView
	err := cache.Aside(ctx, cache.OwnerPostsKey(ctx, ownerID), &views, cache.ListTTL, func() error {
		posts, err := s.postRepo.ListByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		views = models.Views(posts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// UpdatePost checks input, then existence, then ownership, in that order.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (_ *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "UpdatePost",
		attribute.Int64("post.id", int64(in.PostID)))
	defer func() { observability.EndSpan(span, err) }()

	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, models.NewValidationError("Title and description are required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	if !isOwner(post, in.CallerOwnerID) {
		s.logDenied(ctx, "update", post, in.CallerOwnerID)
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	post.Title = in.Title
	post.Description = in.Description
	if in.ExternalURL != "" {
		post.ExternalURL = in.ExternalURL
	}
	if in.ImageURL != "" {
		post.ImageURL = in.ImageURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "update")
	return post, nil
}

// DeletePost hard-deletes the post and returns its id. The stored image is left in place.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (_ uint, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "DeletePost",
		attribute.Int64("post.id", int64(in.PostID)))
	defer func() { observability.EndSpan(span, err) }()

	if in.PostID == 0 || strings.TrimSpace(in.CallerOwnerID) == "" {
		return 0, models.NewValidationError("Post id and owner_id are required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return 0, err
	}

	if !isOwner(post, in.CallerOwnerID) {
		s.logDenied(ctx, "delete", post, in.CallerOwnerID)
		return 0, models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return 0, err
	}
	s.afterMutation(ctx, "delete")
	return post.ID, nil
}

// isOwner compares canonical ids; an unparseable caller id never matches.
func isOwner(post *models.Post, rawCallerID string) bool {
	callerID, ok := models.ParseID(rawCallerID)
	return ok && callerID == post.OwnerID
}

func (s *PostService) afterMutation(ctx context.Context, operation string) {
	middleware.PostMutations.WithLabelValues(operation).Inc()
	cache.InvalidatePostLists(ctx)
}

func (s *PostService) logDenied(ctx context.Context, operation string, post *models.Post, rawCallerID string) {
	middleware.Logger.WarnContext(ctx, "post mutation denied",
		slog.String("operation", operation),
		slog.Uint64("post_id", uint64(post.ID)),
		slog.Uint64("owner_id", uint64(post.OwnerID)),
		slog.String("caller_owner_id", rawCallerID),
	)
}
