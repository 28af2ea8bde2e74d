package repository

import (
	"context"
	"errors"

	"blogshare/internal/models"

	"gorm.io/gorm"
)

// PostRepository is the post store. Listings are newest first with ties broken by id.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Post, error)
	ListAll(ctx context.Context) ([]*models.Post, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func withOwner(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "username")
	})
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// Create inserts post. A dangling owner_id is rejected by the store's foreign key.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Owner").Create(post).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewValidationError("Owner does not exist")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := withOwner(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB { return db.Limit(limit) })
}

func (r *postRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	return r.list(ctx, nil)
}

func (r *postRepository) ListByOwner(ctx context.Context, ownerID uint) ([]*models.Post, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("owner_id = ?", ownerID) })
}

func (r *postRepository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]*models.Post, error) {
	posts := []*models.Post{}
	q := newestFirst(withOwner(r.db.WithContext(ctx)))
	if scope != nil {
		q = scope(q)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Update writes the mutable columns of post. owner_id and created_at are never touched.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).
		Model(post).
		Select("title", "description", "image_url", "external_url", "updated_at").
		Updates(post)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}
