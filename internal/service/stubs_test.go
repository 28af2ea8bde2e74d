package service

import (
	"context"
	"errors"
	"testing"

	"blogshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn      func(context.Context, *models.Post) error
	getByIDFn     func(context.Context, uint) (*models.Post, error)
	listRecentFn  func(context.Context, int) ([]*models.Post, error)
	listAllFn     func(context.Context) ([]*models.Post, error)
	listByOwnerFn func(context.Context, uint) ([]*models.Post, error)
	updateFn      func(context.Context, *models.Post) error
	deleteFn      func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.listRecentFn(ctx, limit)
}
func (s *postRepoStub) ListAll(ctx context.Context) ([]*models.Post, error) {
	return s.listAllFn(ctx)
}
func (s *postRepoStub) ListByOwner(ctx context.Context, ownerID uint) ([]*models.Post, error) {
	return s.listByOwnerFn(ctx, ownerID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:      func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:     func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listRecentFn:  func(_ context.Context, _ int) ([]*models.Post, error) { return nil, nil },
		listAllFn:     func(_ context.Context) ([]*models.Post, error) { return nil, nil },
		listByOwnerFn: func(_ context.Context, _ uint) ([]*models.Post, error) { return nil, nil },
		updateFn:      func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoStub is an in-memory repository.UserRepository.
type userRepoStub struct {
	users       map[string]*models.User
	nextID      uint
	getErr      error
	createCalls int
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: map[string]*models.User{}, nextID: 1}
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *userRepoStub) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	u, ok := s.users[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *userRepoStub) Create(_ context.Context, user *models.User) error {
	s.createCalls++
	if _, ok := s.users[user.Username]; ok {
		return models.NewConflictError("Username already exists")
	}
	user.ID = s.nextID
	s.nextID++
	cp := *user
	s.users[user.Username] = &cp
	return nil
}

// assertCode asserts that err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}
