package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blogshare/internal/database"
	"blogshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestDemo(t *testing.T) {
	t.Parallel()
	db := setupSQLite(t)

	summary, err := Demo(context.Background(), db, Options{NumUsers: 3, PostsPerUser: 2, Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, Summary{Users: 3, Posts: 6}, summary)
	assert.Equal(t, int64(3), count(t, db, &models.User{}))
	assert.Equal(t, int64(6), count(t, db, &models.Post{}))

	var user models.User
	require.NoError(t, db.First(&user).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(DefaultPassword)))

	var post models.Post
	require.NoError(t, db.First(&post).Error)
	assert.NotEmpty(t, post.Title)
	assert.NotEmpty(t, post.Description)
	assert.True(t, strings.HasPrefix(post.ImageURL, "https://picsum.photos/seed/"))
}

func TestDemo_RejectsBadOptions(t *testing.T) {
	t.Parallel()
	db := setupSQLite(t)

	_, err := Demo(context.Background(), db, Options{NumUsers: 0})
	assert.Error(t, err)

	_, err = Demo(context.Background(), db, Options{NumUsers: 1, PostsPerUser: -1})
	assert.Error(t, err)
}

const fixtureYAML = `
users:
  - username: alice
    password: secret1
  - username: bob
    password: hunter22
posts:
  - title: Hello
    description: First post
    external_url: https://example.com/hello
    image_url: http://localhost:4000/uploads/a.png
    owner: alice
  - title: Again
    description: Second post
    external_url: https://example.com/again
    image_url: http://localhost:4000/uploads/b.png
    owner: bob
`

func TestLoadFixtures(t *testing.T) {
	t.Parallel()
	db := setupSQLite(t)
	path := filepath.Join(t.TempDir(), "fixtures.yml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o600))

	summary, err := LoadFixtures(context.Background(), db, path)
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 2, Posts: 2}, summary)

	var alice models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&alice).Error)
	var post models.Post
	require.NoError(t, db.Where("title = ?", "Hello").First(&post).Error)
	assert.Equal(t, alice.ID, post.OwnerID)
}

func TestApply_UnknownOwnerWritesNothing(t *testing.T) {
	t.Parallel()
	db := setupSQLite(t)

	fx, err := ParseFixtures(strings.NewReader(`
users:
  - username: alice
    password: secret1
posts:
  - title: Orphan
    description: nobody owns this
    external_url: https://example.com
    image_url: http://localhost:4000/uploads/x.png
    owner: mallory
`))
	require.NoError(t, err)

	_, err = Apply(context.Background(), db, fx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mallory")
	assert.Equal(t, int64(0), count(t, db, &models.User{}))
}

func TestParseFixtures_UnknownField(t *testing.T) {
	t.Parallel()
	_, err := ParseFixtures(strings.NewReader("users:\n  - username: a\n    email: a@example.com\n"))
	assert.Error(t, err)
}

func TestParseFixtures_Empty(t *testing.T) {
	t.Parallel()
	fx, err := ParseFixtures(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fx.Users)
	assert.Empty(t, fx.Posts)
}

func TestClean(t *testing.T) {
	t.Parallel()
	db := setupSQLite(t)
	_, err := Demo(context.Background(), db, Options{NumUsers: 2, PostsPerUser: 1, Seed: 7})
	require.NoError(t, err)

	require.NoError(t, Clean(context.Background(), db))

	assert.Equal(t, int64(0), count(t, db, &models.User{}))
	assert.Equal(t, int64(0), count(t, db, &models.Post{}))
}
