// Package seed creates demo and fixture data for development databases.
package seed

import (
	"context"
	"fmt"
	"log"

	"blogshare/internal/models"
	"blogshare/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is shared by every generated demo account.
const DefaultPassword = "password123"

// Options controls demo data generation.
type Options struct {
	NumUsers     int
	PostsPerUser int
	Password     string
	// Seed makes generated content reproducible; 0 picks a random seed.
	Seed int64
}

// Summary reports what a seeding run created.
type Summary struct {
	Users int
	Posts int
}

// Factory builds users and posts and persists them through the repositories.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
}

// NewFactory creates a Factory bound to db. seed 0 selects a random seed.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	return &Factory{db: db, faker: gofakeit.New(seed)}
}

// HashPassword returns the bcrypt hash stored for seeded accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// BuildUser returns an unsaved user with a generated username.
func (f *Factory) BuildUser(passwordHash string) *models.User {
	return &models.User{
		Username: fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(100, 999)),
		Password: passwordHash,
	}
}

// BuildPost returns an unsaved post owned by owner.
func (f *Factory) BuildPost(owner *models.User) *models.Post {
	return &models.Post{
		Title:       f.faker.Sentence(5),
		Description: f.faker.Paragraph(1, 3, 8, " "),
		ExternalURL: f.faker.URL(),
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID()),
		OwnerID:     owner.ID,
	}
}

// Demo fills the database with generated users and posts in one transaction.
func Demo(ctx context.Context, db *gorm.DB, opts Options) (Summary, error) {
	if opts.NumUsers <= 0 {
		return Summary{}, fmt.Errorf("number of users must be positive, got %d", opts.NumUsers)
	}
	if opts.PostsPerUser < 0 {
		return Summary{}, fmt.Errorf("posts per user must not be negative, got %d", opts.PostsPerUser)
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}

	// One hash for every account keeps large runs fast.
	hash, err := HashPassword(opts.Password)
	if err != nil {
		return Summary{}, err
	}

	f := NewFactory(db, opts.Seed)
	var summary Summary
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		posts := repository.NewPostRepository(tx)

		taken := make(map[string]struct{}, opts.NumUsers)
		for summary.Users < opts.NumUsers {
			user := f.BuildUser(hash)
			if _, dup := taken[user.Username]; dup {
				continue
			}
			existing, err := users.GetByUsername(ctx, user.Username)
			if err != nil {
				return err
			}
			if existing != nil {
				taken[user.Username] = struct{}{}
				continue
			}
			if err := users.Create(ctx, user); err != nil {
				return fmt.Errorf("create user %s: %w", user.Username, err)
			}
			taken[user.Username] = struct{}{}
			summary.Users++

			for i := 0; i < opts.PostsPerUser; i++ {
				if err := posts.Create(ctx, f.BuildPost(user)); err != nil {
					return fmt.Errorf("create post for %s: %w", user.Username, err)
				}
				summary.Posts++
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	log.Printf("Seeded %d users and %d posts", summary.Users, summary.Posts)
	return summary, nil
}

// Clean removes all posts and users.
func Clean(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE posts, users RESTART IDENTITY CASCADE`).Error
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM posts`).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM users`).Error
	})
}
