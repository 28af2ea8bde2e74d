package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"blogshare/internal/models"
	"blogshare/internal/repository"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixtures is a hand-written data set, typically loaded from YAML:
//
//	users:
//	  - username: alice
//	    password: secret1
//	posts:
//	  - title: Hello
//	    description: First post
//	    external_url: https://example.com
//	    image_url: https://example.com/a.png
//	    owner: alice
type Fixtures struct {
	Users []FixtureUser `yaml:"users"`
	Posts []FixturePost `yaml:"posts"`
}

type FixtureUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// FixturePost names its owner by username.
type FixturePost struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	ExternalURL string `yaml:"external_url"`
	ImageURL    string `yaml:"image_url"`
	Owner       string `yaml:"owner"`
}

// ParseFixtures decodes YAML fixtures, rejecting unknown fields.
func ParseFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &fx, nil
}

// LoadFixtures reads the YAML file at path and applies it.
func LoadFixtures(ctx context.Context, db *gorm.DB, path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()

	fx, err := ParseFixtures(f)
	if err != nil {
		return Summary{}, err
	}
	return Apply(ctx, db, fx)
}

// Apply inserts fx in one transaction. Nothing is written if any entry is invalid.
func Apply(ctx context.Context, db *gorm.DB, fx *Fixtures) (Summary, error) {
	var summary Summary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		posts := repository.NewPostRepository(tx)

		owners := make(map[string]*models.User, len(fx.Users))
		for _, fu := range fx.Users {
			if fu.Username == "" || fu.Password == "" {
				return fmt.Errorf("fixture user %q: username and password are required", fu.Username)
			}
			hash, err := HashPassword(fu.Password)
			if err != nil {
				return err
			}
			user := &models.User{Username: fu.Username, Password: hash}
			if err := users.Create(ctx, user); err != nil {
				return fmt.Errorf("fixture user %s: %w", fu.Username, err)
			}
			owners[user.Username] = user
			summary.Users++
		}

		for i, fp := range fx.Posts {
			owner, ok := owners[fp.Owner]
			if !ok {
				existing, err := users.GetByUsername(ctx, fp.Owner)
				if err != nil {
					return err
				}
				if existing == nil {
					return fmt.Errorf("fixture post %d: unknown owner %q", i, fp.Owner)
				}
				owner = existing
				owners[fp.Owner] = owner
			}
			post := &models.Post{
				Title:       fp.Title,
				Description: fp.Description,
				ExternalURL: fp.ExternalURL,
				ImageURL:    fp.ImageURL,
				OwnerID:     owner.ID,
			}
			if err := posts.Create(ctx, post); err != nil {
				return fmt.Errorf("fixture post %d: %w", i, err)
			}
			summary.Posts++
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return summary, nil
}
