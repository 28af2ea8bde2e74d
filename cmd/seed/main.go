// Command seed populates a Blogshare database with demo or fixture data.
package main

import (
	"context"
	"fmt"
	"os"

	"blogshare/internal/config"
	"blogshare/internal/database"
	"blogshare/internal/seed"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Seed the Blogshare database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newDemoCmd(), newFixturesCmd(), newCleanCmd())
	return cmd
}

// connect opens the database named by the regular server configuration.
func connect() (*gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.IsProduction() {
		return nil, fmt.Errorf("refusing to seed a production database")
	}
	return database.Connect(cfg)
}

func newDemoCmd() *cobra.Command {
	var (
		opts  seed.Options
		clean bool
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate fake users and posts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if clean {
				if err := seed.Clean(ctx, db); err != nil {
					return fmt.Errorf("clean: %w", err)
				}
			}
			summary, err := seed.Demo(ctx, db, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d users and %d posts (password: %s)\n",
				summary.Users, summary.Posts, passwordOrDefault(opts.Password))
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.NumUsers, "users", 10, "number of users to create")
	cmd.Flags().IntVar(&opts.PostsPerUser, "posts-per-user", 3, "posts created for each user")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password for every generated user")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 for random)")
	cmd.Flags().BoolVar(&clean, "clean", false, "remove existing data first")
	return cmd
}

func newFixturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fixtures <file.yml>",
		Short: "Load users and posts from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			summary, err := seed.LoadFixtures(cmd.Context(), db, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d users and %d posts from %s\n",
				summary.Users, summary.Posts, args[0])
			return nil
		},
	}
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Delete all posts and users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			if err := seed.Clean(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database cleaned")
			return nil
		},
	}
}

func passwordOrDefault(p string) string {
	if p == "" {
		return seed.DefaultPassword
	}
	return p
}
