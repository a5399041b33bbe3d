// Package main is the entry point for the Brickshelf admin CLI.
// This tool provides administrative commands for managing users and
// populating the catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/brickshelf/brickshelf/internal/config"
	"github.com/brickshelf/brickshelf/internal/repository"
	"github.com/brickshelf/brickshelf/internal/repository/bolt"
	"github.com/brickshelf/brickshelf/internal/repository/postgres"
	"github.com/brickshelf/brickshelf/internal/repository/sqlite"
	"github.com/brickshelf/brickshelf/internal/seed"
	"github.com/brickshelf/brickshelf/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Brickshelf Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		if err := runUser(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "seed":
		if err := runSeed(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runUser(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: brickshelf-admin user <create|list> [flags]")
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		userName := fs.String("username", "", "user name")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args[1:])

		if *userName == "" || *email == "" || *password == "" {
			return fmt.Errorf("username, email and password are required")
		}

		authSvc, cleanup, err := openAuth(*configPath)
		if err != nil {
			return err
		}
		defer cleanup()

		out, err := authSvc.Register(context.Background(), service.RegisterInput{
			UserName:        *userName,
			Password:        *password,
			ConfirmPassword: *password,
			Email:           *email,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Created user %s <%s>\n", out.User.UserName, out.User.Email)
		return nil

	case "list":
		fs := flag.NewFlagSet("user list", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		_ = fs.Parse(args[1:])

		authSvc, cleanup, err := openAuth(*configPath)
		if err != nil {
			return err
		}
		defer cleanup()

		users, err := authSvc.ListUsers(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("%-24s %-32s %-8s %s\n", "USER", "EMAIL", "LOGINS", "CREATED")
		for _, u := range users {
			fmt.Printf("%-24s %-32s %-8d %s\n",
				u.UserName, u.Email, len(u.LoginHistory), u.CreatedAt.Format("2006-01-02"))
		}
		return nil

	default:
		return fmt.Errorf("unknown user subcommand: %s", args[0])
	}
}

func runSeed(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(args)

	cfg := config.MustLoad(*configPath)
	ctx := context.Background()
	logger := zerolog.Nop()

	setRepo, themeRepo, closeDB, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	data, err := seed.Load()
	if err != nil {
		return err
	}

	catalogSvc := service.NewCatalogService(setRepo, themeRepo, logger)
	if err := catalogSvc.Seed(ctx, data); err != nil {
		return err
	}

	fmt.Println("Catalog seeded")
	return nil
}

// openAuth loads configuration and opens the user store.
func openAuth(configPath string) (*service.AuthService, func(), error) {
	cfg := config.MustLoad(configPath)
	logger := zerolog.Nop()

	store, err := bolt.Open(cfg.Users.Path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open user store: %w", err)
	}

	authSvc := service.NewAuthService(bolt.NewUserRepository(store), cfg.Auth.BcryptCost, logger)
	return authSvc, func() { _ = store.Close() }, nil
}

// openCatalog opens the configured catalog backend and runs migrations.
func openCatalog(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.SetRepository, repository.ThemeRepository, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to migrate catalog: %w", err)
		}
		return postgres.NewSetRepository(db), postgres.NewThemeRepository(db), func() { db.Close() }, nil

	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open SQLite catalog: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to migrate catalog: %w", err)
		}
		return sqlite.NewSetRepository(db), sqlite.NewThemeRepository(db), func() { db.Close() }, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

func printUsage() {
	fmt.Println(`Brickshelf Admin CLI

Usage:
  brickshelf-admin <command> [arguments]

Commands:
  user create   Create a user account
  user list     List registered users with login counts
  seed          Load the bundled catalog data into an empty database
  version       Print version information
  help          Show this help message

Examples:
  brickshelf-admin user create -username admin -email admin@example.com -password secret123
  brickshelf-admin user list
  brickshelf-admin seed -config configs/config.yaml`)
}
