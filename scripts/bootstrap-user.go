package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/SanjayNarukulla/curt-url-shortner/internal/auth"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/model"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/repository"
)

type output struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

func main() {
	var (
		mongoURL = flag.String("mongo-url", os.Getenv("MONGO_URL"), "MongoDB connection string")
		database = flag.String("database", envOr("MONGO_DATABASE", "curtdb"), "Database name")
		name     = flag.String("name", "admin", "User display name")
		email    = flag.String("email", "admin@curt.local", "User email")
		password = flag.String("password", "", "Password (random when empty)")
		format   = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *mongoURL == "" {
		fmt.Fprintln(os.Stderr, "MONGO_URL is required")
		os.Exit(1)
	}

	pw := *password
	generated := false
	if pw == "" {
		var err error
		pw, err = randomPassword()
		if err != nil {
			fmt.Fprintln(os.Stderr, "generate password:", err)
			os.Exit(1)
		}
		generated = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *mongoURL, *database)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer func() {
		_ = repo.Close(context.Background())
	}()

	hash, err := auth.HashPassword(pw, auth.DefaultBcryptCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         *name,
		Email:        *email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			fmt.Fprintln(os.Stderr, "user already exists:", *email)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "create user:", err)
		os.Exit(1)
	}

	out := output{
		UserID: user.ID,
		Email:  user.Email,
	}
	if generated {
		out.Password = pw
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.UserID)
		if generated {
			fmt.Println(out.Password)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func randomPassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
