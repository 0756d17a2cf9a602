package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/studentdash/roster-backend/internal/config"
	"github.com/studentdash/roster-backend/internal/database"
	"github.com/studentdash/roster-backend/internal/logger"
	"github.com/studentdash/roster-backend/internal/model"
	"github.com/studentdash/roster-backend/internal/repository"
	"github.com/studentdash/roster-backend/internal/service"
	"golang.org/x/term"
)

// Usage:
//
//	create-account          prompt for email + password and create an account
//	create-account revoke   prompt for email and end all of its sessions
func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	accountRepo := repository.NewAccountRepository(pool)
	authService := service.NewAuthService(cfg, accountRepo, repository.NewTokenStore(rdb))

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	if len(os.Args) > 1 && os.Args[1] == "revoke" {
		fmt.Println("=== Revoke Account Sessions ===")
		email := prompt(reader, "Enter Email: ")
		if email == "" {
			fmt.Println("Error: Email is required")
			return
		}
		n, err := authService.RevokeAccount(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				fmt.Println("Error: No account with that email")
				return
			}
			log.Fatal().Err(err).Msg("Failed to revoke sessions")
		}
		fmt.Printf("\nRevoked %d session(s) for %s\n", n, email)
		return
	}

	fmt.Println("=== Create New Account ===")

	// Email
	email := prompt(reader, "Enter Email: ")
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hash, err := authService.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	account := &model.Account{
		Email:        strings.ToLower(email),
		PasswordHash: hash,
	}
	if err := accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			fmt.Println("Error: Email is already in use")
			return
		}
		log.Fatal().Err(err).Msg("Failed to create account")
	}

	fmt.Printf("\nSuccess! Account '%s' created with ID: %d\n", account.Email, account.ID)
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}
