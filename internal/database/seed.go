package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data.
// It creates a default author user if none exists, so documents created
// through the API have a valid owner to reference.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default author password.
	hash, err := bcrypt.GenerateFromPassword([]byte("author"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING id
	`, "author@inkwell.local", string(hash), "Author").Scan(&id)
	if err != nil {
		return fmt.Errorf("seed insert author: %w", err)
	}

	slog.Info("database seeded with default author",
		"email", "author@inkwell.local",
		"user_id", id,
	)

	return nil
}
