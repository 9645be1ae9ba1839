package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// DemoOwnerID is the owner seeded in development so the API can be tried
// without an identity provider.
const DemoOwnerID = "demo"

// Seed populates the database with initial development data: a persona for
// the demo owner. It is a no-op when that persona already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM personas WHERE owner_id = $1", DemoOwnerID).Scan(&count); err != nil {
		return fmt.Errorf("seed check personas: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	_, err := db.Exec(`
		INSERT INTO personas (owner_id, bio, industry, target_audience, brand_tone)
		VALUES ($1, $2, $3, $4, $5)
	`, DemoOwnerID, "Indie developer building tools for small teams.", "Tech", "Developers", "Casual")
	if err != nil {
		return fmt.Errorf("seed insert persona: %w", err)
	}

	slog.Info("database seeded with demo persona", "owner", DemoOwnerID)
	return nil
}
