package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/itbasis/go-clock"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/pablozamit/elo-pool/internal/repository"
	"github.com/pablozamit/elo-pool/internal/service"
	"github.com/pablozamit/elo-pool/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
    id             TEXT PRIMARY KEY,
    username       TEXT NOT NULL,
    password_hash  TEXT NOT NULL,
    rating         DOUBLE PRECISION NOT NULL DEFAULT 1200,
    matches_played INTEGER NOT NULL DEFAULT 0,
    matches_won    INTEGER NOT NULL DEFAULT 0,
    is_admin       BOOLEAN NOT NULL DEFAULT FALSE,
    is_active      BOOLEAN NOT NULL DEFAULT TRUE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_players_username_lower ON players (LOWER(username));
CREATE INDEX IF NOT EXISTS idx_players_rating ON players (rating DESC);

CREATE TABLE IF NOT EXISTS matches (
    id                    TEXT PRIMARY KEY,
    player1_id            TEXT NOT NULL REFERENCES players(id),
    player1_username      TEXT NOT NULL,
    player2_id            TEXT NOT NULL REFERENCES players(id),
    player2_username      TEXT NOT NULL,
    score1                INTEGER NOT NULL,
    score2                INTEGER NOT NULL,
    winner_id             TEXT NOT NULL,
    match_type            TEXT NOT NULL,
    status                TEXT NOT NULL DEFAULT 'pending',
    player1_rating_before DOUBLE PRECISION NOT NULL,
    player2_rating_before DOUBLE PRECISION NOT NULL,
    player1_rating_after  DOUBLE PRECISION,
    player2_rating_after  DOUBLE PRECISION,
    submitted_by          TEXT NOT NULL,
    created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    confirmed_at          TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_matches_status ON matches (status);
CREATE INDEX IF NOT EXISTS idx_matches_player1 ON matches (player1_id);
CREATE INDEX IF NOT EXISTS idx_matches_player2 ON matches (player2_id);
CREATE INDEX IF NOT EXISTS idx_matches_confirmed_at ON matches (confirmed_at);
`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set in environment")
	}

	raw, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer raw.Close()

	if err = raw.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	fmt.Println("Connected to database")

	if _, err = raw.Exec(schema); err != nil {
		log.Fatal("Failed to apply schema:", err)
	}

	fmt.Println("Schema applied")

	adminUsername := os.Getenv("ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		log.Fatal("ADMIN_PASSWORD not set in environment")
	}

	players := service.NewPlayerService(
		repository.NewPlayerRepository(&database.DB{DB: raw}),
		clock.New(),
	)

	if err = players.EnsureAdmin(context.Background(), adminUsername, adminPassword); err != nil {
		log.Fatal("Failed to seed admin account:", err)
	}

	fmt.Printf("Admin account %q ready\n", adminUsername)

	var playerCount int
	if err = raw.QueryRow("SELECT COUNT(*) FROM players").Scan(&playerCount); err != nil {
		log.Fatal("Failed to count players:", err)
	}

	fmt.Printf("Database ready with %d player(s)\n", playerCount)
}
