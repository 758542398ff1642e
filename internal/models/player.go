package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// InitialRating is assigned to every newly registered player.
const InitialRating = 1200.0

type Player struct {
	ID            string    `json:"id" db:"id"`
	Username      string    `json:"username" db:"username"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	Rating        float64   `json:"rating" db:"rating"`
	MatchesPlayed int       `json:"matchesPlayed" db:"matches_played"`
	MatchesWon    int       `json:"matchesWon" db:"matches_won"`
	IsAdmin       bool      `json:"isAdmin" db:"is_admin"`
	IsActive      bool      `json:"isActive" db:"is_active"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// WinRate as a percentage, 0 when no matches were played.
func (p *Player) WinRate() float64 {
	if p.MatchesPlayed == 0 {
		return 0
	}
	return float64(p.MatchesWon) / float64(p.MatchesPlayed) * 100
}

type RegisterPlayerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminPlayerUpdate carries the fields an administrator may change.
// Nil pointers mean "leave as is".
type AdminPlayerUpdate struct {
	Rating   *float64 `json:"rating"`
	IsActive *bool    `json:"isActive"`
	IsAdmin  *bool    `json:"isAdmin"`
}

// HashPassword hashes a plain password with bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword verifies a plain password against the stored hash.
func (p *Player) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password))
	return err == nil
}
