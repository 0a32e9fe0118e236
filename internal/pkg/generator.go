package pkg

import (
	"math/rand"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const (
	gameIDLength   = 6
	gameIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateGameID - short shareable game code, upper-case base36.
func GenerateGameID() string {
	var sb strings.Builder
	for i := 0; i < gameIDLength; i++ {
		sb.WriteByte(gameIDAlphabet[rand.Intn(len(gameIDAlphabet))]) //nolint:gosec // game codes are not secrets
	}
	return sb.String()
}

// NormalizeGameID - codes are case-insensitive on join.
func NormalizeGameID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// GenerateNewSessionID - opaque per-browser session identifier.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// GameURL - shareable join link carrying the game code as a query param.
func GameURL(baseURL, gameID string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}

	query := u.Query()
	query.Set("game", gameID)
	u.RawQuery = query.Encode()

	return u.String()
}
