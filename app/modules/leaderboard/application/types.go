package leaderboardservice

import (
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	"github.com/google/uuid"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// LeaderboardOptions narrows a leaderboard read.
type LeaderboardOptions struct {
	// AsOf, when set, treats matches kicking off after it as undecided.
	AsOf *time.Time
}

// LeaderboardResult is a ranked room leaderboard.
type LeaderboardResult struct {
	RoomID       uuid.UUID                 `json:"roomId"`
	RoomName     string                    `json:"roomName"`
	TournamentID uuid.UUID                 `json:"tournamentId"`
	AsOf         *time.Time                `json:"asOf,omitempty"`
	Entries      []leaderboarddomain.Entry `json:"entries"`
	Hash         string                    `json:"hash"`
	GeneratedAt  time.Time                 `json:"generatedAt"`
}

// ReconcileResult reports one tournament's reconciliation.
type ReconcileResult struct {
	TournamentID uuid.UUID                        `json:"tournamentId"`
	Mode         leaderboarddomain.Mode           `json:"mode"`
	Stats        leaderboarddomain.ReconcileStats `json:"stats"`
}

// Export is a rendered leaderboard file.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ChartPalette holds the colors used by leaderboard charts.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	Leader     drawing.Color
	TextColor  drawing.Color
}

// DefaultPalette is the pitch-green theme.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorFromHex("0F1F17"),
	Bar:        drawing.ColorFromHex("2E8B57"),
	Leader:     drawing.ColorFromHex("E6B422"),
	TextColor:  drawing.ColorFromHex("F2F2F2"),
}
