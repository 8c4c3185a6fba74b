package leaderboarddomain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeStandingsHash returns a digest of a ranked leaderboard.
// Equal standings in equal order hash the same; used as an HTTP ETag.
// Display names are quoted so no name can imitate a field or row break.
func ComputeStandingsHash(entries []Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%d|%s|%q|%d|%d|%d|%d\n", e.Position, e.MemberID, e.DisplayName, e.Points, e.Correct1x2, e.Points1x2, e.BonusPoints)
	}

	hash := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(hash[:])
}
