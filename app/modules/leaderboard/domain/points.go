package leaderboarddomain

import "math"

const (
	MinUnderdogMultiplier = 1.0
	MaxUnderdogMultiplier = 10.0

	// MaxMatchPoints caps a single award so room totals cannot overflow.
	MaxMatchPoints = math.MaxInt32
)

// MatchPoints returns the points a pick earns on m and whether the pick was correct.
//
// A correct draw earns PointsPerCorrectX when configured, anything else
// PointsPerCorrect1x2. Backing the underdog when the underdog wins multiplies
// the award, rounded half away from zero. Awards are clamped to
// [0, MaxMatchPoints].
func MatchPoints(s Settings, m Match, pick Outcome) (int, bool) {
	if !m.Decided() || !pick.Valid() || pick != *m.Result {
		return 0, false
	}

	award := float64(s.PointsPerCorrect1x2)
	if pick == OutcomeDraw && s.PointsPerCorrectX != nil {
		award = float64(*s.PointsPerCorrectX)
	}

	if m.UnderdogTeam != nil && *m.UnderdogTeam != OutcomeDraw && *m.UnderdogTeam == pick {
		award = math.Round(award * ClampMultiplier(m.UnderdogMultiplier))
	}

	return int(min(max(award, 0), MaxMatchPoints)), true
}

// ClampMultiplier bounds an underdog multiplier to [1, 10]. Unset (0) and NaN become 1.
func ClampMultiplier(v float64) float64 {
	if math.IsNaN(v) || v < MinUnderdogMultiplier {
		return MinUnderdogMultiplier
	}
	if v > MaxUnderdogMultiplier {
		return MaxUnderdogMultiplier
	}
	return v
}
