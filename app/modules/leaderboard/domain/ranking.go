package leaderboarddomain

import (
	"cmp"
	"slices"
	"strings"
)

// CompareEntries orders by points desc, then correct 1X2 picks desc,
// then display name ascending (byte-wise, case-sensitive).
func CompareEntries(a, b Entry) int {
	if c := cmp.Compare(b.Points, a.Points); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Correct1x2, a.Correct1x2); c != 0 {
		return c
	}
	return strings.Compare(a.DisplayName, b.DisplayName)
}

// RankEntries sorts entries in place and assigns 1-based positions.
// Entries that compare equal keep their input order.
func RankEntries(entries []Entry) {
	slices.SortStableFunc(entries, CompareEntries)
	for i := range entries {
		entries[i].Position = i + 1
	}
}
