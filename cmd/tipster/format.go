package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/application"
)

func writeLeaderboardTable(w io.Writer, lb *leaderboardservice.LeaderboardResult) error {
	title := lb.RoomName
	if lb.AsOf != nil {
		title += " (as of " + lb.AsOf.Format(time.RFC3339) + ")"
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tName\tPoints\t1X2\tCorrect\tBonus\t")
	for _, e := range lb.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t\n", e.Position, e.DisplayName, e.Points, e.Points1x2, e.Correct1x2, e.BonusPoints)
	}
	return tw.Flush()
}

func writeReconcileLine(w io.Writer, res *leaderboardservice.ReconcileResult) {
	fmt.Fprintf(w, "%s mode=%s groups=%d predictions=%d answers=%d\n",
		res.TournamentID, res.Mode, res.Stats.Groups, res.Stats.PredictionsCopied, res.Stats.AnswersCopied)
}
