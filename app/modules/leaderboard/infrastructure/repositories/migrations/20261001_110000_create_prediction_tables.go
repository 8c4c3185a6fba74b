package leaderboardmigrations

import (
	"context"
	"fmt"

	leaderboarddb "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating predictions and bonus_answers tables...")

		if _, err := db.NewCreateTable().Model((*leaderboarddb.Prediction)(nil)).IfNotExists().
			ForeignKey(`(member_id) REFERENCES room_members (id) ON DELETE CASCADE`).
			ForeignKey(`(match_id) REFERENCES matches (id) ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create predictions table: %w", err)
		}

		if _, err := db.NewCreateTable().Model((*leaderboarddb.BonusAnswer)(nil)).IfNotExists().
			ForeignKey(`(member_id) REFERENCES room_members (id) ON DELETE CASCADE`).
			ForeignKey(`(question_id) REFERENCES bonus_questions (id) ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create bonus_answers table: %w", err)
		}

		// One row per key; upserts conflict on these.
		for _, stmt := range []string{
			"CREATE UNIQUE INDEX IF NOT EXISTS ux_predictions_member_match ON predictions (member_id, match_id)",
			"CREATE UNIQUE INDEX IF NOT EXISTS ux_bonus_answers_member_question ON bonus_answers (member_id, question_id)",
			"CREATE INDEX IF NOT EXISTS idx_predictions_match_id ON predictions (match_id)",
			"CREATE INDEX IF NOT EXISTS idx_bonus_answers_question_id ON bonus_answers (question_id)",
			"CREATE INDEX IF NOT EXISTS idx_room_members_room_id ON room_members (room_id)",
			"CREATE INDEX IF NOT EXISTS idx_room_members_username ON room_members (lower(username))",
			"CREATE INDEX IF NOT EXISTS idx_matches_tournament_id ON matches (tournament_id, starts_at)",
		} {
			if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Predictions and bonus_answers tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping predictions and bonus_answers tables...")

		if _, err := db.NewDropTable().Model((*leaderboarddb.BonusAnswer)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*leaderboarddb.Prediction)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Predictions and bonus_answers tables dropped successfully!")
		return nil
	})
}
