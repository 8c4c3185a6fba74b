package leaderboardmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Adding outcome and points checks...")

		for _, stmt := range []string{
			`ALTER TABLE predictions DROP CONSTRAINT IF EXISTS chk_predictions_pick`,
			`ALTER TABLE predictions ADD CONSTRAINT chk_predictions_pick CHECK (pick IN ('1', 'X', '2'))`,
			`ALTER TABLE matches DROP CONSTRAINT IF EXISTS chk_matches_result`,
			`ALTER TABLE matches ADD CONSTRAINT chk_matches_result CHECK (result IS NULL OR result IN ('1', 'X', '2'))`,
			`ALTER TABLE matches DROP CONSTRAINT IF EXISTS chk_matches_underdog`,
			`ALTER TABLE matches ADD CONSTRAINT chk_matches_underdog CHECK (underdog_team IS NULL OR (underdog_team IN ('1', '2') AND underdog_multiplier BETWEEN 1 AND 10))`,
			`ALTER TABLE tournaments DROP CONSTRAINT IF EXISTS chk_tournaments_points`,
			`ALTER TABLE tournaments ADD CONSTRAINT chk_tournaments_points CHECK (coalesce(points_per_correct_1x2, 0) >= 0 AND coalesce(points_per_correct_x, 0) >= 0)`,
			`ALTER TABLE bonus_questions DROP CONSTRAINT IF EXISTS chk_bonus_questions_type`,
			`ALTER TABLE bonus_questions ADD CONSTRAINT chk_bonus_questions_type CHECK (type IN ('number', 'choice', 'player') AND points > 0)`,
		} {
			if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Outcome and points checks added successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Removing outcome and points checks...")

		for _, stmt := range []string{
			`ALTER TABLE bonus_questions DROP CONSTRAINT IF EXISTS chk_bonus_questions_type`,
			`ALTER TABLE tournaments DROP CONSTRAINT IF EXISTS chk_tournaments_points`,
			`ALTER TABLE matches DROP CONSTRAINT IF EXISTS chk_matches_underdog`,
			`ALTER TABLE matches DROP CONSTRAINT IF EXISTS chk_matches_result`,
			`ALTER TABLE predictions DROP CONSTRAINT IF EXISTS chk_predictions_pick`,
		} {
			if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
