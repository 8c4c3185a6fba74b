package leaderboardmigrations

import (
	"context"
	"fmt"

	leaderboarddb "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating tournament, room and match tables...")

		if _, err := db.NewCreateTable().Model((*leaderboarddb.Tournament)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create tournaments table: %w", err)
		}

		if _, err := db.NewCreateTable().Model((*leaderboarddb.Room)(nil)).IfNotExists().
			ForeignKey(`(tournament_id) REFERENCES tournaments (id) ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create rooms table: %w", err)
		}

		if _, err := db.NewCreateTable().Model((*leaderboarddb.RoomMember)(nil)).IfNotExists().
			ForeignKey(`(room_id) REFERENCES rooms (id) ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create room_members table: %w", err)
		}

		if _, err := db.NewCreateTable().Model((*leaderboarddb.Match)(nil)).IfNotExists().
			ForeignKey(`(tournament_id) REFERENCES tournaments (id) ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create matches table: %w", err)
		}

		if _, err := db.NewCreateTable().Model((*leaderboarddb.BonusQuestion)(nil)).IfNotExists().
			ForeignKey(`(match_id) REFERENCES matches (id) ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create bonus_questions table: %w", err)
		}

		fmt.Println("Tournament, room and match tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping tournament, room and match tables...")

		for _, model := range []any{
			(*leaderboarddb.BonusQuestion)(nil),
			(*leaderboarddb.Match)(nil),
			(*leaderboarddb.RoomMember)(nil),
			(*leaderboarddb.Room)(nil),
			(*leaderboarddb.Tournament)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Tournament, room and match tables dropped successfully!")
		return nil
	})
}
