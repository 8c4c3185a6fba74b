package leaderboardservice

import (
	"context"
	"fmt"
	"time"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	PNGContentType  = "image/png"

	leaderboardSheet = "Leaderboard"
)

var workbookHeader = []any{"Position", "Name", "Points", "Correct 1X2", "1X2 Points", "Bonus Points"}

// ExportLeaderboard renders the room leaderboard as an xlsx workbook.
func (s *LeaderboardService) ExportLeaderboard(ctx context.Context, principal authdomain.Principal, roomID uuid.UUID, opts LeaderboardOptions) (*Export, error) {
	lb, err := s.GetLeaderboard(ctx, principal, roomID, opts)
	if err != nil {
		return nil, err
	}
	data, err := BuildLeaderboardWorkbook(lb)
	if err != nil {
		return nil, fmt.Errorf("ExportLeaderboard: %w", err)
	}
	return &Export{
		Filename:    exportFilename(lb, "xlsx"),
		ContentType: XLSXContentType,
		Data:        data,
	}, nil
}

// BuildLeaderboardWorkbook writes one row per entry below a bold header row.
func BuildLeaderboardWorkbook(lb *LeaderboardResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leaderboardSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := workbookHeader
	if err := f.SetSheetRow(leaderboardSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(leaderboardSheet, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, e := range lb.Entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{e.Position, e.DisplayName, e.Points, e.Correct1x2, e.Points1x2, e.BonusPoints}
		if err := f.SetSheetRow(leaderboardSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(leaderboardSheet, "B", "B", 28); err != nil {
		return nil, fmt.Errorf("failed to size name column: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// exportFilename builds e.g. "office-pool-leaderboard-2026-06-14.xlsx".
func exportFilename(lb *LeaderboardResult, ext string) string {
	name := slug.Make(lb.RoomName)
	if name == "" {
		name = "room"
	}
	day := lb.GeneratedAt
	if lb.AsOf != nil {
		day = *lb.AsOf
	}
	return fmt.Sprintf("%s-leaderboard-%s.%s", name, day.UTC().Format(time.DateOnly), ext)
}
