package leaderboardservice

import (
	"bytes"
	"context"
	"fmt"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	"github.com/google/uuid"
	"github.com/wcharczuk/go-chart/v2"
)

// maxChartBars caps the bars drawn; the rest of the table is in the xlsx export.
const maxChartBars = 20

// RenderLeaderboardChart renders the room leaderboard as a PNG bar chart.
func (s *LeaderboardService) RenderLeaderboardChart(ctx context.Context, principal authdomain.Principal, roomID uuid.UUID, opts LeaderboardOptions) (*Export, error) {
	lb, err := s.GetLeaderboard(ctx, principal, roomID, opts)
	if err != nil {
		return nil, err
	}
	data, err := GenerateLeaderboardChart(lb.Entries, lb.RoomName, DefaultPalette)
	if err != nil {
		return nil, fmt.Errorf("RenderLeaderboardChart: %w", err)
	}
	return &Export{
		Filename:    exportFilename(lb, "png"),
		ContentType: PNGContentType,
		Data:        data,
	}, nil
}

// GenerateLeaderboardChart produces a PNG bar chart of the top entries.
// Entries sharing the leader's points are drawn in the leader color.
func GenerateLeaderboardChart(entries []leaderboarddomain.Entry, title string, palette ChartPalette) ([]byte, error) {
	if len(entries) == 0 {
		return renderNoDataPlaceholder(palette)
	}
	if len(entries) > maxChartBars {
		entries = entries[:maxChartBars]
	}

	top := entries[0].Points
	bars := make([]chart.Value, 0, len(entries))
	for _, e := range entries {
		fill := palette.Bar
		if e.Points == top {
			fill = palette.Leader
		}
		bars = append(bars, chart.Value{
			Label: e.DisplayName,
			Value: float64(e.Points),
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		})
	}

	// A zero-height range makes go-chart refuse to render, so keep at least one point of headroom.
	yMax := float64(top)
	if yMax < 1 {
		yMax = 1
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: palette.TextColor},
		Width:      1024,
		Height:     512,
		BarWidth:   36,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{FillColor: palette.Background},
		XAxis:  chart.Style{FontColor: palette.TextColor},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: palette.TextColor},
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No members yet"
	)

	graph := chart.Chart{
		Width:      width,
		Height:     height,
		Background: chart.Style{FillColor: palette.Background},
		Canvas:     chart.Style{FillColor: palette.Background},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(palette.TextColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				r.Text(msg, (cb.Width()-tb.Width())/2, (cb.Height()+tb.Height())/2)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
