package docservice

import (
	"context"

	"github.com/starford/docdesk/internal/dashboard"
)

// TrendMonths is how many months the upload trend covers.
const TrendMonths = 6

// DashboardStats builds the chart series for userID's documents.
func (s *Service) DashboardStats(ctx context.Context, userID int64) (dashboard.Stats, error) {
	byType, err := s.db.CountByType(ctx, userID)
	if err != nil {
		return dashboard.Stats{}, err
	}
	byMonth, err := s.db.CountByMonth(ctx, userID)
	if err != nil {
		return dashboard.Stats{}, err
	}
	types := make([]dashboard.TypeCount, len(byType))
	for i, c := range byType {
		types[i] = dashboard.TypeCount{Type: c.Type, Count: c.Count}
	}
	months := make([]dashboard.MonthCount, len(byMonth))
	for i, c := range byMonth {
		months[i] = dashboard.MonthCount{Month: c.Month, Count: c.Count}
	}
	return dashboard.Stats{
		ByType:  dashboard.ColorTypes(types),
		ByMonth: dashboard.FillMonths(months, s.now(), TrendMonths),
	}, nil
}
