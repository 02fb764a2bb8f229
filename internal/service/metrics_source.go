package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/industry-portal/internal/model"
)

// MetricsSource supplies the numbers shown on a dashboard.  Keys follow the
// per-industry vocabulary built by DashboardData.
type MetricsSource interface {
	Metrics(ctx context.Context, userID uuid.UUID, t model.IndustryType) (map[string]float64, error)
}

// PlaceholderMetrics reports zero for every metric.  Bookings, shipments and
// orders are not stored by this service yet.
type PlaceholderMetrics struct{}

func (PlaceholderMetrics) Metrics(context.Context, uuid.UUID, model.IndustryType) (map[string]float64, error) {
	return map[string]float64{}, nil
}
