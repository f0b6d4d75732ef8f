package service

import (
	"context"

	"GhostRegime/internal/domain/models"
)

// Vendor fetches daily closes for a vendor-specific identifier over [from, to].
// Bars may come back unsorted; the gateway normalises them.
type Vendor interface {
	Name() string
	FetchDaily(ctx context.Context, id string, from, to models.Date) ([]models.Bar, error)
}

// Gateway resolves symbols through their vendor chains.
type Gateway interface {
	FetchSeries(ctx context.Context, symbol string, asOf models.Date) models.FetchResult
	FetchAll(ctx context.Context, symbols []string, asOf models.Date) (map[string]models.FetchResult, models.ProviderDiagnostics)
}
