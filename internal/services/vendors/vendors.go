// Package vendors implements the daily price sources behind the provider gateway.
package vendors

import (
	"errors"
	"fmt"
	"time"

	"GhostRegime/internal/domain/models"
	"GhostRegime/internal/domain/service"
	"GhostRegime/pkg/config"
	xhttp "GhostRegime/pkg/http"
)

var (
	// ErrNoData means the vendor answered but had no usable bars for the range.
	ErrNoData = errors.New("vendor returned no data")
	// ErrNoAPIKey means the vendor requires a key that is not configured.
	ErrNoAPIKey = errors.New("vendor api key not configured")
)

const userAgent = "ghostregime/1.0"

// NewRegistry builds every enabled vendor keyed by name.
func NewRegistry(cfg config.Vendors) map[string]service.Vendor {
	out := make(map[string]service.Vendor, 4)
	add := func(name string, v config.Vendor, build func(config.Vendor, *xhttp.Client) service.Vendor) {
		if v.Disabled {
			return
		}
		client := xhttp.NewClient(xhttp.WithTimeout(v.Timeout), xhttp.WithUserAgent(userAgent))
		out[name] = build(v, client)
	}
	add("stooq", cfg.Stooq, func(v config.Vendor, c *xhttp.Client) service.Vendor { return NewStooq(v.BaseURL, c) })
	add("tiingo", cfg.Tiingo, func(v config.Vendor, c *xhttp.Client) service.Vendor { return NewTiingo(v.BaseURL, v.APIKey, c) })
	add("fred", cfg.FRED, func(v config.Vendor, c *xhttp.Client) service.Vendor { return NewFRED(v.BaseURL, v.APIKey, c) })
	add("coingecko", cfg.CoinGecko, func(v config.Vendor, c *xhttp.Client) service.Vendor { return NewCoinGecko(v.BaseURL, v.APIKey, c) })
	return out
}

// inRange keeps bars within [from, to] and drops non-positive closes.
func inRange(bars []models.Bar, from, to models.Date) []models.Bar {
	out := bars[:0]
	for _, b := range bars {
		if b.Date.Before(from) || b.Date.After(to) || b.Close <= 0 {
			continue
		}
		out = append(out, b)
	}
	return out
}

func finish(vendor, id string, bars []models.Bar, from, to models.Date) ([]models.Bar, error) {
	bars = inRange(bars, from, to)
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s %s: %w", vendor, id, ErrNoData)
	}
	return bars, nil
}

func compactDate(d models.Date) string {
	return d.Time().Format("20060102")
}

func unixSeconds(d models.Date) string {
	return fmt.Sprintf("%d", d.Time().Unix())
}

func endOfDay(d models.Date) time.Time {
	return d.Time().Add(24*time.Hour - time.Second)
}
