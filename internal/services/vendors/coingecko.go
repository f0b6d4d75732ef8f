package vendors

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"GhostRegime/internal/domain/models"
	xhttp "GhostRegime/pkg/http"
)

// CoinGecko serves crypto prices. Ranges above 90 days come back at daily granularity.
type CoinGecko struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

type coinGeckoChart struct {
	Prices [][2]float64 `json:"prices"` // [unix ms, price]
}

func NewCoinGecko(baseURL, apiKey string, client *xhttp.Client) *CoinGecko {
	return &CoinGecko{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

func (c *CoinGecko) Name() string { return "coingecko" }

func (c *CoinGecko) FetchDaily(ctx context.Context, id string, from, to models.Date) ([]models.Bar, error) {
	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["x-cg-demo-api-key"] = c.apiKey
	}

	var chart coinGeckoChart
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/api/v3/coins/%s/market_chart/range", c.baseURL, url.PathEscape(id)),
		Headers: headers,
		QueryParams: map[string][]string{
			"vs_currency": {"usd"},
			"from":        {unixSeconds(from)},
			"to":          {fmt.Sprintf("%d", endOfDay(to).Unix())},
		},
	}, &chart)
	if err != nil {
		return nil, fmt.Errorf("coingecko %s: %w", id, err)
	}

	// several points can land on one UTC day; the gateway keeps the last one
	bars := make([]models.Bar, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		ts := time.UnixMilli(int64(p[0])).UTC()
		bars = append(bars, models.Bar{Date: models.DateOf(ts), Close: p[1]})
	}
	return finish("coingecko", id, bars, from, to)
}
