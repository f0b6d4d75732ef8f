package vendors

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"GhostRegime/internal/domain/models"
	xhttp "GhostRegime/pkg/http"
	"GhostRegime/pkg/util"
)

// Tiingo serves split/dividend adjusted daily prices. Requires an API key.
type Tiingo struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

type tiingoPrice struct {
	Date     string  `json:"date"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adjClose"`
}

func NewTiingo(baseURL, apiKey string, client *xhttp.Client) *Tiingo {
	return &Tiingo{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

func (t *Tiingo) Name() string { return "tiingo" }

func (t *Tiingo) FetchDaily(ctx context.Context, id string, from, to models.Date) ([]models.Bar, error) {
	if t.apiKey == "" {
		return nil, fmt.Errorf("tiingo %s: %w", id, ErrNoAPIKey)
	}

	var prices []tiingoPrice
	err := t.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/tiingo/daily/%s/prices", t.baseURL, url.PathEscape(strings.ToLower(id))),
		Headers: map[string]string{"Authorization": "Token " + t.apiKey},
		QueryParams: map[string][]string{
			"startDate": {from.String()},
			"endDate":   {to.String()},
		},
	}, &prices)
	if err != nil {
		return nil, fmt.Errorf("tiingo %s: %w", id, err)
	}

	bars := make([]models.Bar, 0, len(prices))
	for _, p := range prices {
		ts, ok := util.ParseTime(p.Date)
		if !ok {
			continue
		}
		c := p.AdjClose
		if c <= 0 {
			c = p.Close
		}
		bars = append(bars, models.Bar{Date: models.DateOf(ts), Close: c})
	}
	return finish("tiingo", id, bars, from, to)
}
