package vendors

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"GhostRegime/internal/domain/models"
	xhttp "GhostRegime/pkg/http"
)

// FRED serves economic series observations (VIXCLS, DGS10). Requires an API key.
type FRED struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

type fredResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

func NewFRED(baseURL, apiKey string, client *xhttp.Client) *FRED {
	return &FRED{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

func (f *FRED) Name() string { return "fred" }

func (f *FRED) FetchDaily(ctx context.Context, id string, from, to models.Date) ([]models.Bar, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("fred %s: %w", id, ErrNoAPIKey)
	}

	var resp fredResponse
	err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    f.baseURL + "/fred/series/observations",
		QueryParams: map[string][]string{
			"series_id":         {id},
			"api_key":           {f.apiKey},
			"file_type":         {"json"},
			"observation_start": {from.String()},
			"observation_end":   {to.String()},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fred %s: %w", id, err)
	}

	bars := make([]models.Bar, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		// "." marks a missing observation (market holiday)
		if o.Value == "." || o.Value == "" {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		d, err := models.ParseDate(o.Date)
		if err != nil {
			continue
		}
		bars = append(bars, models.Bar{Date: d, Close: v})
	}
	return finish("fred", id, bars, from, to)
}
