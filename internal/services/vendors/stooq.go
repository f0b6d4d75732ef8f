package vendors

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"GhostRegime/internal/domain/models"
	xhttp "GhostRegime/pkg/http"

	"github.com/jszwec/csvutil"
)

// Stooq serves keyless daily CSV bars.
type Stooq struct {
	baseURL string
	client  *xhttp.Client
}

type stooqRow struct {
	Date  string  `csv:"Date"`
	Close float64 `csv:"Close"`
}

func NewStooq(baseURL string, client *xhttp.Client) *Stooq {
	return &Stooq{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (s *Stooq) Name() string { return "stooq" }

func (s *Stooq) FetchDaily(ctx context.Context, id string, from, to models.Date) ([]models.Bar, error) {
	var body []byte
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL + "/q/d/l/",
		QueryParams: map[string][]string{
			"s":  {strings.ToLower(id)},
			"i":  {"d"},
			"d1": {compactDate(from)},
			"d2": {compactDate(to)},
		},
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("stooq %s: %w", id, err)
	}

	body = bytes.TrimSpace(body)
	// stooq answers 200 with a plain "No data" body for unknown tickers
	if len(body) == 0 || !bytes.HasPrefix(body, []byte("Date,")) {
		return nil, fmt.Errorf("stooq %s: %w", id, ErrNoData)
	}

	var rows []stooqRow
	if err := csvutil.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("stooq %s: decode csv: %w", id, err)
	}

	bars := make([]models.Bar, 0, len(rows))
	for _, r := range rows {
		d, err := models.ParseDate(r.Date)
		if err != nil {
			continue
		}
		bars = append(bars, models.Bar{Date: d, Close: r.Close})
	}
	return finish("stooq", id, bars, from, to)
}
