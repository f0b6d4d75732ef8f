package models

import "sort"

// Bar is one daily close.
type Bar struct {
	Date  Date    `json:"date"`
	Close float64 `json:"close"`
}

// Provenance records which vendor entry produced a series.
type Provenance struct {
	Vendor     string `json:"vendor"`
	ResolvedID string `json:"resolvedId"`
}

// Key renders "vendor:id".
func (p Provenance) Key() string {
	return p.Vendor + ":" + p.ResolvedID
}

// Series is an ascending, date-unique sequence of closes for one symbol.
type Series struct {
	Symbol     string     `json:"symbol"`
	Bars       []Bar      `json:"bars"`
	Provenance Provenance `json:"provenance"`
}

// NewSeries sorts bars ascending and keeps the last bar seen for a duplicated date.
func NewSeries(symbol string, bars []Bar, prov Provenance) Series {
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := sorted[:0]
	for _, b := range sorted {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return Series{Symbol: symbol, Bars: out, Provenance: prov}
}

func (s Series) Len() int { return len(s.Bars) }

// Last returns the most recent bar.
func (s Series) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Closes returns the close column in date order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Truncate drops bars dated after asOf.
func (s Series) Truncate(asOf Date) Series {
	idx := sort.Search(len(s.Bars), func(i int) bool { return s.Bars[i].Date.After(asOf) })
	return Series{Symbol: s.Symbol, Bars: s.Bars[:idx], Provenance: s.Provenance}
}

// FetchAttempt is one vendor try for a symbol. Error is empty on success.
type FetchAttempt struct {
	Vendor string `json:"vendor"`
	ID     string `json:"id"`
	Error  string `json:"error,omitempty"`
}

type FetchStatus string

const (
	FetchResolved    FetchStatus = "resolved"
	FetchUnavailable FetchStatus = "unavailable"
)

// FetchResult is either resolved (Series set) or unavailable (only attempts).
type FetchResult struct {
	Symbol   string         `json:"symbol"`
	Status   FetchStatus    `json:"status"`
	Series   *Series        `json:"series,omitempty"`
	Attempts []FetchAttempt `json:"attempts"`
	// Proxy is true when a non-primary chain entry resolved the symbol.
	Proxy bool `json:"proxy"`
}

func Resolved(symbol string, series Series, attempts []FetchAttempt, proxy bool) FetchResult {
	return FetchResult{Symbol: symbol, Status: FetchResolved, Series: &series, Attempts: attempts, Proxy: proxy}
}

func Unavailable(symbol string, attempts []FetchAttempt) FetchResult {
	return FetchResult{Symbol: symbol, Status: FetchUnavailable, Attempts: attempts}
}

func (r FetchResult) OK() bool {
	return r.Status == FetchResolved && r.Series != nil
}
