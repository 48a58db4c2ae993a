package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"StockScreener/internal/model"
)

const (
	defaultSpotURL  = "https://82.push2.eastmoney.com/api/qt/clist/get"
	defaultKlineURL = "https://push2his.eastmoney.com/api/qt/stock/kline/get"

	// fs selector covering Shanghai and Shenzhen A shares.
	spotMarkets  = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23"
	spotPageSize = 2000
)

// EastMoneyFetcher pulls the A-share universe and daily candles from the
// EastMoney push2 quote API. It implements UniverseProvider and SeriesProvider.
type EastMoneyFetcher struct {
	Client   *http.Client
	Filter   UniverseFilter
	SpotURL  string
	KlineURL string

	limiter *rate.Limiter
}

// NewEastMoneyFetcher creates a fetcher capped at rps requests per second.
func NewEastMoneyFetcher(proxyURL string, rps float64, filter UniverseFilter) *EastMoneyFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if rps <= 0 {
		rps = 5
	}
	return &EastMoneyFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Filter:   filter,
		SpotURL:  defaultSpotURL,
		KlineURL: defaultKlineURL,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (f *EastMoneyFetcher) Name() string { return "eastmoney" }

// spotResponse is the clist/get envelope. Suspended instruments report "-"
// for price fields, hence interface{} plus toFloat.
type spotResponse struct {
	Data *struct {
		Total int `json:"total"`
		Diff  []struct {
			Latest interface{} `json:"f2"`
			Code   string      `json:"f12"`
			Name   string      `json:"f14"`
			Open   interface{} `json:"f17"`
		} `json:"diff"`
	} `json:"data"`
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// ListInstruments pages through the live spot listing and applies the
// universe filter.
func (f *EastMoneyFetcher) ListInstruments(ctx context.Context) ([]model.Instrument, error) {
	var out []model.Instrument
	seen := 0
	for page := 1; ; page++ {
		body, err := f.get(ctx, f.SpotURL, url.Values{
			"pn":     {strconv.Itoa(page)},
			"pz":     {strconv.Itoa(spotPageSize)},
			"po":     {"1"},
			"np":     {"1"},
			"fltt":   {"2"},
			"invt":   {"2"},
			"fid":    {"f12"},
			"fs":     {spotMarkets},
			"fields": {"f2,f12,f14,f17"},
		})
		if err != nil {
			return nil, fmt.Errorf("eastmoney spot list: %w", err)
		}
		var resp spotResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("eastmoney spot decode: %w", err)
		}
		if resp.Data == nil || len(resp.Data.Diff) == 0 {
			break
		}
		for _, row := range resp.Data.Diff {
			seen++
			if !f.Filter.Keep(row.Code, row.Name, toFloat(row.Latest), toFloat(row.Open)) {
				continue
			}
			out = append(out, model.Instrument{ID: row.Code, Name: row.Name})
		}
		if seen >= resp.Data.Total {
			break
		}
	}
	if seen == 0 {
		return nil, fmt.Errorf("eastmoney: empty spot listing")
	}
	log.Info().Int("listed", seen).Int("kept", len(out)).Msg("universe assembled")
	if f.Filter.MaxInstruments > 0 && len(out) > f.Filter.MaxInstruments {
		out = out[:f.Filter.MaxInstruments]
	}
	return out, nil
}

// klineResponse is the stock/kline/get envelope. Each kline row is a CSV
// string: date,open,close,high,low,volume.
type klineResponse struct {
	Data *struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// secID maps a 6-digit code to the push2 market-prefixed id.
// Shanghai codes start with 6, everything else screenable is Shenzhen.
func secID(instrumentID string) string {
	if strings.HasPrefix(instrumentID, "6") {
		return "1." + instrumentID
	}
	return "0." + instrumentID
}

// GetSeries fetches forward-adjusted daily candles and trims to the most
// recent lookbackBars.
func (f *EastMoneyFetcher) GetSeries(ctx context.Context, instrumentID string, lookbackBars int) (*model.BarSeries, error) {
	// Calendar window twice the bar count covers weekends and holidays.
	beg := time.Now().AddDate(0, 0, -lookbackBars*2).Format("20060102")
	body, err := f.get(ctx, f.KlineURL, url.Values{
		"secid":   {secID(instrumentID)},
		"klt":     {"101"},
		"fqt":     {"1"},
		"beg":     {beg},
		"end":     {"20500101"},
		"fields1": {"f1,f2,f3,f4,f5,f6"},
		"fields2": {"f51,f52,f53,f54,f55,f56"},
	})
	if err != nil {
		return nil, fmt.Errorf("eastmoney kline %s: %w", instrumentID, err)
	}
	var resp klineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("eastmoney kline decode %s: %w", instrumentID, err)
	}
	if resp.Data == nil || len(resp.Data.Klines) == 0 {
		return nil, fmt.Errorf("eastmoney: no kline data for %s", instrumentID)
	}

	bars, err := parseKlines(resp.Data.Klines)
	if err != nil {
		return nil, fmt.Errorf("eastmoney kline parse %s: %w", instrumentID, err)
	}
	if len(bars) > lookbackBars {
		bars = bars[len(bars)-lookbackBars:]
	}
	return &model.BarSeries{
		InstrumentID: instrumentID,
		Name:         resp.Data.Name,
		Bars:         bars,
		FetchedAt:    time.Now(),
	}, nil
}

func parseKlines(rows []string) ([]model.Bar, error) {
	bars := make([]model.Bar, 0, len(rows))
	for _, row := range rows {
		fields := strings.Split(row, ",")
		if len(fields) < 6 {
			return nil, fmt.Errorf("malformed kline row %q", row)
		}
		date, err := time.Parse("2006-01-02", fields[0])
		if err != nil {
			return nil, fmt.Errorf("kline date %q: %w", fields[0], err)
		}
		vals := make([]float64, 5)
		for i, s := range fields[1:6] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("kline field %q: %w", s, err)
			}
			vals[i] = v
		}
		bars = append(bars, model.Bar{
			Date:   date,
			Open:   vals[0],
			Close:  vals[1],
			High:   vals[2],
			Low:    vals[3],
			Volume: vals[4],
		})
	}
	return bars, nil
}

func (f *EastMoneyFetcher) get(ctx context.Context, base string, params url.Values) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, "GET", base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
