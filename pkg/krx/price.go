// Package krx fetches prior-day closing prices for KRX-listed tickers from
// the Naver Finance market-data endpoints.
package krx

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

	"github.com/PuerkitoBio/goquery"
	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"
)

const (
	DefaultChartURL = "https://api.finance.naver.com/siseJson.naver"
	DefaultQuoteURL = "https://finance.naver.com/item/sise_day.naver"

	// Naver serves HTML error pages to clients without a browser-like UA.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type Client struct {
	Client   *http.Client
	Logger   *zap.Logger
	ChartURL string
	QuoteURL string
	Now      func() time.Time
}

func NewClient(logger *zap.Logger) *Client {
	return &Client{
		Client:   &http.Client{Timeout: 30 * time.Second},
		Logger:   logger,
		ChartURL: DefaultChartURL,
		QuoteURL: DefaultQuoteURL,
		Now:      time.Now,
	}
}

// PrevBusinessDay walks back from t to the most recent prior weekday.
// Market holidays are deliberately not skipped; on a holiday the source
// simply returns no row and the price comes back absent.
func PrevBusinessDay(t time.Time) time.Time {
	day := t.AddDate(0, 0, -1)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// PrevClose returns the closing price for the most recent prior business
// day. Any failure yields absent (false); the returned error only feeds
// per-company diagnostics and never aborts the caller's row.
func (c *Client) PrevClose(ctx context.Context, stockCode string) (float64, bool, error) {
	day := PrevBusinessDay(c.Now())

	price, ok, err := c.closeFromChart(ctx, stockCode, day)
	if ok {
		return price, true, nil
	}
	if err != nil {
		c.Logger.Warn("chart close lookup failed, falling back to quote page",
			zap.String("stock_code", stockCode),
			zap.Error(err))
	}

	price, ok, fallbackErr := c.closeFromQuotePage(ctx, stockCode, day)
	if ok {
		return price, true, nil
	}
	if err == nil {
		err = fallbackErr
	}
	return 0, false, err
}

// closeFromChart queries the daily chart endpoint with a single-day range.
// The endpoint answers with pseudo-JSON (single-quoted strings), repaired
// before decoding.
func (c *Client) closeFromChart(ctx context.Context, stockCode string, day time.Time) (float64, bool, error) {
	params := url.Values{
		"symbol":      {stockCode},
		"requestType": {"1"},
		"startTime":   {day.Format("20060102")},
		"endTime":     {day.Format("20060102")},
		"timeframe":   {"day"},
	}

	body, err := c.fetch(ctx, c.ChartURL+"?"+params.Encode())
	if err != nil {
		return 0, false, err
	}

	repaired, err := jsonrepair.JSONRepair(string(body))
	if err != nil {
		return 0, false, fmt.Errorf("repairing chart response: %w", err)
	}

	// Row shape: ["20240924", open, high, low, close, volume, ...] after a
	// string header row.
	var rows [][]interface{}
	if err := json.Unmarshal([]byte(repaired), &rows); err != nil {
		return 0, false, fmt.Errorf("decoding chart response: %w", err)
	}

	want := day.Format("20060102")
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		date, ok := row[0].(string)
		if !ok || date != want {
			continue
		}
		if closePrice, ok := row[4].(float64); ok {
			return closePrice, true, nil
		}
	}
	return 0, false, nil
}

// closeFromQuotePage scrapes the daily quote table and picks the row for
// the computed day, if the chart endpoint had nothing.
func (c *Client) closeFromQuotePage(ctx context.Context, stockCode string, day time.Time) (float64, bool, error) {
	body, err := c.fetch(ctx, c.QuoteURL+"?code="+url.QueryEscape(stockCode))
	if err != nil {
		return 0, false, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return 0, false, fmt.Errorf("parsing quote page: %w", err)
	}

	want := day.Format("2006.01.02")
	var price float64
	found := false
	doc.Find("table.type2 tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return true
		}
		if strings.TrimSpace(cells.Eq(0).Text()) != want {
			return true
		}
		parsed, err := parsePrice(cells.Eq(1).Text())
		if err != nil {
			return true
		}
		price = parsed
		found = true
		return false
	})

	if !found {
		return 0, false, nil
	}
	return price, true, nil
}

func (c *Client) fetch(ctx context.Context, reqUrl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqUrl, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s from %s", res.Status, res.Request.URL.Host)
	}
	return io.ReadAll(res.Body)
}

func parsePrice(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.ParseFloat(cleaned, 64)
}
