// Package compare runs the per-company aggregation pipeline: resolve each
// requested name, fan out the filings and market-data fetches, merge the
// partial results into one row per company, and compute market cap.
package compare

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"corpcompare/pkg/dart"
)

// FilingsAPI is the slice of the DART client the pipeline needs.
type FilingsAPI interface {
	CompanyProfile(ctx context.Context, corpCode string) (*dart.Profile, error)
	TotalShares(ctx context.Context, corpCode string, year string, reprtCode string) (string, bool, error)
	MajorShareholder(ctx context.Context, corpCode string, year string, reprtCode string) (*dart.Shareholder, error)
	Financials(ctx context.Context, corpCode string, year string, reprtCode string, fsDiv string) (map[string]string, error)
}

// PriceSource yields the prior business-day close for a ticker.
type PriceSource interface {
	PrevClose(ctx context.Context, stockCode string) (float64, bool, error)
}

// Resolver maps a company display name to its filer code and ticker.
type Resolver interface {
	Resolve(name string) (corpCode string, stockCode string, err error)
}

// IndustryLookup resolves a raw industry code to a display label.
type IndustryLookup interface {
	Lookup(code string) string
}

// Request carries one compare invocation's parameters.
type Request struct {
	Companies []string
	Year      string
	ReprtCode string
	FsDiv     string
}

// Row is the merged comparison record for one company. Every field is
// display-ready; anything that could not be fetched reads dart.NoData.
type Row struct {
	Name             string            `json:"name"`
	CEO              string            `json:"ceo"`
	Address          string            `json:"address"`
	Founded          string            `json:"founded"`
	ListingClass     string            `json:"listing_class"`
	Industry         string            `json:"industry"`
	MajorShareholder string            `json:"major_shareholder"`
	ShareholderQty   string            `json:"shareholder_quantity"`
	ShareholderRatio string            `json:"shareholder_ratio"`
	TotalShares      string            `json:"total_issued_shares"`
	PrevClose        string            `json:"prev_close"`
	MarketCap        string            `json:"market_cap_100m_krw"`
	Financials       map[string]string `json:"financials"`
}

// Diagnostic attributes one failure to a (company, field) pair. Resolution
// failures use field "resolve"; everything else names the fetch that broke.
type Diagnostic struct {
	Company string `json:"company"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Dataset is the compare output: one row per resolved company, in request
// order, plus the diagnostics collected along the way.
type Dataset struct {
	Rows        []Row        `json:"rows"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type Pipeline struct {
	Directory Resolver
	Industry  IndustryLookup
	Filings   FilingsAPI
	Prices    PriceSource
	Logger    *zap.Logger

	// MaxConcurrent bounds the company fan-out. Zero means 4.
	MaxConcurrent int
}

func NewPipeline(directory Resolver, industry IndustryLookup, filings FilingsAPI, prices PriceSource, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		Directory: directory,
		Industry:  industry,
		Filings:   filings,
		Prices:    prices,
		Logger:    logger,
	}
}

type companyResult struct {
	row   *Row
	diags []Diagnostic
}

// Compare aggregates one row per resolvable requested company. Companies
// run concurrently; results land in a slice indexed by request position, so
// output order always matches request order no matter which fetch finishes
// first. An unresolvable name contributes a diagnostic and no row. No
// single failure is fatal to the run.
func (p *Pipeline) Compare(ctx context.Context, req *Request) *Dataset {
	logger := p.Logger.With(zap.String("search_id", uuid.NewString()))
	logger.Info("starting comparison",
		zap.Int("companies", len(req.Companies)),
		zap.String("bsns_year", req.Year),
		zap.String("reprt_code", req.ReprtCode))

	maxConcurrent := p.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	results := make([]companyResult, len(req.Companies))
	semaphore := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, name := range req.Companies {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[i] = p.compareOne(ctx, logger, req, name)
		}(i, strings.TrimSpace(name))
	}
	wg.Wait()

	dataset := &Dataset{}
	for _, result := range results {
		if result.row != nil {
			dataset.Rows = append(dataset.Rows, *result.row)
		}
		dataset.Diagnostics = append(dataset.Diagnostics, result.diags...)
	}

	logger.Info("comparison finished",
		zap.Int("rows", len(dataset.Rows)),
		zap.Int("diagnostics", len(dataset.Diagnostics)))
	return dataset
}

// compareOne builds the row for a single company. The five fetches run
// concurrently and each writes its own fields; a failure in one is recorded
// as a diagnostic and never blocks the siblings.
func (p *Pipeline) compareOne(ctx context.Context, logger *zap.Logger, req *Request, name string) companyResult {
	corpCode, stockCode, err := p.Directory.Resolve(name)
	if err != nil {
		logger.Warn("company not found", zap.String("company", name))
		return companyResult{diags: []Diagnostic{{
			Company: name,
			Field:   "resolve",
			Message: err.Error(),
			Err:     err,
		}}}
	}

	row := newRow(name)
	var diags []Diagnostic
	var mu sync.Mutex
	report := func(field string, err error) {
		logger.Warn("fetch failed",
			zap.String("company", name),
			zap.String("field", field),
			zap.Error(err))
		mu.Lock()
		diags = append(diags, Diagnostic{Company: name, Field: field, Message: err.Error(), Err: err})
		mu.Unlock()
	}

	var (
		wg        sync.WaitGroup
		shares    string
		hasShares bool
		price     float64
		hasPrice  bool
	)

	wg.Add(5)

	go func() {
		defer wg.Done()
		profile, err := p.Filings.CompanyProfile(ctx, corpCode)
		if err != nil {
			report("profile", err)
			return
		}
		if profile == nil {
			return
		}
		if profile.Name != "" {
			row.Name = profile.Name
		}
		row.CEO = orNoData(profile.CEO)
		row.Address = orNoData(profile.Address)
		row.Founded = profile.Founded
		row.ListingClass = profile.CorpClass
		row.Industry = p.Industry.Lookup(profile.IndutyCode)
	}()

	go func() {
		defer wg.Done()
		total, ok, err := p.Filings.TotalShares(ctx, corpCode, req.Year, req.ReprtCode)
		if err != nil {
			report("shares", err)
			return
		}
		if ok {
			shares = total
			hasShares = true
			row.TotalShares = total
		}
	}()

	go func() {
		defer wg.Done()
		closePrice, ok, err := p.Prices.PrevClose(ctx, stockCode)
		if err != nil {
			report("price", err)
		}
		if ok {
			price = closePrice
			hasPrice = true
			row.PrevClose = formatPrice(closePrice)
		}
	}()

	go func() {
		defer wg.Done()
		holder, err := p.Filings.MajorShareholder(ctx, corpCode, req.Year, req.ReprtCode)
		if err != nil {
			report("shareholder", err)
			return
		}
		if holder != nil {
			row.MajorShareholder = holder.Name
			row.ShareholderQty = holder.Shares
			row.ShareholderRatio = holder.Ratio
		}
	}()

	go func() {
		defer wg.Done()
		items, err := p.Filings.Financials(ctx, corpCode, req.Year, req.ReprtCode, req.FsDiv)
		if err != nil {
			report("financials", err)
			return
		}
		row.Financials = items
	}()

	wg.Wait()

	if hasShares && hasPrice {
		if value, ok := marketCap(shares, price); ok {
			row.MarketCap = dart.Comma(value)
		}
	}

	return companyResult{row: row, diags: diags}
}

// marketCap converts a comma-grouped share count and a close price into
// hundred-million KRW units, truncated.
func marketCap(shares string, price float64) (int64, bool) {
	count, err := strconv.ParseInt(strings.ReplaceAll(shares, ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	value := decimal.NewFromInt(count).Mul(decimal.NewFromFloat(price)).Shift(-8)
	return value.IntPart(), true
}

func newRow(name string) *Row {
	financials := make(map[string]string, len(dart.StatementItems))
	for _, item := range dart.StatementItems {
		financials[item.Label] = dart.NoData
	}
	return &Row{
		Name:             name,
		CEO:              dart.NoData,
		Address:          dart.NoData,
		Founded:          dart.NoData,
		ListingClass:     dart.NoData,
		Industry:         dart.NoData,
		MajorShareholder: dart.NoData,
		ShareholderQty:   dart.NoData,
		ShareholderRatio: dart.NoData,
		TotalShares:      dart.NoData,
		PrevClose:        dart.NoData,
		MarketCap:        dart.NoData,
		Financials:       financials,
	}
}

func orNoData(s string) string {
	if s == "" {
		return dart.NoData
	}
	return s
}

// formatPrice renders a KRW close. Prices are whole won in practice; keep a
// decimal tail only when the source actually sends one.
func formatPrice(price float64) string {
	if price == float64(int64(price)) {
		return dart.Comma(int64(price))
	}
	return strconv.FormatFloat(price, 'f', -1, 64)
}
