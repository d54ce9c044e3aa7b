package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"corpcompare/pkg/compare"
	"corpcompare/pkg/corpdir"
	"corpcompare/pkg/dart"
	"corpcompare/pkg/krx"
)

// DART report period codes by CLI name.
var reportCodes = map[string]string{
	"1q":     "11013",
	"half":   "11012",
	"3q":     "11014",
	"annual": "11011",
}

var fsDivCodes = map[string]string{
	"cfs": "CFS",
	"ofs": "OFS",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	companies := flag.String("companies", "", "comma-separated company names (required)")
	year := flag.String("year", strconv.Itoa(time.Now().Year()), "business year")
	report := flag.String("report", "annual", "report period: 1q, half, 3q, annual")
	fsDiv := flag.String("fs", "cfs", "consolidation mode: cfs (연결) or ofs (별도)")
	corpFile := flag.String("corpfile", "listed_corp.csv", "listed company CSV")
	indFile := flag.String("indfile", "", "industry code CSV (optional)")
	outFile := flag.String("out", "data/comparison.json", "JSON output path")
	flag.Parse()

	if *companies == "" {
		log.Fatal("usage: -companies \"회사1,회사2\" is required")
	}

	apiKey := os.Getenv("DART_API_KEY")
	if apiKey == "" {
		log.Fatal("DART_API_KEY must be set")
	}

	reprtCode, ok := reportCodes[*report]
	if !ok {
		log.Fatalf("unknown report period %q (want 1q, half, 3q, annual)", *report)
	}
	fsCode, ok := fsDivCodes[*fsDiv]
	if !ok {
		log.Fatalf("unknown consolidation mode %q (want cfs or ofs)", *fsDiv)
	}

	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	directory, err := corpdir.Load(*corpFile)
	if err != nil {
		log.Fatalf("Error loading company list: %v", err)
	}
	fmt.Printf("Loaded %d listed companies from %s\n", directory.Len(), *corpFile)

	industry := corpdir.NewIndustryTable(nil)
	if *indFile != "" {
		industry, err = corpdir.LoadIndustryTable(*indFile)
		if err != nil {
			log.Fatalf("Error loading industry table: %v", err)
		}
	}

	pipeline := compare.NewPipeline(
		directory,
		industry,
		dart.NewClient(&dart.Config{ApiKey: apiKey}, logger),
		krx.NewClient(logger),
		logger,
	)

	names := strings.Split(*companies, ",")
	dataset := pipeline.Compare(context.Background(), &compare.Request{
		Companies: names,
		Year:      *year,
		ReprtCode: reprtCode,
		FsDiv:     fsCode,
	})

	fmt.Printf("\n=== %d개 회사 정보 비교 결과 ===\n\n", len(dataset.Rows))
	printComparisonTable(dataset.Rows)
	printMarketCapChart(dataset.Rows)

	for _, diag := range dataset.Diagnostics {
		fmt.Printf("⚠️  %s [%s]: %s\n", diag.Company, diag.Field, diag.Message)
	}

	if err := writeDataset(dataset, *outFile); err != nil {
		log.Fatalf("Error writing output: %v", err)
	}
	fmt.Printf("\n📁 Results written to %s\n", *outFile)
}

// rowFields defines the transposed table: one attribute per line, one
// column per company, in the order the source presents them.
var rowFields = []struct {
	label string
	value func(compare.Row) string
}{
	{"회사명", func(r compare.Row) string { return r.Name }},
	{"대표이사", func(r compare.Row) string { return r.CEO }},
	{"주소", func(r compare.Row) string { return r.Address }},
	{"설립일", func(r compare.Row) string { return r.Founded }},
	{"법인구분", func(r compare.Row) string { return r.ListingClass }},
	{"업종", func(r compare.Row) string { return r.Industry }},
	{"최대주주", func(r compare.Row) string { return r.MajorShareholder }},
	{"보유수량", func(r compare.Row) string { return r.ShareholderQty }},
	{"지분율", func(r compare.Row) string { return r.ShareholderRatio }},
	{"발행주식 총수", func(r compare.Row) string { return r.TotalShares }},
	{"전일 종가", func(r compare.Row) string { return r.PrevClose }},
	{"시가총액(억원)", func(r compare.Row) string { return r.MarketCap }},
}

func printComparisonTable(rows []compare.Row) {
	if len(rows) == 0 {
		fmt.Println("표시할 결과가 없습니다.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, field := range rowFields {
		cells := []string{field.label}
		for _, row := range rows {
			cells = append(cells, field.value(row))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	for _, item := range dart.StatementItems {
		cells := []string{item.Label}
		for _, row := range rows {
			cells = append(cells, row.Financials[item.Label])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
}

// printMarketCapChart draws the market-cap comparison. Companies without a
// market cap are left out, mirroring the source's chart behavior.
func printMarketCapChart(rows []compare.Row) {
	type bar struct {
		name  string
		value int64
	}
	var bars []bar
	var max int64
	for _, row := range rows {
		value, err := strconv.ParseInt(strings.ReplaceAll(row.MarketCap, ",", ""), 10, 64)
		if err != nil {
			continue
		}
		bars = append(bars, bar{name: row.Name, value: value})
		if value > max {
			max = value
		}
	}
	if len(bars) == 0 || max <= 0 {
		return
	}

	fmt.Println("\n### 시가총액 비교 (단위: 억 원)")
	for _, b := range bars {
		width := int(b.value * 50 / max)
		if width < 1 {
			width = 1
		}
		fmt.Printf("%-12s %s %s\n", b.name, strings.Repeat("█", width), dart.Comma(b.value))
	}
}

func writeDataset(dataset *compare.Dataset, path string) error {
	data, err := json.Marshal(dataset)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, pretty.Pretty(data), 0644)
}
