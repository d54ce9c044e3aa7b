package dart

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Shareholder is the normalized largest-shareholder record for one filer
// and period, ready for display.
type Shareholder struct {
	Name   string
	Shares string
	Ratio  string
}

// recognizedStockKinds are the share-class labels hyslrSttus is known to
// emit. The endpoint sometimes returns rows with stock_knd and nm
// transposed; a label showing up in nm is the tell.
var recognizedStockKinds = map[string]bool{
	"보통주":       true,
	"우선주":       true,
	"의결권 있는 주식": true,
}

// MajorShareholder fetches and normalizes the largest-shareholder record.
// Returns (nil, nil) when the period has no usable data; an *APIError only
// on transport or decode failure.
func (c *Client) MajorShareholder(ctx context.Context, corpCode string, year string, reprtCode string) (*Shareholder, error) {
	env, err := c.getList(ctx, "hyslrSttus.json", corpCode, reportParams(year, reprtCode))
	if err != nil {
		return nil, err
	}
	if env.Status != statusOK {
		return nil, nil
	}

	// The rows are decoded as loose field bags on purpose: the transposed
	// columns are a data-shape defect, not something a typed struct fixes.
	var records []map[string]string
	if err := json.Unmarshal(env.List, &records); err != nil {
		return nil, &APIError{CorpCode: corpCode, Endpoint: "hyslrSttus.json", Err: fmt.Errorf("decoding list: %w", err)}
	}

	return SelectMajorShareholder(records), nil
}

// SelectMajorShareholder normalizes the raw shareholder rows and picks the
// largest holding. Correction pass: when stock_knd holds an unrecognized
// value while nm holds a recognized share class, the two columns were
// transposed upstream and are swapped back. Rows already carrying a valid
// stock_knd are left alone even if nm also looks like a class label.
//
// The swap is remembered per row: the same upstream defect also transposes
// nm and relate, so the selected row gets that second swap if and only if
// the first one fired for it. Applying it unconditionally would corrupt
// well-formed rows.
func SelectMajorShareholder(records []map[string]string) *Shareholder {
	swapped := make([]bool, len(records))
	for i, rec := range records {
		if !recognizedStockKinds[rec["stock_knd"]] && recognizedStockKinds[rec["nm"]] {
			rec["stock_knd"], rec["nm"] = rec["nm"], rec["stock_knd"]
			swapped[i] = true
		}
	}

	// Keep voting classes only and drop the aggregate "계" row. Selection is
	// by strict maximum held-share count; ties keep the earlier row, so the
	// result is deterministic for a given source order.
	best := -1
	var bestCount int64
	for i, rec := range records {
		kind := rec["stock_knd"]
		if kind != "보통주" && kind != "의결권 있는 주식" {
			continue
		}
		if rec["nm"] == "계" {
			continue
		}
		count := parseGroupedInt(rec["trmend_posesn_stock_co"])
		if best == -1 || count > bestCount {
			best = i
			bestCount = count
		}
	}
	if best == -1 {
		return nil
	}

	rec := records[best]
	if swapped[best] {
		rec["nm"], rec["relate"] = rec["relate"], rec["nm"]
	}

	name := rec["nm"]
	if name == "" {
		name = NoData
	}
	ratio := rec["trmend_posesn_stock_qota_rt"]
	if ratio == "" {
		ratio = "0"
	}

	return &Shareholder{
		Name:   name,
		Shares: Comma(bestCount) + "주",
		Ratio:  ratio + "%",
	}
}

// parseGroupedInt reads a comma-grouped digit string; malformed counts rank
// as zero rather than knocking out the whole record list.
func parseGroupedInt(s string) int64 {
	n, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
