package dart

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LineItem maps a display label to its fixed XBRL taxonomy code in the
// single-entity full financial statement.
type LineItem struct {
	Label     string
	AccountID string
}

// StatementItems is the fixed set of line items the comparison reports, in
// display order.
var StatementItems = []LineItem{
	{"매출액", "ifrs-full_Revenue"},
	{"매출원가", "ifrs-full_CostOfSales"},
	{"영업이익", "dart_OperatingIncomeLoss"},
	{"당기순이익", "ifrs-full_ProfitLoss"},
	{"자산총계", "ifrs-full_Assets"},
	{"현금및현금성자산", "ifrs-full_CashAndCashEquivalents"},
	{"부채총계", "ifrs-full_Liabilities"},
	{"사채", "ifrs-full_BondsIssued"},
	{"자본총계", "ifrs-full_Equity"},
}

type financialRow struct {
	AccountID    string `json:"account_id"`
	AccountNm    string `json:"account_nm"`
	ThstrmAmount string `json:"thstrm_amount"`
}

// Financials returns the fixed line items for one filer, period, and
// consolidation mode (fs_div "CFS" or "OFS"), each digit-grouped or
// NoData. A non-"000" status yields the full mapping as NoData.
func (c *Client) Financials(ctx context.Context, corpCode string, year string, reprtCode string, fsDiv string) (map[string]string, error) {
	items := make(map[string]string, len(StatementItems))
	for _, item := range StatementItems {
		items[item.Label] = NoData
	}

	params := reportParams(year, reprtCode)
	params.Set("fs_div", fsDiv)

	env, err := c.getList(ctx, "fnlttSinglAcntAll.json", corpCode, params)
	if err != nil {
		return nil, err
	}
	if env.Status != statusOK {
		return items, nil
	}

	var rows []financialRow
	if err := json.Unmarshal(env.List, &rows); err != nil {
		return nil, &APIError{CorpCode: corpCode, Endpoint: "fnlttSinglAcntAll.json", Err: fmt.Errorf("decoding list: %w", err)}
	}

	for _, item := range StatementItems {
		for _, row := range rows {
			if row.AccountID == item.AccountID {
				items[item.Label] = formatAmount(row.ThstrmAmount)
				break
			}
		}
	}
	return items, nil
}

// formatAmount digit-groups a raw statement amount; non-numeric amounts
// (blank cells, dashes) render as NoData.
func formatAmount(raw string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return NoData
	}
	return Comma(n)
}
